package postgres

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/directory"
	"github.com/kdiomande/courrier-registry/internal/organization"
)

func TestDirectoryRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DirectoryRepository Suite")
}

var _ = Describe("DirectoryRepository", func() {
	var (
		db   *gorm.DB
		repo directory.Repository
		fn   organization.Function
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&organization.Department{},
			&organization.Service{},
			&organization.Function{},
			&directory.User{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = NewDirectoryRepository(db)

		dept := organization.Department{Name: "Finance"}
		Expect(db.Create(&dept).Error).NotTo(HaveOccurred())
		svc := organization.Service{Name: "Budget", DepartmentID: dept.ID}
		Expect(db.Create(&svc).Error).NotTo(HaveOccurred())
		fn = organization.Function{Name: "Analyste", ServiceID: svc.ID}
		Expect(db.Create(&fn).Error).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	It("resolves functions across the hierarchy store", func() {
		exists, err := repo.FunctionExists(fn.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())

		exists, err = repo.FunctionExists(99999)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("tracks function bindings", func() {
		bound, err := repo.FunctionBound(fn.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(bound).To(BeFalse())

		Expect(repo.Create(&directory.User{FullName: "A. Martin", FunctionID: fn.ID})).NotTo(HaveOccurred())

		bound, err = repo.FunctionBound(fn.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(bound).To(BeTrue())
	})

	It("enforces the unique binding at the store level", func() {
		Expect(repo.Create(&directory.User{FullName: "A. Martin", FunctionID: fn.ID})).NotTo(HaveOccurred())

		err := repo.Create(&directory.User{FullName: "B. Kouassi", FunctionID: fn.ID})
		Expect(err).To(HaveOccurred())
	})

	It("maps a missing user to the sentinel", func() {
		_, err := repo.GetByID(42)
		Expect(err).To(Equal(internal.ErrUserNotFound))
	})

	It("counts before paginating", func() {
		Expect(repo.Create(&directory.User{FullName: "A. Martin", FunctionID: fn.ID})).NotTo(HaveOccurred())

		second := organization.Function{Name: "Chef de service", ServiceID: fn.ServiceID}
		Expect(db.Create(&second).Error).NotTo(HaveOccurred())
		Expect(repo.Create(&directory.User{FullName: "B. Kouassi", FunctionID: second.ID})).NotTo(HaveOccurred())

		total, users, err := repo.List(0, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(2)))
		Expect(users).To(HaveLen(1))
	})
})
