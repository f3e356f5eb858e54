package postgres

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kdiomande/courrier-registry/internal/instruction"
)

func TestInstructionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InstructionRepository Suite")
}

var _ = Describe("InstructionRepository", func() {
	var (
		db   *gorm.DB
		repo instruction.Repository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&instruction.Instruction{})).NotTo(HaveOccurred())

		repo = NewInstructionRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	It("reports label usage", func() {
		Expect(repo.Create(&instruction.Instruction{Label: "Pour information"})).NotTo(HaveOccurred())

		exists, err := repo.LabelExists("Pour information")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())

		exists, err = repo.LabelExists("Pour suivi")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	Describe("catalog seeding", func() {
		var svc *instruction.Service

		BeforeEach(func() {
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			svc = instruction.NewService(repo, logger)
		})

		It("inserts the whole default catalog once", func() {
			Expect(svc.Seed()).NotTo(HaveOccurred())

			instrs, err := repo.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(instrs).To(HaveLen(len(instruction.DefaultLabels)))
		})

		It("is idempotent across runs", func() {
			Expect(svc.Seed()).NotTo(HaveOccurred())
			Expect(svc.Seed()).NotTo(HaveOccurred())

			instrs, err := repo.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(instrs).To(HaveLen(len(instruction.DefaultLabels)))
		})

		It("backfills labels removed from the store", func() {
			Expect(svc.Seed()).NotTo(HaveOccurred())
			Expect(db.Where("nom_instruction = ?", instruction.DefaultLabels[0]).
				Delete(&instruction.Instruction{}).Error).NotTo(HaveOccurred())

			Expect(svc.Seed()).NotTo(HaveOccurred())

			exists, err := repo.LabelExists(instruction.DefaultLabels[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})
	})
})
