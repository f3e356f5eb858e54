package organization_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/organization"
)

func TestHierarchyService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HierarchyService Suite")
}

// Mock repository for testing
type mockHierarchyRepository struct {
	departments map[int64]*organization.Department
	services    map[int64]*organization.Service
	functions   map[int64]*organization.Function
	codes       map[string]bool
	nextID      int64

	createError error
	listError   error
}

func newMockHierarchyRepository() *mockHierarchyRepository {
	return &mockHierarchyRepository{
		departments: make(map[int64]*organization.Department),
		services:    make(map[int64]*organization.Service),
		functions:   make(map[int64]*organization.Function),
		codes:       make(map[string]bool),
		nextID:      1,
	}
}

func (m *mockHierarchyRepository) CreateDepartment(dept *organization.Department) error {
	if m.createError != nil {
		return m.createError
	}
	dept.ID = m.nextID
	m.nextID++
	m.departments[dept.ID] = dept
	if dept.Code != nil {
		m.codes[*dept.Code] = true
	}
	return nil
}

func (m *mockHierarchyRepository) DepartmentExists(id int64) (bool, error) {
	_, exists := m.departments[id]
	return exists, nil
}

func (m *mockHierarchyRepository) DepartmentCodeExists(code string) (bool, error) {
	return m.codes[code], nil
}

func (m *mockHierarchyRepository) ListDepartments(offset, limit int) ([]organization.Department, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	out := make([]organization.Department, 0, len(m.departments))
	for _, dept := range m.departments {
		out = append(out, *dept)
	}
	return out, nil
}

func (m *mockHierarchyRepository) CreateService(svc *organization.Service) error {
	if m.createError != nil {
		return m.createError
	}
	svc.ID = m.nextID
	m.nextID++
	m.services[svc.ID] = svc
	return nil
}

func (m *mockHierarchyRepository) ServiceExists(id int64) (bool, error) {
	_, exists := m.services[id]
	return exists, nil
}

func (m *mockHierarchyRepository) ListServices(departmentID *int64, offset, limit int) (int64, []organization.Service, error) {
	if m.listError != nil {
		return 0, nil, m.listError
	}
	var out []organization.Service
	for _, svc := range m.services {
		if departmentID != nil && svc.DepartmentID != *departmentID {
			continue
		}
		out = append(out, *svc)
	}
	return int64(len(out)), out, nil
}

func (m *mockHierarchyRepository) CreateFunction(fn *organization.Function) error {
	if m.createError != nil {
		return m.createError
	}
	fn.ID = m.nextID
	m.nextID++
	m.functions[fn.ID] = fn
	return nil
}

func (m *mockHierarchyRepository) FunctionExists(id int64) (bool, error) {
	_, exists := m.functions[id]
	return exists, nil
}

func (m *mockHierarchyRepository) ListFunctions(serviceID *int64, offset, limit int) (int64, []organization.Function, error) {
	if m.listError != nil {
		return 0, nil, m.listError
	}
	var out []organization.Function
	for _, fn := range m.functions {
		if serviceID != nil && fn.ServiceID != *serviceID {
			continue
		}
		out = append(out, *fn)
	}
	return int64(len(out)), out, nil
}

var _ = Describe("HierarchyService", func() {
	var (
		service  *organization.HierarchyService
		mockRepo *mockHierarchyRepository
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = newMockHierarchyRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = organization.NewHierarchyService(mockRepo, logger)
	})

	Describe("CreateDepartment", func() {
		It("creates a department", func() {
			dept, err := service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			Expect(dept.ID).To(BeNumerically(">", 0))
		})

		It("rejects a blank name", func() {
			_, err := service.CreateDepartment(organization.CreateDepartmentDTO{Name: "   "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a duplicate code", func() {
			code := "FIN"
			_, err := service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Finance", Code: &code})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Fiscalité", Code: &code})
			Expect(err).To(Equal(internal.ErrDuplicateCode))
		})

		It("wraps store failures", func() {
			mockRepo.createError = errors.New("connection reset")
			_, err := service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Finance"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypePersistence))
		})
	})

	Describe("CreateService", func() {
		var dept *organization.Department

		BeforeEach(func() {
			var err error
			dept, err = service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates a top-level service", func() {
			svc, err := service.CreateService(organization.CreateServiceDTO{
				Name:         "Budget",
				DepartmentID: dept.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.ParentServiceID).To(BeNil())
		})

		It("creates a supervised service", func() {
			parent, err := service.CreateService(organization.CreateServiceDTO{
				Name:         "Budget",
				DepartmentID: dept.ID,
			})
			Expect(err).NotTo(HaveOccurred())

			child, err := service.CreateService(organization.CreateServiceDTO{
				Name:            "Comptabilité",
				DepartmentID:    dept.ID,
				ParentServiceID: &parent.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*child.ParentServiceID).To(Equal(parent.ID))
		})

		It("returns the service exactly as persisted", func() {
			parent, err := service.CreateService(organization.CreateServiceDTO{
				Name:         "Budget",
				DepartmentID: dept.ID,
			})
			Expect(err).NotTo(HaveOccurred())

			child, err := service.CreateService(organization.CreateServiceDTO{
				Name:            "Comptabilité",
				DepartmentID:    dept.ID,
				ParentServiceID: &parent.ID,
			})
			Expect(err).NotTo(HaveOccurred())

			// A create that persists must never come back as an error;
			// the stored row and the returned value are one and the same.
			Expect(mockRepo.services[child.ID]).To(Equal(child))
		})

		It("rejects an unknown department", func() {
			_, err := service.CreateService(organization.CreateServiceDTO{
				Name:         "Budget",
				DepartmentID: 424242,
			})
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})

		It("rejects an unknown parent service", func() {
			missing := int64(424242)
			_, err := service.CreateService(organization.CreateServiceDTO{
				Name:            "Budget",
				DepartmentID:    dept.ID,
				ParentServiceID: &missing,
			})
			Expect(err).To(Equal(internal.ErrParentServiceNotFound))
		})
	})

	Describe("CreateFunction", func() {
		var svc *organization.Service

		BeforeEach(func() {
			dept, err := service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			svc, err = service.CreateService(organization.CreateServiceDTO{
				Name:         "Budget",
				DepartmentID: dept.ID,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates a function under an existing service", func() {
			fn, err := service.CreateFunction(organization.CreateFunctionDTO{
				Name:      "Analyste",
				ServiceID: svc.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(fn.ServiceID).To(Equal(svc.ID))
		})

		It("rejects an unknown service", func() {
			_, err := service.CreateFunction(organization.CreateFunctionDTO{
				Name:      "Analyste",
				ServiceID: 424242,
			})
			Expect(err).To(Equal(internal.ErrServiceNotFound))
		})
	})

	Describe("ListServices", func() {
		It("returns the filtered total with the page", func() {
			dept, err := service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			other, err := service.CreateDepartment(organization.CreateDepartmentDTO{Name: "Travaux"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateService(organization.CreateServiceDTO{Name: "Budget", DepartmentID: dept.ID})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateService(organization.CreateServiceDTO{Name: "Voirie", DepartmentID: other.ID})
			Expect(err).NotTo(HaveOccurred())

			page, err := service.ListServices(&dept.ID, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
			Expect(page.Items[0].Name).To(Equal("Budget"))
		})
	})
})
