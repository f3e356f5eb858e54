package organization

import (
	"log/slog"

	"github.com/kdiomande/courrier-registry/internal"
)

// Repository defines the data access methods for the hierarchy store.
type Repository interface {
	CreateDepartment(dept *Department) error
	DepartmentExists(id int64) (bool, error)
	DepartmentCodeExists(code string) (bool, error)
	ListDepartments(offset, limit int) ([]Department, error)

	CreateService(svc *Service) error
	ServiceExists(id int64) (bool, error)
	ListServices(departmentID *int64, offset, limit int) (int64, []Service, error)

	CreateFunction(fn *Function) error
	FunctionExists(id int64) (bool, error)
	ListFunctions(serviceID *int64, offset, limit int) (int64, []Function, error)
}

// HierarchyService enforces the relational invariants of the
// department/service/function chain before anything hits the store.
type HierarchyService struct {
	repo   Repository
	logger *slog.Logger
}

func NewHierarchyService(repo Repository, logger *slog.Logger) *HierarchyService {
	return &HierarchyService{repo: repo, logger: logger}
}

func (s *HierarchyService) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("department validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if dto.Code != nil {
		taken, err := s.repo.DepartmentCodeExists(*dto.Code)
		if err != nil {
			return nil, internal.NewPersistenceError("failed to check department code", err)
		}
		if taken {
			return nil, internal.ErrDuplicateCode
		}
	}

	dept := &Department{Name: dto.Name, Code: dto.Code}
	if err := s.repo.CreateDepartment(dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, internal.NewPersistenceError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name)
	return dept, nil
}

func (s *HierarchyService) ListDepartments(offset, limit int) ([]Department, error) {
	depts, err := s.repo.ListDepartments(offset, limit)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewPersistenceError("failed to list departments", err)
	}
	return depts, nil
}

// CreateService checks that the department and, when given, the parent
// service resolve. Self-parenting cannot happen at creation time since ids
// are store-assigned, but the invariant is also guarded by a CHECK
// constraint so later mutations cannot introduce it.
func (s *HierarchyService) CreateService(dto CreateServiceDTO) (*Service, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("service validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	exists, err := s.repo.DepartmentExists(dto.DepartmentID)
	if err != nil {
		return nil, internal.NewPersistenceError("failed to resolve department", err)
	}
	if !exists {
		return nil, internal.ErrDepartmentNotFound
	}

	if dto.ParentServiceID != nil {
		exists, err := s.repo.ServiceExists(*dto.ParentServiceID)
		if err != nil {
			return nil, internal.NewPersistenceError("failed to resolve parent service", err)
		}
		if !exists {
			return nil, internal.ErrParentServiceNotFound
		}
	}

	svc := &Service{
		Name:            dto.Name,
		DepartmentID:    dto.DepartmentID,
		ParentServiceID: dto.ParentServiceID,
	}
	if err := s.repo.CreateService(svc); err != nil {
		s.logger.Error("failed to create service", "error", err, "name", dto.Name)
		return nil, internal.NewPersistenceError("failed to create service", err)
	}

	s.logger.Info("service created",
		"service_id", svc.ID,
		"department_id", svc.DepartmentID,
		"name", svc.Name)
	return svc, nil
}

func (s *HierarchyService) ListServices(departmentID *int64, offset, limit int) (*ServicePage, error) {
	total, items, err := s.repo.ListServices(departmentID, offset, limit)
	if err != nil {
		s.logger.Error("failed to list services", "error", err)
		return nil, internal.NewPersistenceError("failed to list services", err)
	}
	return &ServicePage{Total: total, Items: items}, nil
}

func (s *HierarchyService) CreateFunction(dto CreateFunctionDTO) (*Function, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("function validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	exists, err := s.repo.ServiceExists(dto.ServiceID)
	if err != nil {
		return nil, internal.NewPersistenceError("failed to resolve service", err)
	}
	if !exists {
		return nil, internal.ErrServiceNotFound
	}

	fn := &Function{Name: dto.Name, ServiceID: dto.ServiceID}
	if err := s.repo.CreateFunction(fn); err != nil {
		s.logger.Error("failed to create function", "error", err, "name", dto.Name)
		return nil, internal.NewPersistenceError("failed to create function", err)
	}

	s.logger.Info("function created", "function_id", fn.ID, "service_id", fn.ServiceID)
	return fn, nil
}

func (s *HierarchyService) ListFunctions(serviceID *int64, offset, limit int) (*FunctionPage, error) {
	total, items, err := s.repo.ListFunctions(serviceID, offset, limit)
	if err != nil {
		s.logger.Error("failed to list functions", "error", err)
		return nil, internal.NewPersistenceError("failed to list functions", err)
	}
	return &FunctionPage{Total: total, Items: items}, nil
}
