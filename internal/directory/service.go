package directory

import (
	"log/slog"

	"github.com/kdiomande/courrier-registry/internal"
)

// Repository defines the data access methods for directory users.
type Repository interface {
	Create(user *User) error
	GetByID(id int64) (*User, error)
	FunctionBound(functionID int64) (bool, error)
	FunctionExists(functionID int64) (bool, error)
	List(offset, limit int) (int64, []User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateUser binds a person to a function. The function must exist and must
// not already be held by someone else.
func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("user validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	exists, err := s.repo.FunctionExists(dto.FunctionID)
	if err != nil {
		return nil, internal.NewPersistenceError("failed to resolve function", err)
	}
	if !exists {
		return nil, internal.ErrFunctionNotFound
	}

	bound, err := s.repo.FunctionBound(dto.FunctionID)
	if err != nil {
		return nil, internal.NewPersistenceError("failed to check function binding", err)
	}
	if bound {
		return nil, internal.ErrFunctionAlreadyBound
	}

	user := &User{FullName: dto.FullName, FunctionID: dto.FunctionID}
	if err := s.repo.Create(user); err != nil {
		// The unique index can still fire under a concurrent bind.
		s.logger.Error("failed to create user", "error", err, "function_id", dto.FunctionID)
		return nil, internal.NewPersistenceError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "function_id", user.FunctionID)
	return user, nil
}

func (s *Service) GetUser(id int64) (*User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(offset, limit int) (*UserPage, error) {
	total, items, err := s.repo.List(offset, limit)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewPersistenceError("failed to list users", err)
	}
	return &UserPage{Total: total, Items: items}, nil
}
