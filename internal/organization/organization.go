package organization

import (
	"errors"
	"strings"
)

// Department is the top of the organizational hierarchy. Column names
// follow the legacy courrier schema.
type Department struct {
	ID   int64   `json:"id" gorm:"primaryKey;column:id"`
	Name string  `json:"name" gorm:"column:nom_departement;not null"`
	Code *string `json:"code,omitempty" gorm:"column:sigle_departement;unique"`
}

func (Department) TableName() string {
	return "departement"
}

// Service is a unit inside a department. ParentServiceID points at the
// supervising service ("tutelle"); nil means top-level.
type Service struct {
	ID              int64  `json:"id" gorm:"primaryKey;column:id"`
	Name            string `json:"name" gorm:"column:nom_service;not null"`
	DepartmentID    int64  `json:"department_id" gorm:"column:departement_id;not null"`
	ParentServiceID *int64 `json:"parent_service_id,omitempty" gorm:"column:tutelle_service_id"`
}

func (Service) TableName() string {
	return "service"
}

// Function is a post within a service; at most one directory user holds it.
type Function struct {
	ID        int64  `json:"id" gorm:"primaryKey;column:id"`
	Name      string `json:"name" gorm:"column:nom_fonction;not null"`
	ServiceID int64  `json:"service_id" gorm:"column:service_id;not null"`
}

func (Function) TableName() string {
	return "fonction"
}

// CreateDepartmentDTO is the request payload for creating a department.
type CreateDepartmentDTO struct {
	Name string  `json:"name"`
	Code *string `json:"code,omitempty"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 100 {
		return errors.New("name must be at most 100 characters")
	}
	if dto.Code != nil && len(*dto.Code) > 20 {
		return errors.New("code must be at most 20 characters")
	}
	return nil
}

type CreateServiceDTO struct {
	Name            string `json:"name"`
	DepartmentID    int64  `json:"department_id"`
	ParentServiceID *int64 `json:"parent_service_id,omitempty"`
}

func (dto CreateServiceDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 100 {
		return errors.New("name must be at most 100 characters")
	}
	if dto.DepartmentID <= 0 {
		return errors.New("department_id is required")
	}
	return nil
}

type CreateFunctionDTO struct {
	Name      string `json:"name"`
	ServiceID int64  `json:"service_id"`
}

func (dto CreateFunctionDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 100 {
		return errors.New("name must be at most 100 characters")
	}
	if dto.ServiceID <= 0 {
		return errors.New("service_id is required")
	}
	return nil
}

// ServicePage carries a pagination window plus the total count of matching
// rows; callers must not infer the total from the page length.
type ServicePage struct {
	Total int64     `json:"total"`
	Items []Service `json:"items"`
}

type FunctionPage struct {
	Total int64      `json:"total"`
	Items []Function `json:"items"`
}
