package postgres

import (
	"github.com/kdiomande/courrier-registry/internal/organization"
	"gorm.io/gorm"
)

// OrganizationRepository implements organization.Repository using GORM.
type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.Repository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) CreateDepartment(dept *organization.Department) error {
	return r.db.Create(dept).Error
}

func (r *OrganizationRepository) DepartmentExists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&organization.Department{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepository) DepartmentCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&organization.Department{}).
		Where("sigle_departement = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepository) ListDepartments(offset, limit int) ([]organization.Department, error) {
	var depts []organization.Department
	err := r.db.Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&depts).Error
	return depts, err
}

func (r *OrganizationRepository) CreateService(svc *organization.Service) error {
	return r.db.Create(svc).Error
}

func (r *OrganizationRepository) ServiceExists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&organization.Service{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListServices counts before paginating so the total stays independent of
// the window the caller asked for.
func (r *OrganizationRepository) ListServices(departmentID *int64, offset, limit int) (int64, []organization.Service, error) {
	query := r.db.Model(&organization.Service{})
	if departmentID != nil {
		query = query.Where("departement_id = ?", *departmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var services []organization.Service
	err := query.Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&services).Error
	return total, services, err
}

func (r *OrganizationRepository) CreateFunction(fn *organization.Function) error {
	return r.db.Create(fn).Error
}

func (r *OrganizationRepository) FunctionExists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&organization.Function{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepository) ListFunctions(serviceID *int64, offset, limit int) (int64, []organization.Function, error) {
	query := r.db.Model(&organization.Function{})
	if serviceID != nil {
		query = query.Where("service_id = ?", *serviceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var functions []organization.Function
	err := query.Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&functions).Error
	return total, functions, err
}
