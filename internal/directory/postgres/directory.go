package postgres

import (
	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/directory"
	"github.com/kdiomande/courrier-registry/internal/organization"
	"gorm.io/gorm"
)

// DirectoryRepository implements directory.Repository using GORM.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) directory.Repository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) Create(user *directory.User) error {
	return r.db.Create(user).Error
}

func (r *DirectoryRepository) GetByID(id int64) (*directory.User, error) {
	var user directory.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *DirectoryRepository) FunctionBound(functionID int64) (bool, error) {
	var count int64
	err := r.db.Model(&directory.User{}).
		Where("fonction_id = ?", functionID).
		Count(&count).Error
	return count > 0, err
}

func (r *DirectoryRepository) FunctionExists(functionID int64) (bool, error) {
	var count int64
	err := r.db.Model(&organization.Function{}).
		Where("id = ?", functionID).
		Count(&count).Error
	return count > 0, err
}

func (r *DirectoryRepository) List(offset, limit int) (int64, []directory.User, error) {
	var total int64
	if err := r.db.Model(&directory.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var users []directory.User
	err := r.db.Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return total, users, err
}
