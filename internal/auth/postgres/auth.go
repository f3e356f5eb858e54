package postgres

import (
	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/auth"
	"gorm.io/gorm"
)

// AccountRepository implements auth.AccountRepository using GORM.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) auth.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByEmail(email string) (*auth.Account, error) {
	var account auth.Account
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}
	return &account, nil
}
