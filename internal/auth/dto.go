package auth

import (
	"errors"
	"strings"
)

// Account holds the login credentials of a directory user. Identity
// resolution stops here: downstream operations only ever see the resolved
// utilisateur id.
type Account struct {
	ID           int64  `json:"id" gorm:"primaryKey;column:id"`
	Email        string `json:"email" gorm:"column:email;not null;unique"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	UserID       int64  `json:"user_id" gorm:"column:utilisateur_id;not null;unique"`
}

func (Account) TableName() string {
	return "compte"
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" {
		return errors.New("email is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
