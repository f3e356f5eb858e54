package directory

import (
	"errors"
	"strings"
)

// User is a directory entry: a person holding exactly one function in the
// organizational hierarchy. The unique index on fonction_id enforces the
// 1:1 pairing at the store level.
type User struct {
	ID         int64  `json:"id" gorm:"primaryKey;column:id"`
	FullName   string `json:"full_name" gorm:"column:nom_prenoms;not null"`
	FunctionID int64  `json:"function_id" gorm:"column:fonction_id;not null;unique"`
}

func (User) TableName() string {
	return "utilisateur"
}

type CreateUserDTO struct {
	FullName   string `json:"full_name"`
	FunctionID int64  `json:"function_id"`
}

func (dto CreateUserDTO) Validate() error {
	if strings.TrimSpace(dto.FullName) == "" {
		return errors.New("full_name is required")
	}
	if len(dto.FullName) > 100 {
		return errors.New("full_name must be at most 100 characters")
	}
	if dto.FunctionID <= 0 {
		return errors.New("function_id is required")
	}
	return nil
}

type UserPage struct {
	Total int64  `json:"total"`
	Items []User `json:"items"`
}
