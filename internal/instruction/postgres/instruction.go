package postgres

import (
	"github.com/kdiomande/courrier-registry/internal/instruction"
	"gorm.io/gorm"
)

// InstructionRepository implements instruction.Repository using GORM.
type InstructionRepository struct {
	db *gorm.DB
}

func NewInstructionRepository(db *gorm.DB) instruction.Repository {
	return &InstructionRepository{db: db}
}

func (r *InstructionRepository) Create(instr *instruction.Instruction) error {
	return r.db.Create(instr).Error
}

func (r *InstructionRepository) List() ([]instruction.Instruction, error) {
	var instrs []instruction.Instruction
	if err := r.db.Order("id ASC").Find(&instrs).Error; err != nil {
		return nil, err
	}
	return instrs, nil
}

func (r *InstructionRepository) LabelExists(label string) (bool, error) {
	var count int64
	err := r.db.Model(&instruction.Instruction{}).
		Where("nom_instruction = ?", label).
		Count(&count).Error
	return count > 0, err
}
