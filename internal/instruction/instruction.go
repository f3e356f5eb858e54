package instruction

import (
	"errors"
	"strings"
)

// Instruction is a standardized processing directive attached to a routed
// correspondence ("pour information", "pour suivi", ...).
type Instruction struct {
	ID    int64  `json:"id" gorm:"primaryKey;column:id"`
	Label string `json:"label" gorm:"column:nom_instruction;not null"`
}

func (Instruction) TableName() string {
	return "instructions"
}

// DefaultLabels is the catalog seeded at initialization, in the order the
// ministry cabinet uses them on routing slips.
var DefaultLabels = []string{
	"Pour représenter le ministre",
	"Pour instruction à prendre",
	"Pour examen et suite à donner",
	"Etudes et synthèse",
	"Note à l'attention du Ministre",
	"Pour avis et suggestion",
	"Pour suivi",
	"Pour attribution",
	"Pour disposition à prendre",
	"Pour information",
	"Pour diffusion",
	"Pour exploitation et nécessaire à faire",
	"Avec avis favorable",
	"Pour en parler au Ministre",
	"Pour préparer un projet réponse",
	"Délai d'exécution",
	"Pour en rendre compte au Ministre",
	"Pour préparer une réunion",
	"Pour un exposé thématique",
}

type CreateInstructionDTO struct {
	Label string `json:"label"`
}

func (dto CreateInstructionDTO) Validate() error {
	if strings.TrimSpace(dto.Label) == "" {
		return errors.New("label is required")
	}
	if len(dto.Label) > 100 {
		return errors.New("label must be at most 100 characters")
	}
	return nil
}
