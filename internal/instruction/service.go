package instruction

import (
	"log/slog"

	"github.com/kdiomande/courrier-registry/internal"
)

// Repository defines the data access methods for the instruction catalog.
type Repository interface {
	Create(instr *Instruction) error
	List() ([]Instruction, error)
	LabelExists(label string) (bool, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListInstructions() ([]Instruction, error) {
	instrs, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list instructions", "error", err)
		return nil, internal.NewPersistenceError("failed to list instructions", err)
	}
	return instrs, nil
}

func (s *Service) CreateInstruction(dto CreateInstructionDTO) (*Instruction, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("instruction validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	instr := &Instruction{Label: dto.Label}
	if err := s.repo.Create(instr); err != nil {
		s.logger.Error("failed to create instruction", "error", err, "label", dto.Label)
		return nil, internal.NewPersistenceError("failed to create instruction", err)
	}

	s.logger.Info("instruction created", "instruction_id", instr.ID, "label", instr.Label)
	return instr, nil
}

// Seed inserts the default catalog. Labels already present are skipped, so
// running it on every startup never duplicates entries.
func (s *Service) Seed() error {
	seeded := 0
	for _, label := range DefaultLabels {
		exists, err := s.repo.LabelExists(label)
		if err != nil {
			return internal.NewPersistenceError("failed to check instruction label", err)
		}
		if exists {
			continue
		}
		if err := s.repo.Create(&Instruction{Label: label}); err != nil {
			return internal.NewPersistenceError("failed to seed instruction", err)
		}
		seeded++
	}

	if seeded > 0 {
		s.logger.Info("instruction catalog seeded", "inserted", seeded)
	}
	return nil
}
