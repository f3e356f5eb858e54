package courrier

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kdiomande/courrier-registry/internal"
)

// minSearchLength is the shortest accepted free-text query.
const minSearchLength = 3

// Repository defines the data access methods for the correspondence ledger
// and its query engine.
type Repository interface {
	// CreateWithRecipients persists the correspondence and all routings in
	// one transaction; on any unresolved reference nothing is written.
	CreateWithRecipients(corr *Correspondence, recipients []RecipientRef) error
	GetByID(id int64) (*Correspondence, error)
	List(filter Filter, offset, limit int) (int64, []Correspondence, error)
	ListRoutingsForUser(userID int64, instructionID *int64, offset, limit int) ([]Routing, error)
	Search(query string, offset, limit int) (int64, []Correspondence, error)
	CountSent(query StatsQuery) (int64, error)
	CountRouted() (int64, error)
	CountByInstruction() (map[string]int64, error)
	CountByDepartment() (map[string]int64, error)
}

// Service is the correspondence ledger plus the query and aggregation
// engine over it.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateCorrespondence registers an outgoing correspondence and its
// routing fan-out as one unit. A correspondence is not considered
// registered until every routing exists, so a single bad recipient
// reference rolls the whole thing back.
func (s *Service) CreateCorrespondence(dto CreateCorrespondenceDTO) (*Correspondence, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("correspondence validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	corr := &Correspondence{
		Sender:          dto.Sender,
		SentAt:          dto.SentAt,
		OriginReference: dto.OriginReference,
		Subject:         dto.Subject,
		HasAttachment:   dto.HasAttachment,
		Note1:           dto.Note1,
		Note2:           dto.Note2,
	}

	if err := s.repo.CreateWithRecipients(corr, dto.Recipients); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create correspondence", "error", err, "sender", dto.Sender)
		return nil, internal.NewPersistenceError("failed to create correspondence", err)
	}

	s.logger.Info("correspondence registered",
		"correspondence_id", corr.ID,
		"recipients", len(corr.Routings),
		"sender", corr.Sender)
	return corr, nil
}

func (s *Service) GetCorrespondence(id int64) (*Correspondence, error) {
	corr, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return corr, nil
}

// ListCorrespondence applies the filter and returns one window plus the
// filtered total.
func (s *Service) ListCorrespondence(filter Filter, offset, limit int) (*Page, error) {
	total, items, err := s.repo.List(filter, offset, limit)
	if err != nil {
		s.logger.Error("failed to list correspondence", "error", err)
		return nil, internal.NewPersistenceError("failed to list correspondence", err)
	}
	return &Page{Total: total, Items: items}, nil
}

// ListRoutingsForUser returns the routed items of one recipient. The user
// id is mandatory here; defaulting to the caller's identity is the
// transport layer's concern.
func (s *Service) ListRoutingsForUser(userID int64, instructionID *int64, offset, limit int) ([]Routing, error) {
	if userID <= 0 {
		return nil, internal.NewValidationError("user id is required", internal.ErrCodeValidationFailed)
	}

	routings, err := s.repo.ListRoutingsForUser(userID, instructionID, offset, limit)
	if err != nil {
		s.logger.Error("failed to list routings", "error", err, "user_id", userID)
		return nil, internal.NewPersistenceError("failed to list routings", err)
	}
	return routings, nil
}

// SearchCorrespondence matches the query against sender, subject and both
// notes. Queries shorter than three characters are rejected.
func (s *Service) SearchCorrespondence(query string, offset, limit int) (*Page, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLength {
		return nil, internal.ErrSearchQueryTooShort
	}

	total, items, err := s.repo.Search(query, offset, limit)
	if err != nil {
		s.logger.Error("search failed", "error", err)
		return nil, internal.NewPersistenceError("search failed", err)
	}
	return &Page{Total: total, Items: items}, nil
}

// ComputeStats issues the aggregate queries independently; under
// concurrent writes the counts may reflect slightly different points in
// time, which is accepted.
func (s *Service) ComputeStats(query StatsQuery) (*Stats, error) {
	totalSent, err := s.repo.CountSent(query)
	if err != nil {
		s.logger.Error("failed to count sent correspondence", "error", err)
		return nil, internal.NewPersistenceError("failed to compute stats", err)
	}

	totalRouted, err := s.repo.CountRouted()
	if err != nil {
		s.logger.Error("failed to count routings", "error", err)
		return nil, internal.NewPersistenceError("failed to compute stats", err)
	}

	byInstruction, err := s.repo.CountByInstruction()
	if err != nil {
		s.logger.Error("failed to group by instruction", "error", err)
		return nil, internal.NewPersistenceError("failed to compute stats", err)
	}

	byDepartment, err := s.repo.CountByDepartment()
	if err != nil {
		s.logger.Error("failed to group by department", "error", err)
		return nil, internal.NewPersistenceError("failed to compute stats", err)
	}

	return &Stats{
		TotalSent:     totalSent,
		TotalRouted:   totalRouted,
		ByInstruction: byInstruction,
		ByDepartment:  byDepartment,
	}, nil
}
