package courrier

import (
	"errors"
	"strings"
	"time"
)

// RecipientRef identifies one routing target of a new correspondence.
type RecipientRef struct {
	UserID        int64 `json:"user_id"`
	InstructionID int64 `json:"instruction_id"`
}

// CreateCorrespondenceDTO is the request payload for registering an
// outgoing correspondence together with its full routing fan-out.
type CreateCorrespondenceDTO struct {
	Sender          string         `json:"sender"`
	SentAt          time.Time      `json:"sent_at"`
	OriginReference *string        `json:"origin_reference,omitempty"`
	Subject         string         `json:"subject"`
	HasAttachment   bool           `json:"has_attachment"`
	Note1           *string        `json:"note_1,omitempty"`
	Note2           *string        `json:"note_2,omitempty"`
	Recipients      []RecipientRef `json:"recipients"`
}

func (dto CreateCorrespondenceDTO) Validate() error {
	if strings.TrimSpace(dto.Sender) == "" {
		return errors.New("sender is required")
	}
	if len(dto.Sender) > 100 {
		return errors.New("sender must be at most 100 characters")
	}
	if dto.SentAt.IsZero() {
		return errors.New("sent_at is required")
	}
	if strings.TrimSpace(dto.Subject) == "" {
		return errors.New("subject is required")
	}
	if dto.OriginReference != nil && len(*dto.OriginReference) > 50 {
		return errors.New("origin_reference must be at most 50 characters")
	}
	for _, rcpt := range dto.Recipients {
		if rcpt.UserID <= 0 || rcpt.InstructionID <= 0 {
			return errors.New("each recipient needs a user_id and an instruction_id")
		}
	}
	return nil
}

// Filter narrows a correspondence listing. Zero values impose no
// constraint; supplied fields are ANDed.
type Filter struct {
	SentAfter       *time.Time
	SentBefore      *time.Time
	SenderContains  string
	SubjectContains string
	DepartmentID    *int64
	InstructionID   *int64
}

// Page is a pagination window plus the total matching count, computed
// before the window is applied.
type Page struct {
	Total int64            `json:"total"`
	Items []Correspondence `json:"items"`
}

// Stats aggregates ledger counts. Only TotalSent honors the date
// filters; the grouped counts and TotalRouted cover the full ledger.
type Stats struct {
	TotalSent     int64            `json:"total_sent"`
	TotalRouted   int64            `json:"total_routed"`
	ByInstruction map[string]int64 `json:"by_instruction"`
	ByDepartment  map[string]int64 `json:"by_department"`
}

// StatsQuery carries the stats parameters. DepartmentID is accepted for
// interface compatibility but not threaded into the sub-counts.
type StatsQuery struct {
	DateFrom     *time.Time
	DateTo       *time.Time
	DepartmentID *int64
}
