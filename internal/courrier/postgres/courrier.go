package postgres

import (
	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/courrier"
	"github.com/kdiomande/courrier-registry/internal/directory"
	"github.com/kdiomande/courrier-registry/internal/instruction"
	"gorm.io/gorm"
)

// routedByDepartment resolves a courrier_recu row to a department through
// the recipient's function and service; the ledger itself carries no
// department key.
const routedByDepartment = `
SELECT d.nom_departement AS name, COUNT(cr.id) AS count
FROM departement d
JOIN service s ON s.departement_id = d.id
JOIN fonction f ON f.service_id = s.id
JOIN utilisateur u ON u.fonction_id = f.id
JOIN courrier_recu cr ON cr.utilisateur_id = u.id
GROUP BY d.nom_departement`

const routedByInstruction = `
SELECT i.nom_instruction AS name, COUNT(cr.id) AS count
FROM instructions i
JOIN courrier_recu cr ON cr.instruction_id = i.id
GROUP BY i.nom_instruction`

const sentToDepartment = `
SELECT cr.courrier_envoie_id
FROM courrier_recu cr
JOIN utilisateur u ON u.id = cr.utilisateur_id
JOIN fonction f ON f.id = u.fonction_id
JOIN service s ON s.id = f.service_id
WHERE s.departement_id = ?`

// CourrierRepository implements courrier.Repository using GORM.
type CourrierRepository struct {
	db *gorm.DB
}

func NewCourrierRepository(db *gorm.DB) courrier.Repository {
	return &CourrierRepository{db: db}
}

// CreateWithRecipients resolves every recipient reference inside the same
// transaction that writes the rows, so a bad reference leaves the ledger
// untouched.
func (r *CourrierRepository) CreateWithRecipients(corr *courrier.Correspondence, recipients []courrier.RecipientRef) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, rcpt := range recipients {
			var count int64
			if err := tx.Model(&directory.User{}).
				Where("id = ?", rcpt.UserID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return internal.ErrBadRecipient
			}

			if err := tx.Model(&instruction.Instruction{}).
				Where("id = ?", rcpt.InstructionID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return internal.ErrBadRecipient
			}
		}

		if err := tx.Create(corr).Error; err != nil {
			return err
		}

		for _, rcpt := range recipients {
			routing := courrier.Routing{
				CorrespondenceID: corr.ID,
				UserID:           rcpt.UserID,
				InstructionID:    rcpt.InstructionID,
			}
			if err := tx.Create(&routing).Error; err != nil {
				return err
			}
			corr.Routings = append(corr.Routings, routing)
		}

		return nil
	})
}

func (r *CourrierRepository) GetByID(id int64) (*courrier.Correspondence, error) {
	var corr courrier.Correspondence
	err := r.db.Preload("Routings").Where("id = ?", id).First(&corr).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrCorrespondenceNotFound
		}
		return nil, err
	}
	return &corr, nil
}

// List applies the filter, counts the filtered set, then reads one window.
// LOWER(...) LIKE keeps the substring matches case-insensitive on both
// postgres and the sqlite test store.
func (r *CourrierRepository) List(filter courrier.Filter, offset, limit int) (int64, []courrier.Correspondence, error) {
	query := r.db.Model(&courrier.Correspondence{})

	if filter.SentAfter != nil {
		query = query.Where("date_envoie >= ?", *filter.SentAfter)
	}
	if filter.SentBefore != nil {
		query = query.Where("date_envoie <= ?", *filter.SentBefore)
	}
	if filter.SenderContains != "" {
		query = query.Where("LOWER(expediteur) LIKE LOWER(?)", "%"+filter.SenderContains+"%")
	}
	if filter.SubjectContains != "" {
		query = query.Where("LOWER(objet) LIKE LOWER(?)", "%"+filter.SubjectContains+"%")
	}
	if filter.InstructionID != nil {
		query = query.Where("id IN (SELECT courrier_envoie_id FROM courrier_recu WHERE instruction_id = ?)",
			*filter.InstructionID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("id IN ("+sentToDepartment+")", *filter.DepartmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []courrier.Correspondence
	err := query.Order("date_envoie DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return total, items, err
}

func (r *CourrierRepository) ListRoutingsForUser(userID int64, instructionID *int64, offset, limit int) ([]courrier.Routing, error) {
	query := r.db.Where("utilisateur_id = ?", userID)
	if instructionID != nil {
		query = query.Where("instruction_id = ?", *instructionID)
	}

	var routings []courrier.Routing
	err := query.Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&routings).Error
	return routings, err
}

func (r *CourrierRepository) Search(q string, offset, limit int) (int64, []courrier.Correspondence, error) {
	pattern := "%" + q + "%"
	query := r.db.Model(&courrier.Correspondence{}).Where(
		"LOWER(objet) LIKE LOWER(?) OR LOWER(expediteur) LIKE LOWER(?) OR LOWER(note_1) LIKE LOWER(?) OR LOWER(note_2) LIKE LOWER(?)",
		pattern, pattern, pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []courrier.Correspondence
	err := query.Order("date_envoie DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return total, items, err
}

// CountSent honors the date bounds only; the department parameter of the
// stats query is accepted but not applied here.
func (r *CourrierRepository) CountSent(query courrier.StatsQuery) (int64, error) {
	q := r.db.Model(&courrier.Correspondence{})
	if query.DateFrom != nil {
		q = q.Where("date_envoie >= ?", *query.DateFrom)
	}
	if query.DateTo != nil {
		q = q.Where("date_envoie <= ?", *query.DateTo)
	}

	var total int64
	err := q.Count(&total).Error
	return total, err
}

func (r *CourrierRepository) CountRouted() (int64, error) {
	var total int64
	err := r.db.Model(&courrier.Routing{}).Count(&total).Error
	return total, err
}

type groupCount struct {
	Name  string
	Count int64
}

func (r *CourrierRepository) CountByInstruction() (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.Raw(routedByInstruction).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Count
	}
	return counts, nil
}

func (r *CourrierRepository) CountByDepartment() (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.Raw(routedByDepartment).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Count
	}
	return counts, nil
}
