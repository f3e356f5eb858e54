package courrier

import "time"

// Correspondence is an outgoing mail record ("courrier envoyé"). It is
// immutable once registered; its routing fan-out is created in the same
// transaction and never re-parented afterwards.
type Correspondence struct {
	ID              int64     `json:"id" gorm:"primaryKey;column:id"`
	Sender          string    `json:"sender" gorm:"column:expediteur;not null"`
	SentAt          time.Time `json:"sent_at" gorm:"column:date_envoie;not null"`
	OriginReference *string   `json:"origin_reference,omitempty" gorm:"column:num_origine"`
	Subject         string    `json:"subject" gorm:"column:objet;not null"`
	HasAttachment   bool      `json:"has_attachment" gorm:"column:joint;default:false"`
	Note1           *string   `json:"note_1,omitempty" gorm:"column:note_1"`
	Note2           *string   `json:"note_2,omitempty" gorm:"column:note_2"`

	Routings []Routing `json:"routings,omitempty" gorm:"foreignKey:CorrespondenceID"`
}

func (Correspondence) TableName() string {
	return "courrier_envoie"
}

// Routing links one correspondence to one recipient user with one
// processing instruction ("courrier reçu").
type Routing struct {
	ID               int64 `json:"id" gorm:"primaryKey;column:id"`
	CorrespondenceID int64 `json:"correspondence_id" gorm:"column:courrier_envoie_id;not null"`
	UserID           int64 `json:"user_id" gorm:"column:utilisateur_id;not null"`
	InstructionID    int64 `json:"instruction_id" gorm:"column:instruction_id;not null"`
}

func (Routing) TableName() string {
	return "courrier_recu"
}
