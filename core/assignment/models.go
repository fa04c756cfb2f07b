package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
)

// Type of due work.
type Type string

const (
	TypeQuiz     Type = "quiz"
	TypeHomework Type = "homework"
	TypeProject  Type = "project"
	TypeExam     Type = "exam"
	TypeOther    Type = "other"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeQuiz, TypeHomework, TypeProject, TypeExam, TypeOther:
		return true
	}
	return false
}

// Assignment is a due-work record. It is owned by the (class, subject, date)
// triple, not by a course slot, so an interro spanning no particular slot is
// still representable.
type Assignment struct {
	ID          uuid.UUID `json:"id"`
	ClassID     string    `json:"class_id"`
	Subject     string    `json:"subject"`
	Type        Type      `json:"type"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"` // date only, UTC
	IsCompleted bool      `json:"is_completed"`
	IsCorrected bool      `json:"is_corrected"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewAssignment contains information needed to record due work.
type NewAssignment struct {
	ClassID     string    `json:"class_id" validate:"required"`
	Subject     string    `json:"subject" validate:"required"`
	Type        Type      `json:"type" validate:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.ClassID = core.CleanString(na.ClassID)
	na.Subject = core.CleanString(na.Subject)
	na.Description = core.CleanString(na.Description)
	if err := validate.Struct(na); err != nil {
		return err
	}
	if !na.Type.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "unknown assignment type"})
	}
	return nil
}

// QueryFilter narrows assignment listings. Zero values are ignored.
type QueryFilter struct {
	ClassID string
	Type    Type
	From    time.Time
	To      time.Time
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClassID == "" && qf.Type == "" && qf.From.IsZero() && qf.To.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.ClassID = core.CleanString(qf.ClassID)
}
