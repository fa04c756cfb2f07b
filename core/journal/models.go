package journal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status of a course occurrence on a concrete date. Stored as an explicit
// enum; the bracketed sentinels of the legacy cahier-de-textes format
// ("[HOLIDAY]" inside the actual-work text) only survive in the interchange
// helpers below.
type Status string

const (
	StatusGiven     Status = "given"
	StatusCancelled Status = "cancelled"
	StatusExam      Status = "exam"
	StatusHoliday   Status = "holiday"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusGiven, StatusCancelled, StatusExam, StatusHoliday:
		return true
	}
	return false
}

// Legacy work-text sentinels.
const (
	TagCancelled = "[CANCELLED]"
	TagExam      = "[EXAM]"
	TagHoliday   = "[HOLIDAY]"
	TagInterro   = "[INTERRO]"
)

// Default note texts, in the teacher's tongue.
const (
	DefaultExamNote    = "Sujet : "
	DefaultHolidayNote = "Férié"
)

// Entry is the realization of a CourseSlot on one calendar date.
// At most one exists per (CourseSlotID, Date).
type Entry struct {
	ID           uuid.UUID `json:"id"`
	CourseSlotID uuid.UUID `json:"course_slot_id"`
	Date         time.Time `json:"date"` // date only, UTC
	PlannedWork  string    `json:"planned_work"`
	ActualWork   string    `json:"actual_work"`
	Notes        string    `json:"notes"`
	Status       Status    `json:"status"`
	Interro      bool      `json:"interro"`
	// WholeDay marks the entry that triggered a whole-day cancellation;
	// note edits on it keep propagating to the day's siblings.
	WholeDay  bool      `json:"whole_day"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// UpdateEntry defines the text fields an edit may carry. Nil means untouched.
type UpdateEntry struct {
	PlannedWork *string `json:"planned_work"`
	ActualWork  *string `json:"actual_work"`
	Notes       *string `json:"notes"`
}

func (ue UpdateEntry) IsEmpty() bool {
	return ue.PlannedWork == nil && ue.ActualWork == nil && ue.Notes == nil
}

// ParseWorkText decodes a legacy actual-work string: a leading status sentinel
// and/or "[INTERRO]" prefix composing with the remaining free text.
func ParseWorkText(s string) (status Status, interro bool, text string) {
	status = StatusGiven
	text = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(text, TagCancelled):
		status = StatusCancelled
		text = strings.TrimSpace(strings.TrimPrefix(text, TagCancelled))
	case strings.HasPrefix(text, TagExam):
		status = StatusExam
		text = strings.TrimSpace(strings.TrimPrefix(text, TagExam))
	case strings.HasPrefix(text, TagHoliday):
		status = StatusHoliday
		text = strings.TrimSpace(strings.TrimPrefix(text, TagHoliday))
	}
	if strings.HasPrefix(text, TagInterro) {
		interro = true
		text = strings.TrimSpace(strings.TrimPrefix(text, TagInterro))
	}
	return status, interro, text
}

// FormatWorkText is the inverse of ParseWorkText.
func FormatWorkText(status Status, interro bool, text string) string {
	parts := make([]string, 0, 3)
	switch status {
	case StatusCancelled:
		parts = append(parts, TagCancelled)
	case StatusExam:
		parts = append(parts, TagExam)
	case StatusHoliday:
		parts = append(parts, TagHoliday)
	}
	if interro {
		parts = append(parts, TagInterro)
	}
	if text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}
