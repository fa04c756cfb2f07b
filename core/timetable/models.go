package timetable

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
)

// Weekday is a school day. Weekends carry no slots.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

var (
	Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

	weekdayNames = map[Weekday]string{
		Monday:    "monday",
		Tuesday:   "tuesday",
		Wednesday: "wednesday",
		Thursday:  "thursday",
		Friday:    "friday",
	}
)

func (d Weekday) String() string { return weekdayNames[d] }

func (d Weekday) IsValid() bool {
	return Monday <= d && d <= Friday
}

func ParseWeekday(s string) (Weekday, bool) {
	s = core.CleanString(s, true /* lower */)
	for d, name := range weekdayNames {
		if name == s {
			return d, true
		}
	}
	return 0, false
}

// WeekdayOf maps a calendar date to its school Weekday; ok is false on weekends.
func WeekdayOf(date time.Time) (Weekday, bool) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return 0, false
	default:
		return Weekday(date.Weekday()), true
	}
}

// TimeSlot is one period of the day ("08:25-09:15"). The catalog is ordered by
// Position and read-only to the engine; it is seeded via the admin CLI.
type TimeSlot struct {
	ID       uuid.UUID `json:"id"`
	Label    string    `json:"label"`
	Position int       `json:"position"`
}

// ScheduleSet is a dated validity window owning one version of the weekly grid.
type ScheduleSet struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Contains reports whether `date` falls within the set's validity window (inclusive).
func (ss ScheduleSet) Contains(date time.Time) bool {
	d := core.DateOf(date)
	return !d.Before(core.DateOf(ss.StartDate)) && !d.After(core.DateOf(ss.EndDate))
}

// CourseSlot is a recurring weekly placement of a class/subject/room.
// At most one exists per (ScheduleSetID, Day, TimeSlotID).
type CourseSlot struct {
	ID            uuid.UUID `json:"id"`
	ScheduleSetID uuid.UUID `json:"schedule_set_id"`
	Day           Weekday   `json:"day"`
	TimeSlotID    uuid.UUID `json:"time_slot_id"`
	Subject       string    `json:"subject"`
	ClassID       string    `json:"class_id"`
	Room          string    `json:"room"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// NewCourseSlot contains information needed to place a course in a slot.
type NewCourseSlot struct {
	Subject string `json:"subject" validate:"required"`
	ClassID string `json:"class_id" validate:"required"`
	Room    string `json:"room" validate:"required"`
	Notes   string `json:"notes"`
}

func (ncs *NewCourseSlot) Validate(validate *validator.Validate) error {
	ncs.Subject = core.CleanString(ncs.Subject)
	ncs.ClassID = core.CleanString(ncs.ClassID)
	ncs.Room = core.CleanString(ncs.Room)
	ncs.Notes = core.CleanString(ncs.Notes)
	return validate.Struct(ncs)
}

// Direction is the side of a slot an extension grows into.
type Direction int

const (
	Up Direction = iota + 1
	Down
)

func ParseDirection(s string) (Direction, bool) {
	switch core.CleanString(s, true /* lower */) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return 0, false
}
