package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core/timetable"
)

type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *sql.DB) *timetableRepository {
	return &timetableRepository{db: sqlx.NewDb(db, "postgres")}
}

type (
	timeSlotRow struct {
		ID       uuid.UUID `db:"id"`
		Label    string    `db:"label"`
		Position int       `db:"position"`
	}

	scheduleSetRow struct {
		ID        uuid.UUID `db:"id"`
		Name      string    `db:"name"`
		StartDate time.Time `db:"start_date"`
		EndDate   time.Time `db:"end_date"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	courseSlotRow struct {
		ID            uuid.UUID   `db:"id"`
		ScheduleSetID uuid.UUID   `db:"schedule_set_id"`
		Day           int         `db:"day"`
		TimeSlotID    uuid.UUID   `db:"time_slot_id"`
		Subject       string      `db:"subject"`
		ClassID       string      `db:"class_id"`
		Room          string      `db:"room"`
		Notes         null.String `db:"notes"`
		CreatedAt     time.Time   `db:"created_at"`
		UpdatedAt     time.Time   `db:"updated_at"`
	}
)

func (row courseSlotRow) courseSlot() timetable.CourseSlot {
	return timetable.CourseSlot{
		ID:            row.ID,
		ScheduleSetID: row.ScheduleSetID,
		Day:           timetable.Weekday(row.Day),
		TimeSlotID:    row.TimeSlotID,
		Subject:       row.Subject,
		ClassID:       row.ClassID,
		Room:          row.Room,
		Notes:         row.Notes.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func courseSlots(rows []courseSlotRow) []timetable.CourseSlot {
	out := make([]timetable.CourseSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.courseSlot())
	}
	return out
}

// isUniqueViolation reports a rejected (schedule_set_id, day, time_slot_id) insert.
func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == "23505"
}

func (repo *timetableRepository) GetTimeSlots(ctx context.Context) ([]timetable.TimeSlot, error) {
	var rows []timeSlotRow
	q := `SELECT id, label, position FROM time_slot ORDER BY position`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting time slots")
	}
	slots := make([]timetable.TimeSlot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, timetable.TimeSlot{ID: row.ID, Label: row.Label, Position: row.Position})
	}
	return slots, nil
}

func (repo *timetableRepository) CreateTimeSlot(ctx context.Context, ts timetable.TimeSlot) (timetable.TimeSlot, error) {
	q := `INSERT INTO time_slot (label, position) VALUES ($1, $2) RETURNING id`
	if err := repo.db.QueryRowContext(ctx, q, ts.Label, ts.Position).Scan(&ts.ID); err != nil {
		return timetable.TimeSlot{}, errors.Wrap(err, "inserting time slot")
	}
	return ts, nil
}

func (repo *timetableRepository) GetScheduleSet(ctx context.Context, id uuid.UUID) (timetable.ScheduleSet, error) {
	var row scheduleSetRow
	q := `SELECT id, name, start_date, end_date, created_at, updated_at FROM schedule_set WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return timetable.ScheduleSet{}, timetable.ErrScheduleSetNotFound
		}
		return timetable.ScheduleSet{}, errors.Wrap(err, "selecting schedule set")
	}
	return timetable.ScheduleSet(row), nil
}

func (repo *timetableRepository) ResolveScheduleSet(ctx context.Context, date time.Time) (timetable.ScheduleSet, error) {
	var row scheduleSetRow
	q := `SELECT id, name, start_date, end_date, created_at, updated_at
	        FROM schedule_set
	       WHERE start_date <= $1 AND end_date >= $1
	       ORDER BY start_date DESC
	       LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, date); err != nil {
		if err == sql.ErrNoRows {
			return timetable.ScheduleSet{}, timetable.ErrScheduleSetNotFound
		}
		return timetable.ScheduleSet{}, errors.Wrap(err, "resolving schedule set")
	}
	return timetable.ScheduleSet(row), nil
}

func (repo *timetableRepository) CreateScheduleSet(ctx context.Context, set timetable.ScheduleSet) (timetable.ScheduleSet, error) {
	q := `INSERT INTO schedule_set (name, start_date, end_date) VALUES ($1, $2, $3)
	      RETURNING id, created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, q, set.Name, set.StartDate, set.EndDate).
		Scan(&set.ID, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		return timetable.ScheduleSet{}, errors.Wrap(err, "inserting schedule set")
	}
	return set, nil
}

const courseSlotCols = `id, schedule_set_id, day, time_slot_id, subject, class_id, room, notes, created_at, updated_at`

func (repo *timetableRepository) GetCourseSlots(ctx context.Context, setID uuid.UUID) ([]timetable.CourseSlot, error) {
	var rows []courseSlotRow
	q := `SELECT ` + courseSlotCols + ` FROM course_slot WHERE schedule_set_id = $1`
	if err := repo.db.SelectContext(ctx, &rows, q, setID); err != nil {
		return nil, errors.Wrap(err, "selecting course slots")
	}
	return courseSlots(rows), nil
}

func (repo *timetableRepository) GetCourseSlot(ctx context.Context, setID uuid.UUID, day timetable.Weekday, slotID uuid.UUID) (timetable.CourseSlot, error) {
	var row courseSlotRow
	q := `SELECT ` + courseSlotCols + ` FROM course_slot
	       WHERE schedule_set_id = $1 AND day = $2 AND time_slot_id = $3`
	if err := repo.db.GetContext(ctx, &row, q, setID, int(day), slotID); err != nil {
		if err == sql.ErrNoRows {
			return timetable.CourseSlot{}, timetable.ErrNotFound
		}
		return timetable.CourseSlot{}, errors.Wrap(err, "selecting course slot")
	}
	return row.courseSlot(), nil
}

func (repo *timetableRepository) GetCourseSlotByID(ctx context.Context, id uuid.UUID) (timetable.CourseSlot, error) {
	var row courseSlotRow
	q := `SELECT ` + courseSlotCols + ` FROM course_slot WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return timetable.CourseSlot{}, timetable.ErrNotFound
		}
		return timetable.CourseSlot{}, errors.Wrap(err, "selecting course slot by id")
	}
	return row.courseSlot(), nil
}

func (repo *timetableRepository) CreateCourseSlot(ctx context.Context, cs timetable.CourseSlot) (timetable.CourseSlot, error) {
	q := `INSERT INTO course_slot (id, schedule_set_id, day, time_slot_id, subject, class_id, room, notes)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	      RETURNING created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, q,
		cs.ID, cs.ScheduleSetID, int(cs.Day), cs.TimeSlotID,
		cs.Subject, cs.ClassID, cs.Room, null.NewString(cs.Notes, cs.Notes != ""),
	).Scan(&cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return timetable.CourseSlot{}, timetable.ErrSlotOccupied
		}
		return timetable.CourseSlot{}, errors.Wrap(err, "inserting course slot")
	}
	return cs, nil
}

func (repo *timetableRepository) UpdateCourseSlot(ctx context.Context, cs timetable.CourseSlot) (timetable.CourseSlot, error) {
	q := `UPDATE course_slot
	         SET day = $2, time_slot_id = $3, subject = $4, class_id = $5, room = $6, notes = $7, updated_at = now()
	       WHERE id = $1
	      RETURNING updated_at`
	err := repo.db.QueryRowContext(ctx, q,
		cs.ID, int(cs.Day), cs.TimeSlotID, cs.Subject, cs.ClassID, cs.Room, null.NewString(cs.Notes, cs.Notes != ""),
	).Scan(&cs.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return timetable.CourseSlot{}, timetable.ErrNotFound
		}
		if isUniqueViolation(err) {
			return timetable.CourseSlot{}, timetable.ErrSlotOccupied
		}
		return timetable.CourseSlot{}, errors.Wrap(err, "updating course slot")
	}
	return cs, nil
}

func (repo *timetableRepository) DeleteCourseSlot(ctx context.Context, id uuid.UUID) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course_slot WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course slot")
	}
	return nil
}
