package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core/journal"
)

type journalRepository struct {
	db *sqlx.DB
}

var _ journal.Repository = (*journalRepository)(nil) // interface compliance check

func NewJournalRepository(db *sql.DB) *journalRepository {
	return &journalRepository{db: sqlx.NewDb(db, "postgres")}
}

type entryRow struct {
	ID           uuid.UUID   `db:"id"`
	CourseSlotID uuid.UUID   `db:"course_slot_id"`
	Date         time.Time   `db:"date"`
	PlannedWork  null.String `db:"planned_work"`
	ActualWork   null.String `db:"actual_work"`
	Notes        null.String `db:"notes"`
	Status       string      `db:"status"`
	Interro      bool        `db:"interro"`
	WholeDay     bool        `db:"whole_day"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row entryRow) entry() journal.Entry {
	return journal.Entry{
		ID:           row.ID,
		CourseSlotID: row.CourseSlotID,
		Date:         row.Date.UTC(),
		PlannedWork:  row.PlannedWork.String,
		ActualWork:   row.ActualWork.String,
		Notes:        row.Notes.String,
		Status:       journal.Status(row.Status),
		Interro:      row.Interro,
		WholeDay:     row.WholeDay,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

const entryCols = `id, course_slot_id, date, planned_work, actual_work, notes, status, interro, whole_day, created_at, updated_at`

func (repo *journalRepository) GetEntry(ctx context.Context, courseSlotID uuid.UUID, date time.Time) (journal.Entry, error) {
	var row entryRow
	q := `SELECT ` + entryCols + ` FROM journal_entry WHERE course_slot_id = $1 AND date = $2`
	if err := repo.db.GetContext(ctx, &row, q, courseSlotID, date); err != nil {
		if err == sql.ErrNoRows {
			return journal.Entry{}, journal.ErrNotFound
		}
		return journal.Entry{}, errors.Wrap(err, "selecting journal entry")
	}
	return row.entry(), nil
}

func (repo *journalRepository) GetEntryByID(ctx context.Context, id uuid.UUID) (journal.Entry, error) {
	var row entryRow
	q := `SELECT ` + entryCols + ` FROM journal_entry WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return journal.Entry{}, journal.ErrNotFound
		}
		return journal.Entry{}, errors.Wrap(err, "selecting journal entry by id")
	}
	return row.entry(), nil
}

func (repo *journalRepository) GetEntries(ctx context.Context, setID uuid.UUID, from, to time.Time) ([]journal.Entry, error) {
	var rows []entryRow
	q := `SELECT e.id, e.course_slot_id, e.date, e.planned_work, e.actual_work, e.notes,
	             e.status, e.interro, e.whole_day, e.created_at, e.updated_at
	        FROM journal_entry e
	        JOIN course_slot cs ON cs.id = e.course_slot_id
	       WHERE cs.schedule_set_id = $1 AND e.date BETWEEN $2 AND $3
	       ORDER BY e.date`
	if err := repo.db.SelectContext(ctx, &rows, q, setID, from, to); err != nil {
		return nil, errors.Wrap(err, "selecting journal entries")
	}
	entries := make([]journal.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

func (repo *journalRepository) CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	// upsert: cascades re-create at the same (slot, date) key
	q := `INSERT INTO journal_entry (id, course_slot_id, date, planned_work, actual_work, notes, status, interro, whole_day)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	      ON CONFLICT (course_slot_id, date) DO UPDATE
	         SET planned_work = EXCLUDED.planned_work,
	             actual_work  = EXCLUDED.actual_work,
	             notes        = EXCLUDED.notes,
	             status       = EXCLUDED.status,
	             interro      = EXCLUDED.interro,
	             whole_day    = EXCLUDED.whole_day,
	             updated_at   = now()
	      RETURNING id, created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, q,
		e.ID, e.CourseSlotID, e.Date,
		null.NewString(e.PlannedWork, e.PlannedWork != ""),
		null.NewString(e.ActualWork, e.ActualWork != ""),
		null.NewString(e.Notes, e.Notes != ""),
		string(e.Status), e.Interro, e.WholeDay,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return journal.Entry{}, errors.Wrap(err, "inserting journal entry")
	}
	return e, nil
}

func (repo *journalRepository) UpdateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	q := `UPDATE journal_entry
	         SET planned_work = $2, actual_work = $3, notes = $4, status = $5, interro = $6, whole_day = $7, updated_at = now()
	       WHERE id = $1
	      RETURNING updated_at`
	err := repo.db.QueryRowContext(ctx, q,
		e.ID,
		null.NewString(e.PlannedWork, e.PlannedWork != ""),
		null.NewString(e.ActualWork, e.ActualWork != ""),
		null.NewString(e.Notes, e.Notes != ""),
		string(e.Status), e.Interro, e.WholeDay,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return journal.Entry{}, journal.ErrNotFound
		}
		return journal.Entry{}, errors.Wrap(err, "updating journal entry")
	}
	return e, nil
}

func (repo *journalRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM journal_entry WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting journal entry")
	}
	return nil
}
