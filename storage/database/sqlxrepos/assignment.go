package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sql.DB) *assignmentRepository {
	return &assignmentRepository{db: sqlx.NewDb(db, "postgres")}
}

type assignmentRow struct {
	ID          uuid.UUID   `db:"id"`
	ClassID     string      `db:"class_id"`
	Subject     string      `db:"subject"`
	Type        string      `db:"type"`
	Description null.String `db:"description"`
	DueDate     time.Time   `db:"due_date"`
	IsCompleted bool        `db:"is_completed"`
	IsCorrected bool        `db:"is_corrected"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row assignmentRow) assignment() assignment.Assignment {
	return assignment.Assignment{
		ID:          row.ID,
		ClassID:     row.ClassID,
		Subject:     row.Subject,
		Type:        assignment.Type(row.Type),
		Description: row.Description.String,
		DueDate:     row.DueDate.UTC(),
		IsCompleted: row.IsCompleted,
		IsCorrected: row.IsCorrected,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

const assignmentCols = `id, class_id, subject, type, description, due_date, is_completed, is_corrected, created_at, updated_at`

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id uuid.UUID) (assignment.Assignment, error) {
	var row assignmentRow
	q := `SELECT ` + assignmentCols + ` FROM assignment WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "selecting assignment")
	}
	return row.assignment(), nil
}

func (repo *assignmentRepository) FindAssignment(ctx context.Context, classID, subject string, typ assignment.Type, dueDate time.Time) (assignment.Assignment, error) {
	var row assignmentRow
	q := `SELECT ` + assignmentCols + ` FROM assignment
	       WHERE class_id = $1 AND subject = $2 AND type = $3 AND due_date = $4
	       LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, classID, subject, string(typ), dueDate); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return row.assignment(), nil
}

func (repo *assignmentRepository) FilterAssignments(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	q := `SELECT ` + assignmentCols + ` FROM assignment WHERE 1=1`
	args := make([]interface{}, 0, 4)
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		q += fmt.Sprintf(" AND class_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		q += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		q += fmt.Sprintf(" AND due_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		q += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}
	q += " ORDER BY due_date"

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering assignments")
	}
	out := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.assignment())
	}
	return out, nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `INSERT INTO assignment (id, class_id, subject, type, description, due_date, is_completed, is_corrected)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	      RETURNING created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, q,
		a.ID, a.ClassID, a.Subject, string(a.Type),
		null.NewString(a.Description, a.Description != ""),
		a.DueDate, a.IsCompleted, a.IsCorrected,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `UPDATE assignment
	         SET class_id = $2, subject = $3, type = $4, description = $5, due_date = $6,
	             is_completed = $7, is_corrected = $8, updated_at = now()
	       WHERE id = $1
	      RETURNING updated_at`
	err := repo.db.QueryRowContext(ctx, q,
		a.ID, a.ClassID, a.Subject, string(a.Type),
		null.NewString(a.Description, a.Description != ""),
		a.DueDate, a.IsCompleted, a.IsCorrected,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}
