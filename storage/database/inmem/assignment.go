package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id uuid.UUID) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) FindAssignment(ctx context.Context, classID, subject string, typ assignment.Type, dueDate time.Time) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	dueDate = core.DateOf(dueDate)
	for _, a := range repo.db.assignments {
		if a.ClassID == classID && a.Subject == subject && a.Type == typ && a.DueDate.Equal(dueDate) {
			return *a, nil
		}
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) FilterAssignments(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]assignment.Assignment, 0)
	for _, a := range repo.db.assignments {
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && a.DueDate.Before(core.DateOf(filter.From)) {
			continue
		}
		if !filter.To.IsZero() && a.DueDate.After(core.DateOf(filter.To)) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
		a.UpdatedAt = now
	}
	a.DueDate = core.DateOf(a.DueDate)
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	a.DueDate = core.DateOf(a.DueDate)
	a.UpdatedAt = time.Now().UTC()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.assignments, id)
	return nil
}
