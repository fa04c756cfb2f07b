package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/journal"
)

type journalRepository struct {
	db *DB
}

var _ journal.Repository = (*journalRepository)(nil) // interface compliance check

func NewJournalRepository(db *DB) *journalRepository {
	return &journalRepository{db: db}
}

func (repo *journalRepository) GetEntry(ctx context.Context, courseSlotID uuid.UUID, date time.Time) (journal.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	date = core.DateOf(date)
	for _, e := range repo.db.entries {
		if e.CourseSlotID == courseSlotID && e.Date.Equal(date) {
			return *e, nil
		}
	}
	return journal.Entry{}, journal.ErrNotFound
}

func (repo *journalRepository) GetEntryByID(ctx context.Context, id uuid.UUID) (journal.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.entries[id]; ok {
		return *e, nil
	}
	return journal.Entry{}, journal.ErrNotFound
}

func (repo *journalRepository) GetEntries(ctx context.Context, setID uuid.UUID, from, to time.Time) ([]journal.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	from, to = core.DateOf(from), core.DateOf(to)
	entries := make([]journal.Entry, 0)
	for _, e := range repo.db.entries {
		cs, ok := repo.db.courseSlots[e.CourseSlotID]
		if !ok || cs.ScheduleSetID != setID {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (repo *journalRepository) CreateEntry(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	entry.Date = core.DateOf(entry.Date)
	// (slot, date) unique
	for _, other := range repo.db.entries {
		if other.CourseSlotID == entry.CourseSlotID && other.Date.Equal(entry.Date) {
			// upsert on conflict, same as the pg ON CONFLICT path
			entry.ID = other.ID
			entry.CreatedAt = other.CreatedAt
			repo.db.entries[entry.ID] = &entry
			return entry, nil
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
		entry.UpdatedAt = now
	}
	repo.db.entries[entry.ID] = &entry
	return entry, nil
}

func (repo *journalRepository) UpdateEntry(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.entries[entry.ID]; !ok {
		return journal.Entry{}, journal.ErrNotFound
	}
	entry.Date = core.DateOf(entry.Date)
	entry.UpdatedAt = time.Now().UTC()
	repo.db.entries[entry.ID] = &entry
	return entry, nil
}

func (repo *journalRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.entries, id)
	return nil
}
