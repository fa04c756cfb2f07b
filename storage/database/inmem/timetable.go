package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/timetable"
)

type timetableRepository struct {
	db *DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) *timetableRepository {
	return &timetableRepository{db: db}
}

func (repo *timetableRepository) GetTimeSlots(ctx context.Context) ([]timetable.TimeSlot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	slots := make([]timetable.TimeSlot, len(repo.db.timeSlots))
	copy(slots, repo.db.timeSlots)
	return slots, nil
}

func (repo *timetableRepository) GetScheduleSet(ctx context.Context, id uuid.UUID) (timetable.ScheduleSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if set, ok := repo.db.scheduleSets[id]; ok {
		return *set, nil
	}
	return timetable.ScheduleSet{}, timetable.ErrScheduleSetNotFound
}

func (repo *timetableRepository) ResolveScheduleSet(ctx context.Context, date time.Time) (timetable.ScheduleSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, set := range repo.db.scheduleSets {
		if set.Contains(date) {
			return *set, nil
		}
	}
	return timetable.ScheduleSet{}, timetable.ErrScheduleSetNotFound
}

func (repo *timetableRepository) GetCourseSlots(ctx context.Context, setID uuid.UUID) ([]timetable.CourseSlot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	slots := make([]timetable.CourseSlot, 0)
	for _, cs := range repo.db.courseSlots {
		if cs.ScheduleSetID == setID {
			slots = append(slots, *cs)
		}
	}
	return slots, nil
}

func (repo *timetableRepository) GetCourseSlot(ctx context.Context, setID uuid.UUID, day timetable.Weekday, slotID uuid.UUID) (timetable.CourseSlot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cs := range repo.db.courseSlots {
		if cs.ScheduleSetID == setID && cs.Day == day && cs.TimeSlotID == slotID {
			return *cs, nil
		}
	}
	return timetable.CourseSlot{}, timetable.ErrNotFound
}

func (repo *timetableRepository) GetCourseSlotByID(ctx context.Context, id uuid.UUID) (timetable.CourseSlot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cs, ok := repo.db.courseSlots[id]; ok {
		return *cs, nil
	}
	return timetable.CourseSlot{}, timetable.ErrNotFound
}

func (repo *timetableRepository) CreateCourseSlot(ctx context.Context, cs timetable.CourseSlot) (timetable.CourseSlot, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// (set, day, slot) unique
	for _, other := range repo.db.courseSlots {
		if other.ScheduleSetID == cs.ScheduleSetID && other.Day == cs.Day && other.TimeSlotID == cs.TimeSlotID {
			return timetable.CourseSlot{}, timetable.ErrSlotOccupied
		}
	}
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	now := time.Now().UTC()
	if cs.CreatedAt.IsZero() {
		cs.CreatedAt = now
		cs.UpdatedAt = now
	}
	repo.db.courseSlots[cs.ID] = &cs
	return cs, nil
}

func (repo *timetableRepository) UpdateCourseSlot(ctx context.Context, cs timetable.CourseSlot) (timetable.CourseSlot, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courseSlots[cs.ID]; !ok {
		return timetable.CourseSlot{}, timetable.ErrNotFound
	}
	for _, other := range repo.db.courseSlots {
		if other.ID != cs.ID && other.ScheduleSetID == cs.ScheduleSetID && other.Day == cs.Day && other.TimeSlotID == cs.TimeSlotID {
			return timetable.CourseSlot{}, timetable.ErrSlotOccupied
		}
	}
	cs.UpdatedAt = time.Now().UTC()
	repo.db.courseSlots[cs.ID] = &cs
	return cs, nil
}

func (repo *timetableRepository) DeleteCourseSlot(ctx context.Context, id uuid.UUID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.courseSlots, id)
	return nil
}
