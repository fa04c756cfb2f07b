package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/assignment"
	"github.com/trezcool/ratiba/core/journal"
	"github.com/trezcool/ratiba/core/timetable"
)

type (
	// DB is the in-memory store backing local dev and the test suites.
	DB struct {
		mutex sync.RWMutex

		timeSlots    []timetable.TimeSlot
		scheduleSets map[uuid.UUID]*timetable.ScheduleSet
		courseSlots  map[uuid.UUID]*timetable.CourseSlot
		entries      map[uuid.UUID]*journal.Entry
		assignments  map[uuid.UUID]*assignment.Assignment
	}
)

func Open() (*DB, error) {
	db := &DB{
		scheduleSets: make(map[uuid.UUID]*timetable.ScheduleSet),
		courseSlots:  make(map[uuid.UUID]*timetable.CourseSlot),
		entries:      make(map[uuid.UUID]*journal.Entry),
		assignments:  make(map[uuid.UUID]*assignment.Assignment),
	}
	return db, nil
}

// Reset empties all tables. Test helper.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.timeSlots = nil
	db.scheduleSets = make(map[uuid.UUID]*timetable.ScheduleSet)
	db.courseSlots = make(map[uuid.UUID]*timetable.CourseSlot)
	db.entries = make(map[uuid.UUID]*journal.Entry)
	db.assignments = make(map[uuid.UUID]*assignment.Assignment)
}

// SeedTimeSlots replaces the time-slot catalog.
func (db *DB) SeedTimeSlots(slots []timetable.TimeSlot) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.timeSlots = make([]timetable.TimeSlot, len(slots))
	copy(db.timeSlots, slots)
}

// SeedScheduleSet registers a schedule set.
func (db *DB) SeedScheduleSet(set timetable.ScheduleSet) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.scheduleSets[set.ID] = &set
}
