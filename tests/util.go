package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
)

// InitConf installs a test configuration if none is loaded yet.
func InitConf() *core.Config {
	if core.Conf == nil {
		core.Conf = &core.Config{
			Env:              "TEST",
			TestMode:         true,
			AppName:          "Ratiba",
			SecretKey:        "test-secret-key",
			DefaultFromName:  "Ratiba",
			DefaultFromAddr:  "noreply@test.local",
			TeacherEmailAddr: "teacher@test.local",
			AutosaveDelay:    10 * time.Millisecond,
			ReminderHorizon:  7 * 24 * time.Hour,
			Server: core.ServerConfig{
				JWTExpirationDelta: time.Hour,
				ShutdownTimeout:    time.Second,
			},
		}
	}
	return core.Conf
}

// OpenDB opens a fresh in-memory store.
func OpenDB() *inmemdb.DB {
	InitConf()
	db, _ := inmemdb.Open()
	return db
}

// PrepareDB returns an empty store, reset again on test cleanup.
func PrepareDB(t *testing.T) *inmemdb.DB {
	t.Helper()
	db := OpenDB()
	t.Cleanup(db.Reset)
	return db
}

// CreateTimeSlots seeds a catalog of consecutively positioned slots.
func CreateTimeSlots(t *testing.T, db *inmemdb.DB, labels ...string) []timetable.TimeSlot {
	t.Helper()
	slots := make([]timetable.TimeSlot, 0, len(labels))
	for i, label := range labels {
		slots = append(slots, timetable.TimeSlot{
			ID:       uuid.New(),
			Label:    label,
			Position: i + 1,
		})
	}
	db.SeedTimeSlots(slots)
	return slots
}

// CreateScheduleSet registers a set valid over [start, end].
func CreateScheduleSet(t *testing.T, db *inmemdb.DB, name string, start, end time.Time) timetable.ScheduleSet {
	t.Helper()
	now := time.Now().UTC()
	set := timetable.ScheduleSet{
		ID:        uuid.New(),
		Name:      name,
		StartDate: core.DateOf(start),
		EndDate:   core.DateOf(end),
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.SeedScheduleSet(set)
	return set
}

// CreateCourseSlot places a course directly through the repository.
func CreateCourseSlot(
	t *testing.T,
	repo timetable.Repository,
	setID uuid.UUID,
	day timetable.Weekday,
	slotID uuid.UUID,
	subject, classID, room string,
) timetable.CourseSlot {
	t.Helper()
	now := time.Now().UTC()
	cs, err := repo.CreateCourseSlot(context.Background(), timetable.CourseSlot{
		ID:            uuid.New(),
		ScheduleSetID: setID,
		Day:           day,
		TimeSlotID:    slotID,
		Subject:       subject,
		ClassID:       classID,
		Room:          room,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateCourseSlot() failed: %v", err)
	}
	return cs
}
