package timetable

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound            = errors.New("course slot not found")
	ErrScheduleSetNotFound = errors.New("no schedule set covers this date")
	ErrUnknownTimeSlot     = errors.New("unknown time slot")
	ErrSlotOccupied        = errors.New("target slot is already occupied")
	ErrInvalidAdjacency    = errors.New("no free adjacent slot in this direction")
)

type (
	Repository interface {
		GetTimeSlots(ctx context.Context) ([]TimeSlot, error)
		GetScheduleSet(ctx context.Context, id uuid.UUID) (ScheduleSet, error)
		// ResolveScheduleSet returns the set whose validity window contains `date`;
		// ErrScheduleSetNotFound when none does.
		ResolveScheduleSet(ctx context.Context, date time.Time) (ScheduleSet, error)
		GetCourseSlots(ctx context.Context, setID uuid.UUID) ([]CourseSlot, error)
		GetCourseSlot(ctx context.Context, setID uuid.UUID, day Weekday, slotID uuid.UUID) (CourseSlot, error)
		GetCourseSlotByID(ctx context.Context, id uuid.UUID) (CourseSlot, error)
		CreateCourseSlot(ctx context.Context, cs CourseSlot) (CourseSlot, error)
		UpdateCourseSlot(ctx context.Context, cs CourseSlot) (CourseSlot, error)
		DeleteCourseSlot(ctx context.Context, id uuid.UUID) error
	}

	// Service validates and executes placement operations on the weekly grid.
	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Grid loads the full grid of a schedule set.
func (svc *Service) Grid(ctx context.Context, setID uuid.UUID) (*Grid, error) {
	slots, err := svc.repo.GetTimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	placed, err := svc.repo.GetCourseSlots(ctx, setID)
	if err != nil {
		return nil, err
	}
	return NewGrid(slots, placed), nil
}

// Set loads a schedule set by ID.
func (svc *Service) Set(ctx context.Context, id uuid.UUID) (ScheduleSet, error) {
	return svc.repo.GetScheduleSet(ctx, id)
}

// ResolveSet returns the schedule set current for `date`.
func (svc *Service) ResolveSet(ctx context.Context, date time.Time) (ScheduleSet, error) {
	return svc.repo.ResolveScheduleSet(ctx, date)
}

// Place creates a CourseSlot at (day, slotID), or updates the fields of the
// existing one in place. Purely structural: no status check involved.
func (svc *Service) Place(ctx context.Context, setID uuid.UUID, day Weekday, slotID uuid.UUID, data NewCourseSlot) (CourseSlot, error) {
	grid, err := svc.Grid(ctx, setID)
	if err != nil {
		return CourseSlot{}, err
	}
	if _, ok := grid.Slot(slotID); !ok {
		return CourseSlot{}, ErrUnknownTimeSlot
	}

	now := time.Now().UTC()
	if existing, ok := grid.At(day, slotID); ok {
		existing.Subject = data.Subject
		existing.ClassID = data.ClassID
		existing.Room = data.Room
		existing.Notes = data.Notes
		existing.UpdatedAt = now
		return svc.repo.UpdateCourseSlot(ctx, existing)
	}

	cs := CourseSlot{
		ID:            uuid.New(),
		ScheduleSetID: setID,
		Day:           day,
		TimeSlotID:    slotID,
		Subject:       data.Subject,
		ClassID:       data.ClassID,
		Room:          data.Room,
		Notes:         data.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateCourseSlot(ctx, cs)
}

// Move transplants the course at (srcDay, srcSlotID) to (dstDay, dstSlotID).
// The course keeps its identity; the source cell becomes empty. Target
// occupancy is re-checked here, at execution time, never at drag-start time.
func (svc *Service) Move(ctx context.Context, setID uuid.UUID, srcDay Weekday, srcSlotID uuid.UUID, dstDay Weekday, dstSlotID uuid.UUID) (CourseSlot, error) {
	grid, err := svc.Grid(ctx, setID)
	if err != nil {
		return CourseSlot{}, err
	}
	if _, ok := grid.Slot(dstSlotID); !ok {
		return CourseSlot{}, ErrUnknownTimeSlot
	}
	cs, ok := grid.At(srcDay, srcSlotID)
	if !ok {
		return CourseSlot{}, ErrNotFound
	}
	if _, occupied := grid.At(dstDay, dstSlotID); occupied {
		return CourseSlot{}, ErrSlotOccupied
	}

	cs.Day = dstDay
	cs.TimeSlotID = dstSlotID
	cs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourseSlot(ctx, cs)
}

// Extend places a copy of the course's subject/class/room into the free slot
// adjacent to (day, slotID). The two CourseSlots stay independent afterwards:
// this models "the same course continues into the next period", not a merged
// multi-period block.
func (svc *Service) Extend(ctx context.Context, setID uuid.UUID, day Weekday, slotID uuid.UUID, dir Direction) (CourseSlot, error) {
	grid, err := svc.Grid(ctx, setID)
	if err != nil {
		return CourseSlot{}, err
	}
	src, ok := grid.At(day, slotID)
	if !ok {
		return CourseSlot{}, ErrNotFound
	}

	prev, next := grid.Adjacent(slotID)
	target := next
	if dir == Up {
		target = prev
	}
	if target == nil {
		return CourseSlot{}, ErrInvalidAdjacency
	}
	if _, occupied := grid.At(day, target.ID); occupied {
		return CourseSlot{}, ErrInvalidAdjacency
	}

	now := time.Now().UTC()
	cs := CourseSlot{
		ID:            uuid.New(),
		ScheduleSetID: setID,
		Day:           day,
		TimeSlotID:    target.ID,
		Subject:       src.Subject,
		ClassID:       src.ClassID,
		Room:          src.Room,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateCourseSlot(ctx, cs)
}

// Remove deletes the CourseSlot at (day, slotID). Journal entries tied to it
// are left untouched; the overlay treats those orphans as no-ops on lookup.
func (svc *Service) Remove(ctx context.Context, setID uuid.UUID, day Weekday, slotID uuid.UUID) error {
	cs, err := svc.repo.GetCourseSlot(ctx, setID, day, slotID)
	if err != nil {
		return err
	}
	return svc.repo.DeleteCourseSlot(ctx, cs.ID)
}
