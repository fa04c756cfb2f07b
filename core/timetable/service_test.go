package timetable

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"

	logsvc "github.com/trezcool/ratiba/services/logger"
)

type fakeRepo struct {
	slots  []TimeSlot
	sets   []ScheduleSet
	placed map[uuid.UUID]CourseSlot
}

func newFakeRepo(slots []TimeSlot, sets ...ScheduleSet) *fakeRepo {
	return &fakeRepo{
		slots:  slots,
		sets:   sets,
		placed: make(map[uuid.UUID]CourseSlot),
	}
}

var _ Repository = (*fakeRepo)(nil)

func (repo *fakeRepo) GetTimeSlots(context.Context) ([]TimeSlot, error) { return repo.slots, nil }

func (repo *fakeRepo) GetScheduleSet(_ context.Context, id uuid.UUID) (ScheduleSet, error) {
	for _, set := range repo.sets {
		if set.ID == id {
			return set, nil
		}
	}
	return ScheduleSet{}, ErrScheduleSetNotFound
}

func (repo *fakeRepo) ResolveScheduleSet(_ context.Context, date time.Time) (ScheduleSet, error) {
	for _, set := range repo.sets {
		if set.Contains(date) {
			return set, nil
		}
	}
	return ScheduleSet{}, ErrScheduleSetNotFound
}

func (repo *fakeRepo) GetCourseSlots(_ context.Context, setID uuid.UUID) ([]CourseSlot, error) {
	var out []CourseSlot
	for _, cs := range repo.placed {
		if cs.ScheduleSetID == setID {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (repo *fakeRepo) GetCourseSlot(_ context.Context, setID uuid.UUID, day Weekday, slotID uuid.UUID) (CourseSlot, error) {
	for _, cs := range repo.placed {
		if cs.ScheduleSetID == setID && cs.Day == day && cs.TimeSlotID == slotID {
			return cs, nil
		}
	}
	return CourseSlot{}, ErrNotFound
}

func (repo *fakeRepo) GetCourseSlotByID(_ context.Context, id uuid.UUID) (CourseSlot, error) {
	if cs, ok := repo.placed[id]; ok {
		return cs, nil
	}
	return CourseSlot{}, ErrNotFound
}

func (repo *fakeRepo) CreateCourseSlot(ctx context.Context, cs CourseSlot) (CourseSlot, error) {
	if _, err := repo.GetCourseSlot(ctx, cs.ScheduleSetID, cs.Day, cs.TimeSlotID); err == nil {
		return CourseSlot{}, ErrSlotOccupied
	}
	repo.placed[cs.ID] = cs
	return cs, nil
}

func (repo *fakeRepo) UpdateCourseSlot(_ context.Context, cs CourseSlot) (CourseSlot, error) {
	if _, ok := repo.placed[cs.ID]; !ok {
		return CourseSlot{}, ErrNotFound
	}
	repo.placed[cs.ID] = cs
	return cs, nil
}

func (repo *fakeRepo) DeleteCourseSlot(_ context.Context, id uuid.UUID) error {
	if _, ok := repo.placed[id]; !ok {
		return ErrNotFound
	}
	delete(repo.placed, id)
	return nil
}

func setup(t *testing.T) (*Service, *fakeRepo, ScheduleSet, []TimeSlot) {
	t.Helper()
	slots := testSlots("08:25-09:15", "09:15-10:05", "10:25-11:15")
	now := time.Now().UTC()
	set := ScheduleSet{
		ID:        uuid.New(),
		Name:      "2020-2021",
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   now.AddDate(0, 9, 0),
	}
	repo := newFakeRepo(slots, set)
	svc := NewService(repo, logsvc.NewStdLogger(log.New(io.Discard, "", 0)))
	return svc, repo, set, slots
}

var maths = NewCourseSlot{Subject: "Mathématiques", ClassID: "3A", Room: "B12"}

func TestService_Place(t *testing.T) {
	svc, _, set, slots := setup(t)
	ctx := context.Background()

	cs, err := svc.Place(ctx, set.ID, Monday, slots[0].ID, maths)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if cs.Subject != "Mathématiques" || cs.Day != Monday || cs.TimeSlotID != slots[0].ID {
		t.Errorf("Place() = %+v", cs)
	}

	// placing again on the same cell updates in place, same identity
	updated, err := svc.Place(ctx, set.ID, Monday, slots[0].ID, NewCourseSlot{Subject: "Physique", ClassID: "3A", Room: "Labo 1"})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if updated.ID != cs.ID {
		t.Errorf("re-place changed identity: %v != %v", updated.ID, cs.ID)
	}
	if updated.Subject != "Physique" || updated.Room != "Labo 1" {
		t.Errorf("re-place did not update fields: %+v", updated)
	}

	if _, err = svc.Place(ctx, set.ID, Monday, uuid.New(), maths); err != ErrUnknownTimeSlot {
		t.Errorf("Place(unknown slot) error = %v, wantErr %v", err, ErrUnknownTimeSlot)
	}
}

func TestService_Move(t *testing.T) {
	svc, _, set, slots := setup(t)
	ctx := context.Background()

	src, err := svc.Place(ctx, set.ID, Monday, slots[0].ID, maths)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if _, err = svc.Place(ctx, set.ID, Tuesday, slots[1].ID, NewCourseSlot{Subject: "Anglais", ClassID: "4B", Room: "A3"}); err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	moved, err := svc.Move(ctx, set.ID, Monday, slots[0].ID, Friday, slots[2].ID)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if moved.ID != src.ID {
		t.Errorf("Move() changed identity: %v != %v", moved.ID, src.ID)
	}
	if moved.Day != Friday || moved.TimeSlotID != slots[2].ID {
		t.Errorf("Move() = %+v", moved)
	}

	// source cell is now empty
	grid, err := svc.Grid(ctx, set.ID)
	if err != nil {
		t.Fatalf("Grid() error = %v", err)
	}
	if _, ok := grid.At(Monday, slots[0].ID); ok {
		t.Error("source cell still occupied after move")
	}

	// moving back restores the original placement exactly
	back, err := svc.Move(ctx, set.ID, Friday, slots[2].ID, Monday, slots[0].ID)
	if err != nil {
		t.Fatalf("Move() back error = %v", err)
	}
	if back.ID != src.ID || back.Day != src.Day || back.TimeSlotID != src.TimeSlotID || back.Subject != src.Subject {
		t.Errorf("round-trip mismatch: got %+v, want %+v", back, src)
	}

	// occupancy is checked at execution time
	if _, err = svc.Move(ctx, set.ID, Monday, slots[0].ID, Tuesday, slots[1].ID); err != ErrSlotOccupied {
		t.Errorf("Move(occupied) error = %v, wantErr %v", err, ErrSlotOccupied)
	}
	if _, err = svc.Move(ctx, set.ID, Wednesday, slots[0].ID, Friday, slots[2].ID); err != ErrNotFound {
		t.Errorf("Move(empty source) error = %v, wantErr %v", err, ErrNotFound)
	}
	if _, err = svc.Move(ctx, set.ID, Monday, slots[0].ID, Friday, uuid.New()); err != ErrUnknownTimeSlot {
		t.Errorf("Move(unknown target) error = %v, wantErr %v", err, ErrUnknownTimeSlot)
	}
}

func TestService_Extend(t *testing.T) {
	svc, _, set, slots := setup(t)
	ctx := context.Background()

	src, err := svc.Place(ctx, set.ID, Thursday, slots[1].ID, NewCourseSlot{Subject: "Mathématiques", ClassID: "3A", Room: "B12", Notes: "contrôle à préparer"})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	ext, err := svc.Extend(ctx, set.ID, Thursday, slots[1].ID, Down)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if ext.ID == src.ID {
		t.Error("Extend() must create an independent course slot")
	}
	if ext.TimeSlotID != slots[2].ID || ext.Day != Thursday {
		t.Errorf("Extend() landed at (%v, %v)", ext.Day, ext.TimeSlotID)
	}
	if ext.Subject != src.Subject || ext.ClassID != src.ClassID || ext.Room != src.Room {
		t.Errorf("Extend() did not copy course fields: %+v", ext)
	}
	if ext.Notes != "" {
		t.Errorf("Extend() copied notes: %q", ext.Notes)
	}

	// the copy is independent: updating one leaves the other untouched
	if _, err = svc.Place(ctx, set.ID, Thursday, slots[2].ID, NewCourseSlot{Subject: "Physique", ClassID: "3A", Room: "Labo 1"}); err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	grid, _ := svc.Grid(ctx, set.ID)
	orig, _ := grid.At(Thursday, slots[1].ID)
	if orig.Subject != "Mathématiques" {
		t.Errorf("source mutated by editing the extension: %+v", orig)
	}

	// upward into the occupied source slot of the extension
	if _, err = svc.Extend(ctx, set.ID, Thursday, slots[2].ID, Up); err != ErrInvalidAdjacency {
		t.Errorf("Extend(occupied) error = %v, wantErr %v", err, ErrInvalidAdjacency)
	}
	// off the bottom edge
	if _, err = svc.Extend(ctx, set.ID, Thursday, slots[2].ID, Down); err != ErrInvalidAdjacency {
		t.Errorf("Extend(edge) error = %v, wantErr %v", err, ErrInvalidAdjacency)
	}
	if _, err = svc.Extend(ctx, set.ID, Friday, slots[0].ID, Down); err != ErrNotFound {
		t.Errorf("Extend(empty cell) error = %v, wantErr %v", err, ErrNotFound)
	}
}

func TestService_Remove(t *testing.T) {
	svc, repo, set, slots := setup(t)
	ctx := context.Background()

	cs, err := svc.Place(ctx, set.ID, Monday, slots[0].ID, maths)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if err = svc.Remove(ctx, set.ID, Monday, slots[0].ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := repo.placed[cs.ID]; ok {
		t.Error("course slot still present after Remove()")
	}
	if err = svc.Remove(ctx, set.ID, Monday, slots[0].ID); err != ErrNotFound {
		t.Errorf("Remove(empty) error = %v, wantErr %v", err, ErrNotFound)
	}
}

func TestService_ResolveSet(t *testing.T) {
	svc, _, set, _ := setup(t)
	ctx := context.Background()

	got, err := svc.ResolveSet(ctx, time.Now())
	if err != nil {
		t.Fatalf("ResolveSet() error = %v", err)
	}
	if got.ID != set.ID {
		t.Errorf("ResolveSet() = %v, want %v", got.ID, set.ID)
	}

	if _, err = svc.ResolveSet(ctx, time.Now().AddDate(2, 0, 0)); err != ErrScheduleSetNotFound {
		t.Errorf("ResolveSet(outside) error = %v, wantErr %v", err, ErrScheduleSetNotFound)
	}
}
