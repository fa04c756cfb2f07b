package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

var (
	// errors
	ErrNotFound      = errors.New("journal entry not found")
	ErrInvalidStatus = errors.New("invalid journal status")
)

type (
	Repository interface {
		GetEntry(ctx context.Context, courseSlotID uuid.UUID, date time.Time) (Entry, error)
		GetEntryByID(ctx context.Context, id uuid.UUID) (Entry, error)
		// GetEntries returns the entries of all course slots belonging to `setID`
		// whose date falls within [from, to].
		GetEntries(ctx context.Context, setID uuid.UUID, from, to time.Time) ([]Entry, error)
		CreateEntry(ctx context.Context, entry Entry) (Entry, error)
		UpdateEntry(ctx context.Context, entry Entry) (Entry, error)
		DeleteEntry(ctx context.Context, id uuid.UUID) error
	}

	// SlotDirectory is the slice of the timetable the overlay needs: resolving
	// a course slot and enumerating a schedule set's placements.
	SlotDirectory interface {
		GetCourseSlotByID(ctx context.Context, id uuid.UUID) (timetable.CourseSlot, error)
		GetCourseSlots(ctx context.Context, setID uuid.UUID) ([]timetable.CourseSlot, error)
	}

	// InterroSyncer keeps a derived assignment record in lockstep with the
	// interro flag. Best effort: sync failures are logged, never propagated.
	InterroSyncer interface {
		InterroSet(ctx context.Context, classID, subject string, date time.Time, description string) error
		InterroCleared(ctx context.Context, classID, subject string, date time.Time) error
	}

	// Service is the journal overlay: per-date annotations on course slots,
	// including the cascading status propagation across a day.
	Service struct {
		repo   Repository
		slots  SlotDirectory
		syncer InterroSyncer
		logger core.Logger
	}
)

func NewService(repo Repository, slots SlotDirectory, syncer InterroSyncer, logger core.Logger) *Service {
	return &Service{repo: repo, slots: slots, syncer: syncer, logger: logger}
}

// slotOf resolves the course slot an operation targets. Entries referencing a
// removed slot are orphans: ok is false and the operation becomes a no-op.
func (svc *Service) slotOf(ctx context.Context, courseSlotID uuid.UUID) (timetable.CourseSlot, bool, error) {
	cs, err := svc.slots.GetCourseSlotByID(ctx, courseSlotID)
	if err != nil {
		if errors.Is(err, timetable.ErrNotFound) {
			svc.logger.Debug(fmt.Sprintf("journal: ignoring orphaned course slot %s", courseSlotID))
			return timetable.CourseSlot{}, false, nil
		}
		return timetable.CourseSlot{}, false, err
	}
	return cs, true, nil
}

func (svc *Service) loadOrInit(ctx context.Context, courseSlotID uuid.UUID, date time.Time) (Entry, bool, error) {
	date = core.DateOf(date)
	entry, err := svc.repo.GetEntry(ctx, courseSlotID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			now := time.Now().UTC()
			return Entry{
				ID:           uuid.New(),
				CourseSlotID: courseSlotID,
				Date:         date,
				Status:       StatusGiven,
				CreatedAt:    now,
				UpdatedAt:    now,
			}, false, nil
		}
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (svc *Service) save(ctx context.Context, entry Entry, found bool) (Entry, error) {
	entry.UpdatedAt = time.Now().UTC()
	if found {
		return svc.repo.UpdateEntry(ctx, entry)
	}
	return svc.repo.CreateEntry(ctx, entry)
}

// Upsert creates or updates the (courseSlotID, date) entry with the given text
// fields. Editing the notes of a holiday entry, or of the triggering entry of
// a whole-day cancellation, re-runs the matching cascade so the siblings pick
// the new note up.
func (svc *Service) Upsert(ctx context.Context, courseSlotID uuid.UUID, date time.Time, fields UpdateEntry) (Entry, error) {
	slot, ok, err := svc.slotOf(ctx, courseSlotID)
	if err != nil || !ok {
		return Entry{}, err
	}

	entry, found, err := svc.loadOrInit(ctx, courseSlotID, date)
	if err != nil {
		return Entry{}, err
	}
	if fields.PlannedWork != nil {
		entry.PlannedWork = *fields.PlannedWork
	}
	if fields.ActualWork != nil {
		entry.ActualWork = *fields.ActualWork
	}
	if fields.Notes != nil {
		entry.Notes = *fields.Notes
	}
	entry, err = svc.save(ctx, entry, found)
	if err != nil {
		return Entry{}, err
	}

	if fields.Notes != nil {
		switch {
		case entry.Status == StatusHoliday:
			svc.cascade(ctx, slot, entry.Date, StatusHoliday, entry.Notes, false /* sameClassOnly */)
		case entry.Status == StatusCancelled && entry.WholeDay:
			svc.cascade(ctx, slot, entry.Date, StatusCancelled, entry.Notes, false /* sameClassOnly */)
		}
	}
	return entry, nil
}

// SetStatus rewrites the entry's fields according to the status transition
// table, then propagates: holiday reaches every other course slot scheduled on
// that weekday within the same schedule set, exam only the other slots of the
// same class.
func (svc *Service) SetStatus(ctx context.Context, courseSlotID uuid.UUID, date time.Time, status Status, note string) (Entry, error) {
	if !status.IsValid() {
		return Entry{}, core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}
	slot, ok, err := svc.slotOf(ctx, courseSlotID)
	if err != nil || !ok {
		return Entry{}, err
	}

	entry, found, err := svc.loadOrInit(ctx, courseSlotID, date)
	if err != nil {
		return Entry{}, err
	}

	entry.Status = status
	entry.ActualWork = ""
	entry.Interro = false
	entry.WholeDay = false
	switch status {
	case StatusGiven:
		// planned work survives the reset
		entry.Notes = ""
	case StatusCancelled:
		entry.PlannedWork = ""
		entry.Notes = note
	case StatusExam:
		entry.PlannedWork = ""
		if note == "" {
			note = DefaultExamNote
		}
		entry.Notes = note
	case StatusHoliday:
		entry.PlannedWork = ""
		if note == "" {
			note = DefaultHolidayNote
		}
		entry.Notes = note
	}

	entry, err = svc.save(ctx, entry, found)
	if err != nil {
		return Entry{}, err
	}

	switch status {
	case StatusHoliday:
		svc.cascade(ctx, slot, entry.Date, StatusHoliday, entry.Notes, false /* sameClassOnly */)
	case StatusExam:
		svc.cascade(ctx, slot, entry.Date, StatusExam, entry.Notes, true /* sameClassOnly */)
	}
	return entry, nil
}

// CancelWholeDay cancels every sibling slot of that day, reusing the current
// entry's note text. A one-shot user action, not an automatic transition.
func (svc *Service) CancelWholeDay(ctx context.Context, courseSlotID uuid.UUID, date time.Time) (Entry, error) {
	slot, ok, err := svc.slotOf(ctx, courseSlotID)
	if err != nil || !ok {
		return Entry{}, err
	}

	entry, found, err := svc.loadOrInit(ctx, courseSlotID, date)
	if err != nil {
		return Entry{}, err
	}
	note := entry.Notes

	entry.Status = StatusCancelled
	entry.PlannedWork = ""
	entry.ActualWork = ""
	entry.Interro = false
	entry.WholeDay = true
	entry, err = svc.save(ctx, entry, found)
	if err != nil {
		return Entry{}, err
	}

	svc.cascade(ctx, slot, entry.Date, StatusCancelled, note, false /* sameClassOnly */)
	return entry, nil
}

// SetInterro toggles the interro flag, preserving the entry's free text, and
// notifies the assignment syncer. Orthogonal to the status.
func (svc *Service) SetInterro(ctx context.Context, courseSlotID uuid.UUID, date time.Time, on bool) (Entry, error) {
	slot, ok, err := svc.slotOf(ctx, courseSlotID)
	if err != nil || !ok {
		return Entry{}, err
	}

	entry, found, err := svc.loadOrInit(ctx, courseSlotID, date)
	if err != nil {
		return Entry{}, err
	}
	if entry.Interro == on {
		return entry, nil
	}
	entry.Interro = on
	entry, err = svc.save(ctx, entry, found)
	if err != nil {
		return Entry{}, err
	}

	if svc.syncer != nil {
		var sErr error
		if on {
			sErr = svc.syncer.InterroSet(ctx, slot.ClassID, slot.Subject, entry.Date, entry.ActualWork)
		} else {
			sErr = svc.syncer.InterroCleared(ctx, slot.ClassID, slot.Subject, entry.Date)
		}
		if sErr != nil {
			// best effort; the journal edit stands
			svc.logger.Error("journal: syncing interro assignment", sErr)
		}
	}
	return entry, nil
}

// Entries lists a schedule set's entries within [from, to].
func (svc *Service) Entries(ctx context.Context, setID uuid.UUID, from, to time.Time) ([]Entry, error) {
	return svc.repo.GetEntries(ctx, setID, core.DateOf(from), core.DateOf(to))
}

// Delete removes an entry explicitly.
func (svc *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return svc.repo.DeleteEntry(ctx, id)
}

// cascade writes `status` to the journal entries of the origin's day siblings.
// Sibling writes are plain upserts keyed (slot, date): re-running a cascade
// only updates, it never duplicates. Writes are sequential and independent; a
// failing sibling is logged and skipped, the rest proceed.
func (svc *Service) cascade(ctx context.Context, origin timetable.CourseSlot, date time.Time, status Status, note string, sameClassOnly bool) {
	all, err := svc.slots.GetCourseSlots(ctx, origin.ScheduleSetID)
	if err != nil {
		svc.logger.Error("journal: listing day siblings for cascade", err)
		return
	}

	sibs := make([]timetable.CourseSlot, 0, len(all))
	for _, cs := range all {
		if cs.ID == origin.ID || cs.Day != origin.Day {
			continue
		}
		if sameClassOnly && cs.ClassID != origin.ClassID {
			continue
		}
		sibs = append(sibs, cs)
	}
	sort.Slice(sibs, func(i, j int) bool { return sibs[i].ID.String() < sibs[j].ID.String() })

	for _, sib := range sibs {
		if err := svc.cascadeOne(ctx, sib.ID, date, status, note); err != nil {
			svc.logger.Error(fmt.Sprintf("journal: cascading %s to slot %s on %s", status, sib.ID, date.Format("2006-01-02")), err)
		}
	}
}

func (svc *Service) cascadeOne(ctx context.Context, courseSlotID uuid.UUID, date time.Time, status Status, note string) error {
	entry, found, err := svc.loadOrInit(ctx, courseSlotID, date)
	if err != nil {
		return err
	}
	entry.Status = status
	entry.PlannedWork = ""
	entry.ActualWork = ""
	entry.Interro = false
	entry.WholeDay = false
	entry.Notes = note
	_, err = svc.save(ctx, entry, found)
	return err
}
