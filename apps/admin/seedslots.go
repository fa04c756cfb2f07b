package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

var errCatalogNotEmpty = errors.New("time-slot catalog is not empty")

// seedSlots populates the time-slot catalog from an ordered label list.
// The catalog must be empty: periods are structural, reseeding over live
// placements would corrupt the grid.
func (cli *commandLine) seedSlots(labels string) error {
	ctx := context.Background()

	existing, err := cli.ttRepo.GetTimeSlots(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return errCatalogNotEmpty
	}

	pos := 0
	for _, label := range strings.Split(labels, ",") {
		label = core.CleanString(label)
		if label == "" {
			continue
		}
		pos++
		if _, err := cli.ttRepo.CreateTimeSlot(ctx, timetable.TimeSlot{
			ID:       uuid.New(),
			Label:    label,
			Position: pos,
		}); err != nil {
			return err
		}
	}
	logger.Printf("seeded %d time slots", pos)
	return nil
}

// addSet registers a new schedule set validity window.
func (cli *commandLine) addSet(name, start, end string) error {
	startDate, err := time.ParseInLocation("2006-01-02", start, time.UTC)
	if err != nil {
		return err
	}
	endDate, err := time.ParseInLocation("2006-01-02", end, time.UTC)
	if err != nil {
		return err
	}
	if endDate.Before(startDate) {
		return errors.New("end date precedes start date")
	}

	now := time.Now().UTC()
	set, err := cli.ttRepo.CreateScheduleSet(context.Background(), timetable.ScheduleSet{
		ID:        uuid.New(),
		Name:      core.CleanString(name),
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	logger.Printf("created schedule set %s (%s)", set.Name, set.ID)
	return nil
}
