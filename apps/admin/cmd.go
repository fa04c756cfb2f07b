package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

var errHelp = errors.New("help provided")

type (
	// timetableRepository is the slice of the timetable store the CLI needs.
	timetableRepository interface {
		GetTimeSlots(ctx context.Context) ([]timetable.TimeSlot, error)
		CreateTimeSlot(ctx context.Context, ts timetable.TimeSlot) (timetable.TimeSlot, error)
		CreateScheduleSet(ctx context.Context, set timetable.ScheduleSet) (timetable.ScheduleSet, error)
	}

	reminderSender interface {
		SendDueReminders(ctx context.Context, horizon time.Duration) error
	}

	commandLine struct {
		db     *sql.DB
		ttRepo timetableRepository
		asgSvc reminderSender
		conf   *core.Config
	}
)

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|up-by-one|up-to|down|down-to|redo|reset|status|version|fix|create - apply DB migrations")
	fmt.Println("  seedslots -labels L1,L2,... - seed the time-slot catalog, in order")
	fmt.Println("  addset -name NAME -start YYYY-MM-DD -end YYYY-MM-DD - register a schedule set")
	fmt.Println("  remind - email the teacher a digest of upcoming assignments")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedSlotsCmd := flag.NewFlagSet("seedslots", flag.ExitOnError)
	seedSlotsLabels := seedSlotsCmd.String("labels", "", "Comma-separated period labels, e.g. 08:25-09:15,09:15-10:05.")

	addSetCmd := flag.NewFlagSet("addset", flag.ExitOnError)
	addSetName := addSetCmd.String("name", "", "The schedule set's name.")
	addSetStart := addSetCmd.String("start", "", "First valid date, YYYY-MM-DD.")
	addSetEnd := addSetCmd.String("end", "", "Last valid date, YYYY-MM-DD.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seedslots":
		if err := seedSlotsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedSlotsLabels == "" {
			seedSlotsCmd.Usage()
			return errHelp
		}
		return cli.seedSlots(*seedSlotsLabels)
	case "addset":
		if err := addSetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSetName == "" || *addSetStart == "" || *addSetEnd == "" {
			addSetCmd.Usage()
			return errHelp
		}
		return cli.addSet(*addSetName, *addSetStart, *addSetEnd)
	case "remind":
		return cli.remind()
	default:
		cli.printUsage()
		return errHelp
	}
}
