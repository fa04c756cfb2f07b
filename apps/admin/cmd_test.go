package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

type (
	fakeTimetableRepo struct {
		slots []timetable.TimeSlot
		sets  []timetable.ScheduleSet
	}

	fakeReminderSender struct {
		called  bool
		horizon time.Duration
	}
)

func (repo *fakeTimetableRepo) GetTimeSlots(context.Context) ([]timetable.TimeSlot, error) {
	return repo.slots, nil
}

func (repo *fakeTimetableRepo) CreateTimeSlot(_ context.Context, ts timetable.TimeSlot) (timetable.TimeSlot, error) {
	repo.slots = append(repo.slots, ts)
	return ts, nil
}

func (repo *fakeTimetableRepo) CreateScheduleSet(_ context.Context, set timetable.ScheduleSet) (timetable.ScheduleSet, error) {
	repo.sets = append(repo.sets, set)
	return set, nil
}

func (s *fakeReminderSender) SendDueReminders(_ context.Context, horizon time.Duration) error {
	s.called = true
	s.horizon = horizon
	return nil
}

func setup(t *testing.T) (*commandLine, *fakeTimetableRepo, *fakeReminderSender) {
	t.Helper()
	logger = log.New(io.Discard, "", 0)

	repo := new(fakeTimetableRepo)
	sender := new(fakeReminderSender)
	return &commandLine{
		ttRepo: repo,
		asgSvc: sender,
		conf:   &core.Config{ReminderHorizon: 7 * 24 * time.Hour},
	}, repo, sender
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "reset", args: []string{"migrate", "reset"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			checkCLIErr(t, err, tt)
		})
	}
}

func Test_commandLine_seedSlots(t *testing.T) {
	cli, repo, _ := setup(t)

	tests := []cliTest{
		{name: "no labels", args: []string{"seedslots"}, wantErr: errHelp},
		{name: "seed", args: []string{"seedslots", "-labels", "08:25-09:15,09:15-10:05, ,10:25-11:15"}},
		{name: "catalog not empty", args: []string{"seedslots", "-labels", "08:25-09:15"}, wantErr: errCatalogNotEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			checkCLIErr(t, err, tt)
		})
	}

	if len(repo.slots) != 3 {
		t.Fatalf("expected 3 slots seeded, got %d", len(repo.slots))
	}
	for i, ts := range repo.slots {
		if ts.Position != i+1 {
			t.Errorf("slot %q: position = %d, want %d", ts.Label, ts.Position, i+1)
		}
		if ts.ID == uuid.Nil {
			t.Errorf("slot %q: missing id", ts.Label)
		}
	}
}

func Test_commandLine_addSet(t *testing.T) {
	cli, repo, _ := setup(t)

	tests := []cliTest{
		{name: "missing flags", args: []string{"addset", "-name", "2020-2021"}, wantErr: errHelp},
		{name: "bad start date", args: []string{"addset", "-name", "s", "-start", "lol", "-end", "2021-07-02"}, wantErrStr: "parsing time \"lol\" as \"2006-01-02\": cannot parse \"lol\" as \"2006\""},
		{name: "end before start", args: []string{"addset", "-name", "s", "-start", "2021-07-02", "-end", "2020-09-01"}, wantErrStr: "end date precedes start date"},
		{name: "create", args: []string{"addset", "-name", "2020-2021", "-start", "2020-09-01", "-end", "2021-07-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			checkCLIErr(t, err, tt)
		})
	}

	if len(repo.sets) != 1 {
		t.Fatalf("expected 1 schedule set, got %d", len(repo.sets))
	}
	set := repo.sets[0]
	if set.Name != "2020-2021" {
		t.Errorf("set.Name = %q", set.Name)
	}
	if !set.Contains(time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("set does not cover a date inside its window")
	}
}

func Test_commandLine_remind(t *testing.T) {
	cli, _, sender := setup(t)

	if err := cli.run([]string{"admin", "remind"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	if !sender.called {
		t.Error("reminder digest was not sent")
	}
	if sender.horizon != 7*24*time.Hour {
		t.Errorf("horizon = %v", sender.horizon)
	}
}

func checkCLIErr(t *testing.T, err error, tt cliTest) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error = %v, want %q", err, tt.wantErrStr)
		}
	default:
		if err != nil {
			t.Errorf("cli.run() error = %v", err)
		}
	}
}
