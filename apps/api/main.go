package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/assignment"
	"github.com/trezcool/ratiba/core/autosave"
	"github.com/trezcool/ratiba/core/journal"
	"github.com/trezcool/ratiba/core/timetable"
	emailsvc "github.com/trezcool/ratiba/services/email"
	logsvc "github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/database"
	"github.com/trezcool/ratiba/storage/database/sqlxrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	ttRepo := sqlxrepos.NewTimetableRepository(db)
	ttSvc := timetable.NewService(ttRepo, logger)
	asgSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db), mailSvc, logger)
	jSvc := journal.NewService(sqlxrepos.NewJournalRepository(db), ttRepo, asgSvc, logger)

	pipeline := autosave.NewPipeline(
		conf.AutosaveDelay,
		func(key autosave.Key, payload interface{}) error {
			fields, ok := payload.(journal.UpdateEntry)
			if !ok {
				return fmt.Errorf("unexpected autosave payload %T", payload)
			}
			date, err := time.ParseInLocation("2006-01-02", key.Date, time.UTC)
			if err != nil {
				return err
			}
			_, err = jSvc.Upsert(context.Background(), key.CourseSlotID, date, fields)
			return err
		},
		func(key autosave.Key, err error) {
			logger.Error(fmt.Sprintf("autosave: flushing entry %s/%s", key.CourseSlotID, key.Date), err)
		},
	)
	defer pipeline.Close()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			TimetableSvc:  ttSvc,
			JournalSvc:    jSvc,
			AssignmentSvc: asgSvc,
			Autosave:      pipeline,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
