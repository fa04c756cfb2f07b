package main

import (
	"log"
	"os"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/assignment"
	emailsvc "github.com/trezcool/ratiba/services/email"
	logsvc "github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/database"
	"github.com/trezcool/ratiba/storage/database/sqlxrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	svcLogger := logsvc.NewStdLogger(logger)
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(svcLogger)
	}

	// start CLI
	cli := commandLine{
		db:     db,
		ttRepo: sqlxrepos.NewTimetableRepository(db),
		asgSvc: assignment.NewService(sqlxrepos.NewAssignmentRepository(db), mailSvc, svcLogger),
		conf:   conf,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
