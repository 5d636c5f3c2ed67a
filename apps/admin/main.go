package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/sheet"
	emailsvc "github.com/trezcool/markaz/services/email"
	logsvc "github.com/trezcool/markaz/services/logger"
	"github.com/trezcool/markaz/storage/database"
	boiledrepos "github.com/trezcool/markaz/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/markaz/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(db); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}
	registry := sqlxrepos.NewStudentRegistry(sqlx.NewDb(db, conf.Database.Engine))

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(conf, logger)

	// start CLI
	cli := commandLine{
		conf: conf,
		db:   db,
		sheet: sheet.Deps{
			Registry: registry,
			Records:  boiledrepos.NewSheetRecordRepository(db),
			Logger:   logger,
		},
		assigner: registry,
		mailSvc:  mailSvc,
		out:      os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
