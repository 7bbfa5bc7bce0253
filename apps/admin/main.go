package main

import (
	"fmt"
	"os"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/term"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	"github.com/trezcool/maendeleo/storage/cache"
	"github.com/trezcool/maendeleo/storage/database"
	"github.com/trezcool/maendeleo/storage/database/sqlxrepos"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(logsvc.NewLogrus(conf).WithField("component", "admin"), conf)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	rosterRepo := sqlxrepos.NewRosterRepository(db)
	cli := commandLine{
		conf:   conf,
		db:     db.DB,
		roster: rosterRepo,
		terms:  term.NewService(database.NewTransactor(db), sqlxrepos.NewTermRepository(db), cache.Nop{}, logger),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin: %v", err), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
