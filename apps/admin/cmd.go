package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	db     *sql.DB
	roster roster.Repository
	terms  *term.Service
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -name NAME -role ROLE [-classroom ID] - create a user, optionally in a classroom")
	fmt.Fprintln(cli.out, "  token -user ID - print an API token for the user")
	fmt.Fprintln(cli.out, "  seed [-weeks N] - create a demo classroom with a teacher, students, a subject and a term")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserName := addUserCmd.String("name", "", "The user's name.")
	addUserRole := addUserCmd.String("role", "", "One of: admin, teacher, student.")
	addUserClassroom := addUserCmd.String("classroom", "", "ID of a classroom to add the user to.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenUser := tokenCmd.String("user", "", "The user's ID.")

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedWeeks := seedCmd.Int("weeks", 4, "Length of the demo term, in weeks.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserName == "" || *addUserRole == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserRole, *addUserClassroom)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenUser == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.printToken(*tokenUser)
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedWeeks < 1 {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedWeeks)
	default:
		cli.printUsage()
		return errHelp
	}
}
