package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
	"github.com/trezcool/maendeleo/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Engine, *bytes.Buffer) {
	e := testutil.NewEngine(t)
	var out bytes.Buffer
	return &commandLine{
		conf:   e.Conf,
		roster: e.Roster,
		terms:  e.TermSvc,
		out:    &out,
	}, e, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser: no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "adduser: no role", args: []string{"adduser", "-name", "Awe"}, wantErr: errHelp},
		{name: "adduser: unknown flag", args: []string{"adduser", "-lol"}, wantErr: errHelp},
		{name: "token: no user", args: []string{"token"}, wantErr: errHelp},
		{name: "seed: no weeks", args: []string{"seed", "-weeks", "0"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
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
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "attendance", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, e, out := setup(t)
	cls := testutil.CreateClassroom(t, e.Roster, "Classroom")

	tests := []cliTest{
		{name: "unknown role", args: []string{"adduser", "-name", "Awe", "-role", "parent"}, wantErrStr: "\"parent\": unknown role"},
		{name: "classroom not found", args: []string{"adduser", "-name", "Awe", "-role", "student", "-classroom", "lol"}, wantErr: roster.ErrClassroomNotFound},
		{name: "without classroom", args: []string{"adduser", "-name", "Awe", "-role", "Teacher"}},
		{name: "with classroom", args: []string{"adduser", "-name", " Awe ", "-role", "student", "-classroom", cls.ID}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			tt.check(t, err)
			if err != nil {
				return
			}

			// user created: <id>
			line := strings.TrimSpace(out.String())
			id := line[strings.LastIndex(line, " ")+1:]
			usr, err := e.Roster.GetUser(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, "Awe", usr.Name)

			in, err := e.Roster.IsInClassroom(context.Background(), cls.ID, usr.ID)
			require.NoError(t, err)
			assert.Equal(t, usr.IsStudent(), in)
		})
	}
}

func Test_commandLine_printToken(t *testing.T) {
	cli, e, out := setup(t)
	usr := testutil.CreateUser(t, e.Roster, "Awe", roster.RoleTeacher)

	t.Run("user not found", func(t *testing.T) {
		assert.Equal(t, roster.ErrUserNotFound, cli.run([]string{"admin", "token", "-user", "lol"}))
	})

	t.Run("token", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "token", "-user", usr.ID}))

		claims := new(echoapi.Claims)
		_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
			return []byte(e.Conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, claims.Subject)
		assert.Equal(t, usr.Roles, claims.Roles)
	})
}

func Test_commandLine_seed(t *testing.T) {
	cli, e, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "seed", "-weeks", "3"}))

	var classroomID string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "classroom:") {
			classroomID = strings.TrimSpace(strings.TrimPrefix(line, "classroom:"))
		}
	}
	require.NotEmpty(t, classroomID)

	terms, err := e.TermSvc.QueryByClassroom(context.Background(), classroomID)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, term.SchoolDays, terms[0].AllowedDays)
	assert.Equal(t, 20, terms[0].Start.DaysUntil(terms[0].End))
	assert.Equal(t, 4, terms[0].NumberOfWeeks())

	// seeding again adds another classroom
	require.NoError(t, cli.run([]string{"admin", "seed"}))
}
