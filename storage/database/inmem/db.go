// Package inmemdb keeps the engine's records in memory. It backs tests and local development.
package inmemdb

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/goal"
	"github.com/trezcool/maendeleo/core/progress"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

var errNoSQL = errors.New("in-memory database does not run SQL")

type (
	memberKey struct {
		classroomID string
		userID      string
	}

	goalKey struct {
		termID string
		week   int
	}

	tables struct {
		users      map[string]roster.User
		classrooms map[string]roster.Classroom
		members    map[memberKey]struct{}
		subjects   map[string]roster.Subject
		terms      map[string]term.Term
		progress   map[string]progress.Progress
		goals      map[goalKey]goal.Goal
	}

	// DB holds every table behind one mutex, taken by each transaction and by each
	// statement run outside of one.
	DB struct {
		mutex sync.Mutex
		t     *tables
	}
)

func newTables() *tables {
	return &tables{
		users:      make(map[string]roster.User),
		classrooms: make(map[string]roster.Classroom),
		members:    make(map[memberKey]struct{}),
		subjects:   make(map[string]roster.Subject),
		terms:      make(map[string]term.Term),
		progress:   make(map[string]progress.Progress),
		goals:      make(map[goalKey]goal.Goal),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.classrooms {
		c.classrooms[k] = v
	}
	for k, v := range t.members {
		c.members[k] = v
	}
	for k, v := range t.subjects {
		c.subjects[k] = v
	}
	for k, v := range t.terms {
		c.terms[k] = v
	}
	for k, v := range t.progress {
		c.progress[k] = v
	}
	for k, v := range t.goals {
		c.goals[k] = v
	}
	return c
}

func Open() *DB {
	return &DB{t: newTables()}
}

// txExec marks the statements run inside a transaction, which already holds the DB mutex.
type txExec struct{}

func (txExec) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

func (txExec) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (txExec) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func inTx(exec []core.DBExecutor) bool {
	if len(exec) == 0 {
		return false
	}
	_, ok := exec[0].(txExec)
	return ok
}

// do runs fn with the tables, locking them unless exec is a transaction.
func (db *DB) do(exec []core.DBExecutor, fn func(t *tables) error) error {
	if !inTx(exec) {
		db.mutex.Lock()
		defer db.mutex.Unlock()
	}
	return fn(db.t)
}

type transactor struct {
	db *DB
}

// NewTransactor returns a core.Transactor serializing transactions on db.
// A failing transaction leaves the tables as they were before it.
// Transactions must not be nested.
func NewTransactor(db *DB) core.Transactor {
	return &transactor{db: db}
}

func (tx *transactor) RunInTx(ctx context.Context, fn func(exec core.DBExecutor) error) (err error) {
	tx.db.mutex.Lock()
	defer tx.db.mutex.Unlock()

	if err = ctx.Err(); err != nil {
		return err
	}
	snapshot := tx.db.t.clone()
	defer func() {
		if p := recover(); p != nil {
			tx.db.t = snapshot
			panic(p)
		}
		if err != nil {
			tx.db.t = snapshot
		}
	}()
	return fn(txExec{})
}
