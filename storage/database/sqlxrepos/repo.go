// Package sqlxrepos implements the repositories of the core packages on PostgreSQL.
package sqlxrepos

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
)

type repo struct {
	db *sqlx.DB
}

// getExec returns the executor a service passed in, if any, or the repository's database.
// Executors given by database.NewTransactor are *sqlx.Tx.
func (r repo) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 && svcExec[0] != nil {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return r.db
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUUID avoids sending postgres ids it would reject.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func orderBy(ordering []core.DBOrdering, allowed map[string]string) string {
	list := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		list = append(list, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(list) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(list, ", ")
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
