package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/term"
)

type termRepository struct {
	repo
}

var _ term.Repository = (*termRepository)(nil) // interface compliance check

func NewTermRepository(db *sqlx.DB) *termRepository {
	return &termRepository{repo{db: db}}
}

const termColumns = "id, classroom_id, start_date, end_date, allowed_days, created_at, updated_at"

type termRow struct {
	ID          string        `db:"id"`
	ClassroomID string        `db:"classroom_id"`
	Start       core.Date     `db:"start_date"`
	End         core.Date     `db:"end_date"`
	AllowedDays term.Weekdays `db:"allowed_days"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (row termRow) term() term.Term {
	return term.Term{
		ID:          row.ID,
		ClassroomID: row.ClassroomID,
		Start:       row.Start,
		End:         row.End,
		AllowedDays: row.AllowedDays,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// LockClassroom takes a transaction-level advisory lock on the classroom id.
// It is released on commit or rollback.
func (r termRepository) LockClassroom(ctx context.Context, classroomID string, exec ...core.DBExecutor) error {
	_, err := r.getExec(exec).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1)::bigint)`, classroomID)
	return errors.Wrap(err, "locking classroom terms")
}

func (r termRepository) HasOverlap(ctx context.Context, classroomID string, start, end core.Date, excludeID string, exec ...core.DBExecutor) (bool, error) {
	q := `SELECT EXISTS (
		SELECT 1 FROM term
		WHERE classroom_id = $1 AND start_date <= $3 AND $2 <= end_date`
	args := []interface{}{classroomID, start, end}
	if isUUID(excludeID) {
		q += ` AND id <> $4`
		args = append(args, excludeID)
	}
	q += `)`

	var overlaps bool
	if err := sqlx.GetContext(ctx, r.getExec(exec), &overlaps, q, args...); err != nil {
		return false, errors.Wrap(err, "checking term overlap")
	}
	return overlaps, nil
}

func (r termRepository) CreateTerm(ctx context.Context, t term.Term, exec ...core.DBExecutor) (term.Term, error) {
	_, err := r.getExec(exec).ExecContext(ctx,
		`INSERT INTO term (`+termColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ClassroomID, t.Start, t.End, t.AllowedDays, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return term.Term{}, errors.Wrap(err, "inserting term")
	}
	return t, nil
}

func (r termRepository) GetTerm(ctx context.Context, id string, exec ...core.DBExecutor) (term.Term, error) {
	if !isUUID(id) {
		return term.Term{}, term.ErrNotFound
	}
	q := `SELECT ` + termColumns + ` FROM term WHERE id = $1`
	if len(exec) > 0 && exec[0] != nil {
		q += ` FOR UPDATE`
	}
	var row termRow
	if err := sqlx.GetContext(ctx, r.getExec(exec), &row, q, id); err != nil {
		return term.Term{}, trapNoRowsErr(err, term.ErrNotFound, "getting term")
	}
	return row.term(), nil
}

func (r termRepository) QueryTerms(ctx context.Context, filter term.QueryFilter, exec ...core.DBExecutor) ([]term.Term, error) {
	q := `SELECT ` + termColumns + ` FROM term WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.ClassroomID != "" {
		if !isUUID(filter.ClassroomID) {
			return []term.Term{}, nil
		}
		q += ` AND classroom_id = ` + arg(filter.ClassroomID)
	}
	if !filter.Date.IsZero() {
		p := arg(filter.Date)
		q += ` AND start_date <= ` + p + ` AND end_date >= ` + p
	}
	if isUUID(filter.ExcludeID) {
		q += ` AND id <> ` + arg(filter.ExcludeID)
	}
	q += ` ORDER BY start_date ASC`

	var rows []termRow
	if err := sqlx.SelectContext(ctx, r.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying terms")
	}
	terms := make([]term.Term, 0, len(rows))
	for _, row := range rows {
		terms = append(terms, row.term())
	}
	return terms, nil
}

func (r termRepository) UpdateTerm(ctx context.Context, t term.Term, exec ...core.DBExecutor) (term.Term, error) {
	res, err := r.getExec(exec).ExecContext(ctx,
		`UPDATE term SET start_date = $2, end_date = $3, allowed_days = $4, updated_at = $5 WHERE id = $1`,
		t.ID, t.Start, t.End, t.AllowedDays, t.UpdatedAt)
	if err != nil {
		return term.Term{}, errors.Wrap(err, "updating term")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return term.Term{}, term.ErrNotFound
	}
	return t, nil
}

// UpdateAllowedDays returns the term as stored, the other columns untouched.
func (r termRepository) UpdateAllowedDays(ctx context.Context, t term.Term, exec ...core.DBExecutor) (term.Term, error) {
	var row termRow
	err := sqlx.GetContext(ctx, r.getExec(exec), &row,
		`UPDATE term SET allowed_days = $2, updated_at = $3 WHERE id = $1 RETURNING `+termColumns,
		t.ID, t.AllowedDays, t.UpdatedAt)
	if err != nil {
		return term.Term{}, trapNoRowsErr(err, term.ErrNotFound, "updating allowed days")
	}
	return row.term(), nil
}

// DeleteTerm removes the progress recorded in the classroom during the term, then the term.
// Goals go with the term (ON DELETE CASCADE).
func (r termRepository) DeleteTerm(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !isUUID(id) {
		return term.ErrNotFound
	}
	exe := r.getExec(exec)
	_, err := exe.ExecContext(ctx, `
		DELETE FROM progress p
		USING term t, subject s
		WHERE t.id = $1 AND s.classroom_id = t.classroom_id AND p.subject_id = s.id
		  AND p.date BETWEEN t.start_date AND t.end_date`, id)
	if err != nil {
		return errors.Wrap(err, "deleting term progress")
	}
	if _, err = exe.ExecContext(ctx, `DELETE FROM term WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting term")
	}
	return nil
}
