package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/goal"
)

type goalRepository struct {
	repo
}

var _ goal.Repository = (*goalRepository)(nil) // interface compliance check

func NewGoalRepository(db *sqlx.DB) *goalRepository {
	return &goalRepository{repo{db: db}}
}

const goalColumns = "id, term_id, week_number, pages, created_at, updated_at"

type goalRow struct {
	ID         string    `db:"id"`
	TermID     string    `db:"term_id"`
	WeekNumber int       `db:"week_number"`
	Pages      int       `db:"pages"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row goalRow) goal() goal.Goal {
	return goal.Goal(row)
}

func (r goalRepository) UpsertGoal(ctx context.Context, g goal.Goal, exec ...core.DBExecutor) (goal.Goal, error) {
	var row goalRow
	err := sqlx.GetContext(ctx, r.getExec(exec), &row, `
		INSERT INTO goal (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (term_id, week_number) DO UPDATE SET pages = EXCLUDED.pages, updated_at = EXCLUDED.updated_at
		RETURNING `+goalColumns,
		g.ID, g.TermID, g.WeekNumber, g.Pages, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return goal.Goal{}, errors.Wrap(err, "upserting goal")
	}
	return row.goal(), nil
}

func (r goalRepository) DeleteGoal(ctx context.Context, termID string, week int, exec ...core.DBExecutor) error {
	if !isUUID(termID) {
		return nil
	}
	_, err := r.getExec(exec).ExecContext(ctx, `DELETE FROM goal WHERE term_id = $1 AND week_number = $2`, termID, week)
	return errors.Wrap(err, "deleting goal")
}

func (r goalRepository) GetGoal(ctx context.Context, termID string, week int, exec ...core.DBExecutor) (goal.Goal, error) {
	if !isUUID(termID) {
		return goal.Goal{}, goal.ErrNotFound
	}
	var row goalRow
	err := sqlx.GetContext(ctx, r.getExec(exec), &row,
		`SELECT `+goalColumns+` FROM goal WHERE term_id = $1 AND week_number = $2`, termID, week)
	if err != nil {
		return goal.Goal{}, trapNoRowsErr(err, goal.ErrNotFound, "getting goal")
	}
	return row.goal(), nil
}

func (r goalRepository) QueryGoals(ctx context.Context, termID string, exec ...core.DBExecutor) ([]goal.Goal, error) {
	if !isUUID(termID) {
		return []goal.Goal{}, nil
	}
	var rows []goalRow
	err := sqlx.SelectContext(ctx, r.getExec(exec), &rows,
		`SELECT `+goalColumns+` FROM goal WHERE term_id = $1 ORDER BY week_number ASC`, termID)
	if err != nil {
		return nil, errors.Wrap(err, "querying goals")
	}
	goals := make([]goal.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.goal())
	}
	return goals, nil
}
