package goal

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/maendeleo/core"
)

var ErrNotFound = errors.New("goal not found")

// Goal is the number of pages to reach by the end of one week of a term.
type Goal struct {
	ID         string    `json:"id"`
	TermID     string    `json:"term_id"`
	WeekNumber int       `json:"week"`
	Pages      int       `json:"pages"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type Repository interface {
	// UpsertGoal creates the goal of (TermID, WeekNumber) or overwrites its pages.
	UpsertGoal(ctx context.Context, g Goal, exec ...core.DBExecutor) (Goal, error)
	// DeleteGoal is a no-op when the goal does not exist.
	DeleteGoal(ctx context.Context, termID string, week int, exec ...core.DBExecutor) error
	GetGoal(ctx context.Context, termID string, week int, exec ...core.DBExecutor) (Goal, error)
	// QueryGoals returns the goals of a term ordered by week number.
	QueryGoals(ctx context.Context, termID string, exec ...core.DBExecutor) ([]Goal, error)
}
