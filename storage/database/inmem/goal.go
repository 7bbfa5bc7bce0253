package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/goal"
)

type goalRepository struct {
	db *DB
}

var _ goal.Repository = (*goalRepository)(nil) // interface compliance check

func NewGoalRepository(db *DB) *goalRepository {
	return &goalRepository{db: db}
}

func (repo *goalRepository) UpsertGoal(_ context.Context, g goal.Goal, exec ...core.DBExecutor) (goal.Goal, error) {
	err := repo.db.do(exec, func(t *tables) error {
		key := goalKey{g.TermID, g.WeekNumber}
		if old, ok := t.goals[key]; ok {
			old.Pages = g.Pages
			old.UpdatedAt = g.UpdatedAt
			g = old
		}
		t.goals[key] = g
		return nil
	})
	return g, err
}

func (repo *goalRepository) DeleteGoal(_ context.Context, termID string, week int, exec ...core.DBExecutor) error {
	return repo.db.do(exec, func(t *tables) error {
		delete(t.goals, goalKey{termID, week})
		return nil
	})
}

func (repo *goalRepository) GetGoal(_ context.Context, termID string, week int, exec ...core.DBExecutor) (g goal.Goal, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		var ok bool
		if g, ok = t.goals[goalKey{termID, week}]; !ok {
			return goal.ErrNotFound
		}
		return nil
	})
	return g, err
}

func (repo *goalRepository) QueryGoals(_ context.Context, termID string, exec ...core.DBExecutor) ([]goal.Goal, error) {
	goals := make([]goal.Goal, 0)
	err := repo.db.do(exec, func(t *tables) error {
		for _, g := range t.goals {
			if g.TermID == termID {
				goals = append(goals, g)
			}
		}
		return nil
	})
	sort.Slice(goals, func(i, j int) bool { return goals[i].WeekNumber < goals[j].WeekNumber })
	return goals, err
}
