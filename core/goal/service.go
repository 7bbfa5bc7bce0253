package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/term"
)

type TermGetter interface {
	Get(ctx context.Context, id string) (term.Term, error)
}

// Service is the goal registry.
type Service struct {
	repo   Repository
	terms  TermGetter
	inval  core.Invalidator
	logger core.Logger
}

func NewService(repo Repository, terms TermGetter, inval core.Invalidator, logger core.Logger) *Service {
	return &Service{repo: repo, terms: terms, inval: inval, logger: logger}
}

func (svc *Service) invalidate(ctx context.Context, termID string) {
	if svc.inval == nil {
		return
	}
	if err := svc.inval.InvalidateTerm(ctx, termID); err != nil && svc.logger != nil {
		svc.logger.Error("invalidating term charts", errors.Wrap(err, termID))
	}
}

// getTerm returns the term if it belongs to the classroom, term.ErrNotFound otherwise.
func (svc *Service) getTerm(ctx context.Context, classroomID, termID string) (term.Term, error) {
	t, err := svc.terms.Get(ctx, termID)
	if err != nil {
		return term.Term{}, err
	}
	if t.ClassroomID != classroomID {
		return term.Term{}, term.ErrNotFound
	}
	return t, nil
}

func checkWeek(t term.Term, week int) error {
	if n := t.NumberOfWeeks(); week < 1 || week > n {
		return core.NewFieldError("week", fmt.Sprintf("week must be between 1 and %d", n))
	}
	return nil
}

// Set sets the pages goal of a week, overwriting the previous one.
func (svc *Service) Set(ctx context.Context, classroomID, termID string, week, pages int) (Goal, error) {
	t, err := svc.getTerm(ctx, classroomID, termID)
	if err != nil {
		return Goal{}, err
	}
	if err = checkWeek(t, week); err != nil {
		return Goal{}, err
	}
	if pages < 0 {
		return Goal{}, core.NewFieldError("pages", "must not be negative")
	}

	now := time.Now().UTC()
	g, err := svc.repo.UpsertGoal(ctx, Goal{
		ID:         uuid.New().String(),
		TermID:     t.ID,
		WeekNumber: week,
		Pages:      pages,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Goal{}, errors.Wrap(err, "upserting goal")
	}
	svc.invalidate(ctx, t.ID)
	return g, nil
}

// Unset removes the goal of a week, if any.
func (svc *Service) Unset(ctx context.Context, classroomID, termID string, week int) error {
	t, err := svc.getTerm(ctx, classroomID, termID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteGoal(ctx, t.ID, week); err != nil {
		return errors.Wrap(err, "deleting goal")
	}
	svc.invalidate(ctx, t.ID)
	return nil
}

// Get returns the goals of a term ordered by week number.
func (svc *Service) Get(ctx context.Context, classroomID, termID string) ([]Goal, error) {
	t, err := svc.getTerm(ctx, classroomID, termID)
	if err != nil {
		return nil, err
	}
	goals, err := svc.repo.QueryGoals(ctx, t.ID)
	return goals, errors.Wrap(err, "querying goals")
}

// GetTermPageGoal returns the pages goal of a week of t, null if unset.
func (svc *Service) GetTermPageGoal(ctx context.Context, t term.Term, week int) (null.Int, error) {
	g, err := svc.repo.GetGoal(ctx, t.ID, week)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return null.Int{}, nil
		}
		return null.Int{}, errors.Wrap(err, "getting goal")
	}
	return null.IntFrom(g.Pages), nil
}
