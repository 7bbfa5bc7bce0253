package term

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
)

// Service is the term calendar: it owns the terms of every classroom
// and guarantees that no two terms of a classroom overlap.
type Service struct {
	tx     core.Transactor
	repo   Repository
	inval  core.Invalidator
	logger core.Logger
}

func NewService(tx core.Transactor, repo Repository, inval core.Invalidator, logger core.Logger) *Service {
	return &Service{tx: tx, repo: repo, inval: inval, logger: logger}
}

// invalidate drops the cached charts of a term. Failures are only logged: the write is already committed.
func (svc *Service) invalidate(ctx context.Context, termID string) {
	if svc.inval == nil {
		return
	}
	if err := svc.inval.InvalidateTerm(ctx, termID); err != nil && svc.logger != nil {
		svc.logger.Error("invalidating term charts", errors.Wrap(err, termID))
	}
}

// checkOverlap must run inside a transaction holding the classroom lock.
func (svc *Service) checkOverlap(ctx context.Context, classroomID string, start, end core.Date, excludeID string, exec core.DBExecutor) error {
	overlaps, err := svc.repo.HasOverlap(ctx, classroomID, start, end, excludeID, exec)
	if err != nil {
		return errors.Wrap(err, "checking term overlap")
	}
	if overlaps {
		return core.NewConflictError(overlapMsg)
	}
	return nil
}

// Create adds a term to a classroom.
// It fails with a *core.ConflictError if another term of the classroom overlaps [start, end].
func (svc *Service) Create(ctx context.Context, nt NewTerm) (Term, error) {
	if err := nt.Validate(); err != nil {
		return Term{}, err
	}

	now := time.Now().UTC()
	t := Term{
		ID:          uuid.New().String(),
		ClassroomID: nt.ClassroomID,
		Start:       nt.Start,
		End:         nt.End,
		AllowedDays: nt.AllowedDays,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.repo.LockClassroom(ctx, t.ClassroomID, exec); err != nil {
			return errors.Wrap(err, "locking classroom")
		}
		if err := svc.checkOverlap(ctx, t.ClassroomID, t.Start, t.End, "", exec); err != nil {
			return err
		}
		var err error
		t, err = svc.repo.CreateTerm(ctx, t, exec)
		return errors.Wrap(err, "creating term")
	})
	if err != nil {
		return Term{}, err
	}
	return t, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Term, error) {
	return svc.repo.GetTerm(ctx, id)
}

// QueryByClassroom returns the terms of a classroom ordered by start date.
func (svc *Service) QueryByClassroom(ctx context.Context, classroomID string) ([]Term, error) {
	return svc.repo.QueryTerms(ctx, QueryFilter{ClassroomID: classroomID})
}

// FindTermAtDate returns the classroom's term containing date, or ErrNotFound.
// Terms of a classroom never overlap so there is at most one.
func (svc *Service) FindTermAtDate(ctx context.Context, classroomID string, date core.Date, exec ...core.DBExecutor) (Term, error) {
	terms, err := svc.repo.QueryTerms(ctx, QueryFilter{ClassroomID: classroomID, Date: date}, exec...)
	if err != nil {
		return Term{}, errors.Wrap(err, "querying terms at date")
	}
	if len(terms) == 0 {
		return Term{}, ErrNotFound
	}
	return terms[0], nil
}

// SetStart moves the start of a term. See Update.
func (svc *Service) SetStart(ctx context.Context, id string, start core.Date) (Term, error) {
	return svc.Update(ctx, id, Changes{Start: &start})
}

// SetEnd moves the end of a term. See Update.
func (svc *Service) SetEnd(ctx context.Context, id string, end core.Date) (Term, error) {
	return svc.Update(ctx, id, Changes{End: &end})
}

// SetDates moves both bounds of a term at once. See Update.
func (svc *Service) SetDates(ctx context.Context, id string, start, end core.Date) (Term, error) {
	return svc.Update(ctx, id, Changes{Start: &start, End: &end})
}

// SetAllowedDays replaces the days of the week on which progress may be recorded.
func (svc *Service) SetAllowedDays(ctx context.Context, id string, days Weekdays) (Term, error) {
	return svc.Update(ctx, id, Changes{AllowedDays: &days})
}

// Update applies all the changes to a term in one transaction, or none of them.
// A new range is checked against every other term of the classroom; on conflict a *core.ConflictError
// is returned and the term is left unchanged.
func (svc *Service) Update(ctx context.Context, id string, ch Changes) (Term, error) {
	if ch.AllowedDays == nil && !ch.reschedules() {
		return svc.repo.GetTerm(ctx, id)
	}

	var t Term
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		// locks the row: concurrent updates of the term wait for this one
		if t, err = svc.repo.GetTerm(ctx, id, exec); err != nil {
			return err
		}
		if ch.AllowedDays != nil {
			t.AllowedDays = *ch.AllowedDays
		}
		t.UpdatedAt = time.Now().UTC()

		if !ch.reschedules() {
			t, err = svc.repo.UpdateAllowedDays(ctx, t, exec)
			return errors.Wrap(err, "updating allowed days")
		}

		if ch.Start != nil {
			t.Start = *ch.Start
		}
		if ch.End != nil {
			t.End = *ch.End
		}
		if err = validateRange(t.Start, t.End); err != nil {
			return err
		}
		if err = svc.repo.LockClassroom(ctx, t.ClassroomID, exec); err != nil {
			return errors.Wrap(err, "locking classroom")
		}
		if err = svc.checkOverlap(ctx, t.ClassroomID, t.Start, t.End, t.ID, exec); err != nil {
			return err
		}
		t, err = svc.repo.UpdateTerm(ctx, t, exec)
		return errors.Wrap(err, "updating term")
	})
	if err != nil {
		return Term{}, err
	}
	svc.invalidate(ctx, t.ID)
	return t, nil
}

// Delete removes a term, its goals and the progress recorded during it.
func (svc *Service) Delete(ctx context.Context, id string) error {
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		if _, err := svc.repo.GetTerm(ctx, id, exec); err != nil {
			return err
		}
		return errors.Wrap(svc.repo.DeleteTerm(ctx, id, exec), "deleting term")
	})
	if err != nil {
		return err
	}
	svc.invalidate(ctx, id)
	return nil
}
