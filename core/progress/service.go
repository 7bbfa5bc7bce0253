package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

// TermFinder resolves the term of a classroom covering a date.
type TermFinder interface {
	FindTermAtDate(ctx context.Context, classroomID string, date core.Date, exec ...core.DBExecutor) (term.Term, error)
}

// Service is the progress ledger.
type Service struct {
	tx     core.Transactor
	repo   Repository
	roster roster.Repository
	terms  TermFinder
	inval  core.Invalidator
	logger core.Logger
}

func NewService(
	tx core.Transactor,
	repo Repository,
	rosterRepo roster.Repository,
	terms TermFinder,
	inval core.Invalidator,
	logger core.Logger,
) *Service {
	return &Service{tx: tx, repo: repo, roster: rosterRepo, terms: terms, inval: inval, logger: logger}
}

func (svc *Service) invalidate(ctx context.Context, termID string) {
	if svc.inval == nil || termID == "" {
		return
	}
	if err := svc.inval.InvalidateTerm(ctx, termID); err != nil && svc.logger != nil {
		svc.logger.Error("invalidating term charts", errors.Wrap(err, termID))
	}
}

// checkKey validates the key of a Progress and returns the term covering its date.
func (svc *Service) checkKey(ctx context.Context, key Key, exec core.DBExecutor) (term.Term, error) {
	var errs fieldErrors

	if core.CleanString(key.StudentID) == "" {
		errs.add("student_id", "this field is required")
	} else if usr, err := svc.roster.GetUser(ctx, key.StudentID, exec); err != nil {
		if errors.Cause(err) != roster.ErrUserNotFound {
			return term.Term{}, errors.Wrap(err, "getting student")
		}
		errs.add("student_id", "student not found")
	} else if !usr.IsStudent() {
		errs.add("student_id", "user is not a student")
	}

	var subj roster.Subject
	if core.CleanString(key.SubjectID) == "" {
		errs.add("subject_id", "this field is required")
	} else {
		var err error
		if subj, err = svc.roster.GetSubject(ctx, key.SubjectID, exec); err != nil {
			if errors.Cause(err) != roster.ErrSubjectNotFound {
				return term.Term{}, errors.Wrap(err, "getting subject")
			}
			errs.add("subject_id", "subject not found")
		}
	}

	if key.Date.IsZero() {
		errs.add("date", "this field is required")
	}
	if len(errs) > 0 {
		return term.Term{}, core.NewValidationError(nil, errs...)
	}

	enrolled, err := svc.roster.IsInClassroom(ctx, subj.ClassroomID, key.StudentID, exec)
	if err != nil {
		return term.Term{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return term.Term{}, core.NewFieldError("student_id", "student is not enrolled in the subject's classroom")
	}

	return svc.checkDate(ctx, subj.ClassroomID, key.Date, exec)
}

// checkDate returns the classroom's term allowing progress on date.
func (svc *Service) checkDate(ctx context.Context, classroomID string, date core.Date, exec core.DBExecutor) (term.Term, error) {
	t, err := svc.terms.FindTermAtDate(ctx, classroomID, date, exec)
	if err != nil {
		if errors.Cause(err) == term.ErrNotFound {
			return term.Term{}, core.NewFieldError("date", "no term covers this date")
		}
		return term.Term{}, errors.Wrap(err, "finding term at date")
	}
	if !t.IsDateAllowed(date) {
		return term.Term{}, core.NewFieldError("date", "progress cannot be recorded on this day")
	}
	return t, nil
}

// FindOrCreateByKey returns the Progress of key, creating an empty one if needed.
// The student must be enrolled in the subject's classroom and a term of that classroom must allow
// progress on the date; otherwise a *core.ValidationError is returned and nothing is created.
func (svc *Service) FindOrCreateByKey(ctx context.Context, key Key) (Progress, error) {
	var prog Progress
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		if _, err := svc.checkKey(ctx, key, exec); err != nil {
			return err
		}
		var err error
		prog, err = svc.repo.GetOrCreateProgress(ctx, key, exec)
		return errors.Wrap(err, "getting or creating progress")
	})
	if err != nil {
		return Progress{}, err
	}
	return prog, nil
}

// SetFields applies patch to the Progress. All fields are written or none is.
func (svc *Service) SetFields(ctx context.Context, id string, patch Patch) (Progress, error) {
	var (
		prog Progress
		t    term.Term
	)
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if prog, err = svc.repo.GetProgress(ctx, id, exec); err != nil {
			return err
		}
		subj, err := svc.roster.GetSubject(ctx, prog.SubjectID, exec)
		if err != nil {
			return errors.Wrap(err, "getting subject")
		}
		// the term may have been rescheduled since the row was created
		if t, err = svc.checkDate(ctx, subj.ClassroomID, prog.Date, exec); err != nil {
			return err
		}
		prog, err = svc.write(ctx, prog, patch, exec)
		return err
	})
	if err != nil {
		return Progress{}, err
	}
	if !patch.IsEmpty() {
		svc.invalidate(ctx, t.ID)
	}
	return prog, nil
}

// Record finds or creates the Progress of key and applies patch to it, atomically.
func (svc *Service) Record(ctx context.Context, key Key, patch Patch) (Progress, error) {
	var (
		prog Progress
		t    term.Term
	)
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if t, err = svc.checkKey(ctx, key, exec); err != nil {
			return err
		}
		if prog, err = svc.repo.GetOrCreateProgress(ctx, key, exec); err != nil {
			return errors.Wrap(err, "getting or creating progress")
		}
		prog, err = svc.write(ctx, prog, patch, exec)
		return err
	})
	if err != nil {
		return Progress{}, err
	}
	if !patch.IsEmpty() {
		svc.invalidate(ctx, t.ID)
	}
	return prog, nil
}

func (svc *Service) write(ctx context.Context, prog Progress, patch Patch, exec core.DBExecutor) (Progress, error) {
	if patch.IsEmpty() {
		return prog, nil
	}
	prog, err := patch.Apply(prog)
	if err != nil {
		return Progress{}, err
	}
	prog.UpdatedAt = time.Now().UTC()
	prog, err = svc.repo.UpdateProgress(ctx, prog, exec)
	return prog, errors.Wrap(err, "updating progress")
}

func (svc *Service) Get(ctx context.Context, id string) (Progress, error) {
	return svc.repo.GetProgress(ctx, id)
}

// Query returns the matching Progress, ordered by date unless ordering is given.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Progress, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: true}}
	}
	return svc.repo.QueryProgress(ctx, filter, ordering)
}

// GetNumberPagesDone returns the number of pages the student completed in [from, to]
// in the subjects of the classroom. It is null when nothing was completed in that range.
func (svc *Service) GetNumberPagesDone(ctx context.Context, classroomID, studentID string, from, to core.Date) (null.Int, error) {
	pages, err := svc.repo.SumPagesDone(ctx, classroomID, studentID, from, to)
	return pages, errors.Wrap(err, "summing pages done")
}

// IsUserAuthorized reports whether usr may access the student's progress in the subject:
// usr must belong to the subject's classroom and, if a student, be that student.
func (svc *Service) IsUserAuthorized(ctx context.Context, usr roster.User, subjectID, studentID string) (bool, error) {
	subj, err := svc.roster.GetSubject(ctx, subjectID)
	if err != nil {
		if errors.Cause(err) == roster.ErrSubjectNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "getting subject")
	}
	member, err := svc.roster.IsInClassroom(ctx, subj.ClassroomID, usr.ID)
	if err != nil {
		return false, errors.Wrap(err, "checking membership")
	}
	if !member {
		return false, nil
	}
	if usr.IsStudent() && usr.ID != studentID {
		return false, nil
	}
	return true, nil
}
