package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/term"
)

type termRepository struct {
	db *DB
}

var _ term.Repository = (*termRepository)(nil) // interface compliance check

func NewTermRepository(db *DB) *termRepository {
	return &termRepository{db: db}
}

// LockClassroom is a no-op: transactions already run one at a time.
func (repo *termRepository) LockClassroom(context.Context, string, ...core.DBExecutor) error {
	return nil
}

func (repo *termRepository) HasOverlap(_ context.Context, classroomID string, start, end core.Date, excludeID string, exec ...core.DBExecutor) (overlaps bool, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		for _, trm := range t.terms {
			if trm.ClassroomID == classroomID && trm.ID != excludeID && trm.Overlaps(start, end) {
				overlaps = true
				break
			}
		}
		return nil
	})
	return overlaps, err
}

func (repo *termRepository) CreateTerm(_ context.Context, trm term.Term, exec ...core.DBExecutor) (term.Term, error) {
	err := repo.db.do(exec, func(t *tables) error {
		t.terms[trm.ID] = trm
		return nil
	})
	return trm, err
}

func (repo *termRepository) GetTerm(_ context.Context, id string, exec ...core.DBExecutor) (trm term.Term, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		var ok bool
		if trm, ok = t.terms[id]; !ok {
			return term.ErrNotFound
		}
		return nil
	})
	return trm, err
}

func (repo *termRepository) QueryTerms(_ context.Context, filter term.QueryFilter, exec ...core.DBExecutor) ([]term.Term, error) {
	terms := make([]term.Term, 0)
	err := repo.db.do(exec, func(t *tables) error {
		for _, trm := range t.terms {
			if filter.ClassroomID != "" && trm.ClassroomID != filter.ClassroomID {
				continue
			}
			if !filter.Date.IsZero() && !trm.Contains(filter.Date) {
				continue
			}
			if filter.ExcludeID != "" && trm.ID == filter.ExcludeID {
				continue
			}
			terms = append(terms, trm)
		}
		return nil
	})
	sort.Slice(terms, func(i, j int) bool { return terms[i].Start.Before(terms[j].Start) })
	return terms, err
}

func (repo *termRepository) UpdateTerm(_ context.Context, trm term.Term, exec ...core.DBExecutor) (term.Term, error) {
	err := repo.db.do(exec, func(t *tables) error {
		if _, ok := t.terms[trm.ID]; !ok {
			return term.ErrNotFound
		}
		t.terms[trm.ID] = trm
		return nil
	})
	return trm, err
}

func (repo *termRepository) UpdateAllowedDays(_ context.Context, trm term.Term, exec ...core.DBExecutor) (res term.Term, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		var ok bool
		if res, ok = t.terms[trm.ID]; !ok {
			return term.ErrNotFound
		}
		res.AllowedDays = trm.AllowedDays
		res.UpdatedAt = trm.UpdatedAt
		t.terms[trm.ID] = res
		return nil
	})
	return res, err
}

func (repo *termRepository) DeleteTerm(_ context.Context, id string, exec ...core.DBExecutor) error {
	return repo.db.do(exec, func(t *tables) error {
		trm, ok := t.terms[id]
		if !ok {
			return term.ErrNotFound
		}
		for k, g := range t.goals {
			if g.TermID == id {
				delete(t.goals, k)
			}
		}
		for k, p := range t.progress {
			subj, ok := t.subjects[p.SubjectID]
			if ok && subj.ClassroomID == trm.ClassroomID && trm.Contains(p.Date) {
				delete(t.progress, k)
			}
		}
		delete(t.terms, id)
		return nil
	})
}
