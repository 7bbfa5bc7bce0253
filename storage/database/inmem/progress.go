package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progress"
)

type progressRepository struct {
	db *DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) GetOrCreateProgress(_ context.Context, key progress.Key, exec ...core.DBExecutor) (prog progress.Progress, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		for _, p := range t.progress {
			if p.SubjectID == key.SubjectID && p.StudentID == key.StudentID && p.Date.Equal(key.Date) {
				prog = p
				return nil
			}
		}
		now := time.Now().UTC()
		prog = progress.Progress{
			ID:        uuid.New().String(),
			SubjectID: key.SubjectID,
			StudentID: key.StudentID,
			Date:      key.Date,
			CreatedAt: now,
			UpdatedAt: now,
		}
		t.progress[prog.ID] = prog
		return nil
	})
	return prog, err
}

func (repo *progressRepository) GetProgress(_ context.Context, id string, exec ...core.DBExecutor) (prog progress.Progress, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		var ok bool
		if prog, ok = t.progress[id]; !ok {
			return progress.ErrNotFound
		}
		return nil
	})
	return prog, err
}

func (repo *progressRepository) UpdateProgress(_ context.Context, prog progress.Progress, exec ...core.DBExecutor) (progress.Progress, error) {
	err := repo.db.do(exec, func(t *tables) error {
		if _, ok := t.progress[prog.ID]; !ok {
			return progress.ErrNotFound
		}
		t.progress[prog.ID] = prog
		return nil
	})
	return prog, err
}

func matchProgress(p progress.Progress, filter progress.QueryFilter) bool {
	if filter.SubjectID != "" && p.SubjectID != filter.SubjectID {
		return false
	}
	if filter.StudentID != "" && p.StudentID != filter.StudentID {
		return false
	}
	if !filter.From.IsZero() && p.Date.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && p.Date.After(filter.To) {
		return false
	}
	return true
}

// progressLess compares on the given orderings, then on date and subject.
func progressLess(a, b progress.Progress, ordering []core.DBOrdering) bool {
	cmp := func(field string) int {
		switch field {
		case "date":
			if a.Date.Before(b.Date) {
				return -1
			} else if a.Date.After(b.Date) {
				return 1
			}
		case "subject_id":
			return compareStrings(a.SubjectID, b.SubjectID)
		case "student_id":
			return compareStrings(a.StudentID, b.StudentID)
		case "created_at":
			if a.CreatedAt.Before(b.CreatedAt) {
				return -1
			} else if a.CreatedAt.After(b.CreatedAt) {
				return 1
			}
		}
		return 0
	}
	ordering = append(ordering, core.DBOrdering{Field: "date", Ascending: true}, core.DBOrdering{Field: "subject_id", Ascending: true})
	for _, ord := range ordering {
		c := cmp(ord.Field)
		if !ord.Ascending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return false
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *progressRepository) QueryProgress(_ context.Context, filter progress.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]progress.Progress, error) {
	res := make([]progress.Progress, 0)
	err := repo.db.do(exec, func(t *tables) error {
		for _, p := range t.progress {
			if matchProgress(p, filter) {
				res = append(res, p)
			}
		}
		return nil
	})
	ordering = append([]core.DBOrdering{}, ordering...)
	sort.Slice(res, func(i, j int) bool { return progressLess(res[i], res[j], ordering) })
	return res, err
}

func (repo *progressRepository) SumPagesDone(_ context.Context, classroomID, studentID string, from, to core.Date, exec ...core.DBExecutor) (sum null.Int, err error) {
	err = repo.db.do(exec, func(t *tables) error {
		for _, p := range t.progress {
			if p.StudentID != studentID || !p.Date.Between(from, to) || !p.PageDone.Valid {
				continue
			}
			if subj, ok := t.subjects[p.SubjectID]; !ok || subj.ClassroomID != classroomID {
				continue
			}
			sum = null.IntFrom(sum.Int + p.PageDone.Int - p.PageFrom.Int)
		}
		return nil
	})
	return sum, err
}
