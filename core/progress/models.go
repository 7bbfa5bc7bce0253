package progress

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
)

var ErrNotFound = errors.New("progress not found")

// Progress is one student's recorded page range for one subject on one day.
// There is at most one Progress per Key.
type Progress struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subject_id"`
	StudentID    string    `json:"student_id"`
	Date         core.Date `json:"date"`
	PageFrom     null.Int  `json:"page_from"`
	PageSet      null.Int  `json:"page_set"`
	PageDone     null.Int  `json:"page_done"`
	HomeworkDone bool      `json:"homework_done"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (p Progress) Key() Key {
	return Key{SubjectID: p.SubjectID, StudentID: p.StudentID, Date: p.Date}
}

// Homework is page_from - page_done, null unless both are set.
func (p Progress) Homework() null.Int {
	if !p.PageFrom.Valid || !p.PageDone.Valid {
		return null.Int{}
	}
	return null.IntFrom(p.PageFrom.Int - p.PageDone.Int)
}

func (p Progress) MarshalJSON() ([]byte, error) {
	type progress Progress
	return json.Marshal(struct {
		progress
		Homework null.Int `json:"homework"`
	}{progress(p), p.Homework()})
}

// Key identifies a Progress.
type Key struct {
	SubjectID string
	StudentID string
	Date      core.Date
}

type QueryFilter struct {
	SubjectID string
	StudentID string
	From      core.Date // inclusive; ignored if zero
	To        core.Date // inclusive; ignored if zero
}

type Repository interface {
	// GetOrCreateProgress returns the Progress of key, creating an empty one if missing.
	// Inside a transaction the row stays locked until the end of it.
	GetOrCreateProgress(ctx context.Context, key Key, exec ...core.DBExecutor) (Progress, error)
	// GetProgress returns the Progress by ID. Inside a transaction the row stays locked until the end of it.
	GetProgress(ctx context.Context, id string, exec ...core.DBExecutor) (Progress, error)
	UpdateProgress(ctx context.Context, p Progress, exec ...core.DBExecutor) (Progress, error)
	// QueryProgress returns the matching rows ordered by date, then subject.
	QueryProgress(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Progress, error)
	// SumPagesDone adds up page_done - page_from over the student's rows in [from, to] having page_done set,
	// counting only subjects of the classroom. The sum is null when there is no such row.
	SumPagesDone(ctx context.Context, classroomID, studentID string, from, to core.Date, exec ...core.DBExecutor) (null.Int, error)
}
