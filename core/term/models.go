package term

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/maendeleo/core"
)

var ErrNotFound = errors.New("term not found")

const overlapMsg = "term overlaps another term of this classroom"

// Term is a classroom's bounded enrollment period, with the days of the week on which progress is recorded.
type Term struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	Start       core.Date `json:"start"`
	End         core.Date `json:"end"`
	AllowedDays Weekdays  `json:"allowed_days"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Contains reports whether start <= d <= end.
func (t Term) Contains(d core.Date) bool {
	return d.Between(t.Start, t.End)
}

// IsDateAllowed reports whether progress can be recorded on d.
func (t Term) IsDateAllowed(d core.Date) bool {
	return t.Contains(d) && t.AllowedDays.Has(d.Weekday())
}

// Overlaps reports whether [start, end] intersects the term (bounds included).
func (t Term) Overlaps(start, end core.Date) bool {
	return !t.Start.After(end) && !start.After(t.End)
}

// NumberOfWeeks returns how many weeks are charted for the term.
// A term spanning d > 0 days has 1 + d/7 + 1 weeks; a single-day term has none.
func (t Term) NumberOfWeeks() int {
	daysDiff := t.Start.DaysUntil(t.End)
	if daysDiff > 0 {
		return 1 + daysDiff/7 + 1
	}
	return 0
}

// WeekDates returns the first and last day of the 1-based week.
// The end is not clipped to the term's end. ok is false when week is out of range.
func (t Term) WeekDates(week int) (start, end core.Date, ok bool) {
	if week < 1 || week > t.NumberOfWeeks() {
		return core.Date{}, core.Date{}, false
	}
	start = t.Start.AddDays((week - 1) * 7)
	return start, start.AddDays(6), true
}

// Week describes the bounds of one week of a term.
type Week struct {
	Number int       `json:"week"`
	Start  core.Date `json:"start"`
	End    core.Date `json:"end"`
}

func (t Term) Weeks() []Week {
	n := t.NumberOfWeeks()
	weeks := make([]Week, 0, n)
	for i := 1; i <= n; i++ {
		start, end, _ := t.WeekDates(i)
		weeks = append(weeks, Week{Number: i, Start: start, End: end})
	}
	return weeks
}

// NewTerm contains information needed to create a new Term.
type NewTerm struct {
	ClassroomID string
	Start       core.Date
	End         core.Date
	AllowedDays Weekdays
}

func (nt NewTerm) Validate() error {
	var flds []core.FieldError
	if core.CleanString(nt.ClassroomID) == "" {
		flds = append(flds, core.FieldError{Field: "classroom_id", Error: "this field is required"})
	}
	if nt.Start.IsZero() {
		flds = append(flds, core.FieldError{Field: "start", Error: "this field is required"})
	}
	if nt.End.IsZero() {
		flds = append(flds, core.FieldError{Field: "end", Error: "this field is required"})
	}
	if len(flds) == 0 {
		return validateRange(nt.Start, nt.End)
	}
	return core.NewValidationError(nil, flds...)
}

func validateRange(start, end core.Date) error {
	if start.After(end) {
		return core.NewFieldError("end", "end must not be before start")
	}
	return nil
}

// Changes are the fields of a Term to update. Nil fields are left as they are.
type Changes struct {
	Start       *core.Date
	End         *core.Date
	AllowedDays *Weekdays
}

func (c Changes) reschedules() bool {
	return c.Start != nil || c.End != nil
}

type QueryFilter struct {
	ClassroomID string
	// Date keeps only the terms containing it.
	Date core.Date
	// ExcludeID drops a term from the results.
	ExcludeID string
}

type Repository interface {
	// LockClassroom serializes term writes of a classroom until the end of the transaction.
	LockClassroom(ctx context.Context, classroomID string, exec ...core.DBExecutor) error
	// HasOverlap reports whether a term of the classroom, other than excludeID, intersects [start, end].
	HasOverlap(ctx context.Context, classroomID string, start, end core.Date, excludeID string, exec ...core.DBExecutor) (bool, error)
	CreateTerm(ctx context.Context, t Term, exec ...core.DBExecutor) (Term, error)
	// GetTerm returns the Term by ID. Inside a transaction the row stays locked until the end of it.
	GetTerm(ctx context.Context, id string, exec ...core.DBExecutor) (Term, error)
	// QueryTerms returns the matching terms ordered by start date.
	QueryTerms(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Term, error)
	UpdateTerm(ctx context.Context, t Term, exec ...core.DBExecutor) (Term, error)
	// UpdateAllowedDays only writes the allowed days (and update time) of the term.
	UpdateAllowedDays(ctx context.Context, t Term, exec ...core.DBExecutor) (Term, error)
	// DeleteTerm removes the term along with its goals and the progress recorded during it.
	DeleteTerm(ctx context.Context, id string, exec ...core.DBExecutor) error
}
