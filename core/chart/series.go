package chart

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

const goalsLabel = "Goals"

type GoalGetter interface {
	GetTermPageGoal(ctx context.Context, t term.Term, week int) (null.Int, error)
}

type PagesCounter interface {
	GetNumberPagesDone(ctx context.Context, classroomID, studentID string, from, to core.Date) (null.Int, error)
}

func toFloat(n null.Int) null.Float64 {
	if !n.Valid {
		return null.Float64{}
	}
	return null.Float64From(float64(n.Int))
}

// GoalSeries charts the pages goal of every week of a term.
type GoalSeries struct {
	*Builder
	term term.Term
}

func NewGoalSeries(t term.Term, goals GoalGetter, settings Settings) *GoalSeries {
	s := &GoalSeries{Builder: NewBuilder(settings), term: t}
	s.SetLabels(WeekLabels(t.NumberOfWeeks()))
	s.AddDataset(goalsLabel, func(ctx context.Context, label string) (null.Float64, error) {
		week, ok := ParseWeekLabel(label)
		if !ok {
			return null.Float64{}, nil
		}
		pages, err := goals.GetTermPageGoal(ctx, t, week)
		return toFloat(pages), err
	}, Style{})
	return s
}

// ProgressSeries charts the goals of a term along with the pages done by students,
// cumulated from the start of the term to the end of each week.
type ProgressSeries struct {
	*GoalSeries
	pages PagesCounter
}

func NewProgressSeries(t term.Term, goals GoalGetter, pages PagesCounter, settings Settings) *ProgressSeries {
	return &ProgressSeries{GoalSeries: NewGoalSeries(t, goals, settings), pages: pages}
}

// AddStudent adds the dataset of a student, named after them.
func (s *ProgressSeries) AddStudent(student roster.User, style ...Style) {
	var st Style
	if len(style) > 0 {
		st = style[0]
	}
	name := student.Name
	if name == "" {
		name = student.ID
	}
	t := s.term
	s.AddDataset(name, func(ctx context.Context, label string) (null.Float64, error) {
		week, ok := ParseWeekLabel(label)
		if !ok {
			return null.Float64{}, nil
		}
		_, end, ok := t.WeekDates(week)
		if !ok {
			return null.Float64{}, nil
		}
		if end.After(t.End) {
			end = t.End
		}
		pages, err := s.pages.GetNumberPagesDone(ctx, t.ClassroomID, student.ID, t.Start, end)
		return toFloat(pages), err
	}, st)
}
