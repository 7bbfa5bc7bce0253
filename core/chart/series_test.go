package chart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

type goalsStub map[int]int

func (s goalsStub) GetTermPageGoal(_ context.Context, _ term.Term, week int) (null.Int, error) {
	if pages, ok := s[week]; ok {
		return null.IntFrom(pages), nil
	}
	return null.Int{}, nil
}

type pagesCall struct {
	studentID string
	from, to  string
}

// pagesStub serves sums by (student, to) and records the calls.
type pagesStub struct {
	mu    sync.Mutex
	sums  map[string]map[string]int
	calls []pagesCall
}

func (s *pagesStub) GetNumberPagesDone(_ context.Context, _, studentID string, from, to core.Date) (null.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, pagesCall{studentID, from.String(), to.String()})
	if sum, ok := s.sums[studentID][to.String()]; ok {
		return null.IntFrom(sum), nil
	}
	return null.Int{}, nil
}

func testTerm(t *testing.T, start, end string) term.Term {
	s, err := core.ParseDate(start)
	require.NoError(t, err)
	e, err := core.ParseDate(end)
	require.NoError(t, err)
	return term.Term{ID: "t1", Start: s, End: e, AllowedDays: term.SchoolDays}
}

func TestGoalSeries(t *testing.T) {
	trm := testTerm(t, "2021-01-04", "2021-01-29") // 5 weeks

	cfg, err := NewGoalSeries(trm, goalsStub{1: 10, 4: 40}, Settings{}).Config(context.Background())
	require.NoError(t, err)

	assert.Equal(t, WeekLabels(5), cfg.Labels)
	require.Len(t, cfg.Datasets, 1)
	assert.Equal(t, "Goals", cfg.Datasets[0].Label)
	assert.Equal(t, floats(10, 20, 30, 40, nil), cfg.Datasets[0].Data)
	assert.Equal(t, 40.0, cfg.Options.Scales.YAxes[0].Ticks.Max)
}

func TestProgressSeries(t *testing.T) {
	trm := testTerm(t, "2021-01-04", "2021-01-20") // 4 weeks, the third one cut short

	pages := &pagesStub{sums: map[string]map[string]int{
		"s1": {"2021-01-10": 8, "2021-01-20": 30},
		"s2": {"2021-01-17": 5},
	}}
	series := NewProgressSeries(trm, goalsStub{1: 10, 2: 20, 3: 30, 4: 40}, pages, Settings{StepSize: 25})
	series.AddStudent(roster.User{ID: "s1", Name: "Awe"})
	series.AddStudent(roster.User{ID: "s2"}, Style{Color: "#123456"})

	cfg, err := series.Config(context.Background())
	require.NoError(t, err)

	require.Len(t, cfg.Datasets, 3)
	assert.Equal(t, "Goals", cfg.Datasets[0].Label)
	assert.Equal(t, "Awe", cfg.Datasets[1].Label)
	assert.Equal(t, "s2", cfg.Datasets[2].Label, "unnamed students are labelled by ID")
	assert.Equal(t, "#123456", cfg.Datasets[2].BorderColor)

	// week ends are clipped to the term's end
	assert.Equal(t, floats(8, 19, 30, 30), cfg.Datasets[1].Data)
	assert.Equal(t, floats(nil, 5, nil, nil), cfg.Datasets[2].Data)
	assert.Equal(t, Ticks{Min: 0, Max: 50, StepSize: 25}, cfg.Options.Scales.YAxes[0].Ticks)

	for _, c := range pages.calls {
		assert.Equal(t, "2021-01-04", c.from, "sums start at the term's start")
		assert.False(t, c.to > "2021-01-20", "sum past the term's end: %v", c)
	}
	assert.Len(t, pages.calls, 8)
}
