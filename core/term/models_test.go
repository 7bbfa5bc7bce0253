package term

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maendeleo/core"
)

func date(t *testing.T, s string) core.Date {
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newTerm(t *testing.T, start, end string) Term {
	return Term{Start: date(t, start), End: date(t, end), AllowedDays: SchoolDays}
}

func TestTerm_Overlaps(t *testing.T) {
	trm := newTerm(t, "2021-01-04", "2021-01-17")

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{name: "before", start: "2020-12-01", end: "2021-01-03", want: false},
		{name: "after", start: "2021-01-18", end: "2021-02-01", want: false},
		{name: "touches start", start: "2020-12-01", end: "2021-01-04", want: true},
		{name: "touches end", start: "2021-01-17", end: "2021-02-01", want: true},
		{name: "inside", start: "2021-01-06", end: "2021-01-08", want: true},
		{name: "around", start: "2020-12-01", end: "2021-02-01", want: true},
		{name: "same", start: "2021-01-04", end: "2021-01-17", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trm.Overlaps(date(t, tt.start), date(t, tt.end)))

			// overlapping is symmetric
			other := newTerm(t, tt.start, tt.end)
			assert.Equal(t, tt.want, other.Overlaps(trm.Start, trm.End))
		})
	}
}

func TestTerm_IsDateAllowed(t *testing.T) {
	trm := newTerm(t, "2021-03-01", "2021-03-31")

	tests := []struct {
		name string
		date string
		want bool
	}{
		{name: "first day (monday)", date: "2021-03-01", want: true},
		{name: "last day (wednesday)", date: "2021-03-31", want: true},
		{name: "friday", date: "2021-03-05", want: true},
		{name: "saturday", date: "2021-03-06", want: false},
		{name: "sunday", date: "2021-03-07", want: false},
		{name: "before term", date: "2021-02-26", want: false},
		{name: "after term", date: "2021-04-01", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trm.IsDateAllowed(date(t, tt.date)))
		})
	}

	t.Run("weekend term", func(t *testing.T) {
		weekend := trm
		weekend.AllowedDays = NewWeekdays(time.Saturday, time.Sunday)
		assert.True(t, weekend.IsDateAllowed(date(t, "2021-03-06")))
		assert.False(t, weekend.IsDateAllowed(date(t, "2021-03-08")))
	})
}

func TestTerm_NumberOfWeeks(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{name: "single day", start: "2021-01-04", end: "2021-01-04", want: 0},
		{name: "two days", start: "2021-01-04", end: "2021-01-05", want: 2},
		{name: "six days", start: "2021-01-04", end: "2021-01-10", want: 2},
		{name: "two weeks", start: "2021-01-04", end: "2021-01-17", want: 3},
		{name: "two weeks and a day", start: "2021-01-04", end: "2021-01-18", want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newTerm(t, tt.start, tt.end).NumberOfWeeks())
		})
	}
}

func TestTerm_WeekDates(t *testing.T) {
	trm := newTerm(t, "2021-01-04", "2021-01-17")

	start, end, ok := trm.WeekDates(1)
	require.True(t, ok)
	assert.Equal(t, "2021-01-04", start.String())
	assert.Equal(t, "2021-01-10", end.String())

	start, end, ok = trm.WeekDates(3)
	require.True(t, ok)
	assert.Equal(t, "2021-01-18", start.String())
	assert.Equal(t, "2021-01-24", end.String())

	_, _, ok = trm.WeekDates(0)
	assert.False(t, ok)
	_, _, ok = trm.WeekDates(4)
	assert.False(t, ok)

	weeks := trm.Weeks()
	require.Len(t, weeks, 3)
	assert.Equal(t, 2, weeks[1].Number)
	assert.Equal(t, "2021-01-11", weeks[1].Start.String())
}

func TestNewTerm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		nt        NewTerm
		wantField string
	}{
		{name: "no classroom", nt: NewTerm{Start: date(t, "2021-01-04"), End: date(t, "2021-01-17")}, wantField: "classroom_id"},
		{name: "no start", nt: NewTerm{ClassroomID: "c", End: date(t, "2021-01-17")}, wantField: "start"},
		{name: "no end", nt: NewTerm{ClassroomID: "c", Start: date(t, "2021-01-04")}, wantField: "end"},
		{name: "end before start", nt: NewTerm{ClassroomID: "c", Start: date(t, "2021-01-17"), End: date(t, "2021-01-04")}, wantField: "end"},
		{name: "valid", nt: NewTerm{ClassroomID: "c", Start: date(t, "2021-01-04"), End: date(t, "2021-01-04")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nt.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			_, ok := verr.Field(tt.wantField)
			assert.True(t, ok, "want error on %q, got %v", tt.wantField, err)
		})
	}
}

func TestWeekdays(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		w, err := ParseWeekdays("1", "Tuesday", " friday ")
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Friday}, w.Days())

		_, err = ParseWeekdays("7")
		assert.ErrorIs(t, err, errInvalidWeekday)
		_, err = ParseWeekdays("funday")
		assert.ErrorIs(t, err, errInvalidWeekday)
	})

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(NewWeekdays(time.Sunday, time.Wednesday))
		require.NoError(t, err)
		assert.JSONEq(t, `["sunday","wednesday"]`, string(data))

		var w Weekdays
		require.NoError(t, json.Unmarshal([]byte(`[1, "tuesday", 3, "thursday", "friday"]`), &w))
		assert.Equal(t, SchoolDays, w)
		assert.Error(t, json.Unmarshal([]byte(`["lol"]`), &w))
	})

	t.Run("sql", func(t *testing.T) {
		v, err := SchoolDays.Value()
		require.NoError(t, err)
		var w Weekdays
		require.NoError(t, w.Scan(v))
		assert.Equal(t, SchoolDays, w)
		assert.Error(t, w.Scan("monday"))
	})
}
