package chart

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestWeekLabels(t *testing.T) {
	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3"}, WeekLabels(3))
	assert.Empty(t, WeekLabels(0))

	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{label: "Week 1", want: 1, wantOK: true},
		{label: "Week 12", want: 12, wantOK: true},
		{label: "Week 0"},
		{label: "week 1"},
		{label: "Week 1 "},
		{label: "Week x"},
		{label: ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseWeekLabel(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYTicks(t *testing.T) {
	tests := []struct {
		name      string
		top, step float64
		want      Ticks
	}{
		{name: "empty chart", top: 0, step: 10, want: Ticks{Min: 0, Max: 10, StepSize: 10}},
		{name: "below a step", top: 3, step: 10, want: Ticks{Min: 0, Max: 10, StepSize: 10}},
		{name: "on a step", top: 30, step: 10, want: Ticks{Min: 0, Max: 30, StepSize: 10}},
		{name: "rounded up", top: 31, step: 10, want: Ticks{Min: 0, Max: 40, StepSize: 10}},
		{name: "other step", top: 31, step: 25, want: Ticks{Min: 0, Max: 50, StepSize: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, yTicks(tt.top, tt.step))
		})
	}
}

// pointsFrom returns a PointFunc serving values by label.
func pointsFrom(values map[string]null.Float64) PointFunc {
	return func(_ context.Context, label string) (null.Float64, error) {
		return values[label], nil
	}
}

func TestBuilder_Config(t *testing.T) {
	b := NewBuilder(Settings{Concurrency: 2})
	b.SetLabels(WeekLabels(4))

	var calls int32
	b.AddDataset("Goals", func(_ context.Context, label string) (null.Float64, error) {
		atomic.AddInt32(&calls, 1)
		week, _ := ParseWeekLabel(label)
		if week == 2 || week == 3 {
			return null.Float64{}, nil
		}
		return null.Float64From(float64(week * 10)), nil
	}, Style{})
	b.AddDataset("Awe", pointsFrom(map[string]null.Float64{
		"Week 1": null.Float64From(12),
		"Week 2": null.Float64From(43),
	}), Style{Color: "#000000", Width: 4})

	cfg, err := b.Config(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, calls)

	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3", "Week 4"}, cfg.Labels)
	require.Len(t, cfg.Datasets, 2)

	goals := cfg.Datasets[0]
	assert.Equal(t, "Goals", goals.Label)
	assert.Equal(t, floats(10, 20, 30, 40), goals.Data)
	assert.Equal(t, palette[0], goals.BorderColor)
	assert.Equal(t, defaultWidth, goals.BorderWidth)
	assert.False(t, goals.Fill)

	awe := cfg.Datasets[1]
	assert.Equal(t, floats(12, 43, nil, nil), awe.Data)
	assert.Equal(t, "#000000", awe.BorderColor)
	assert.Equal(t, 4, awe.BorderWidth)

	require.Len(t, cfg.Options.Scales.YAxes, 1)
	assert.Equal(t, Ticks{Min: 0, Max: 50, StepSize: DefaultStepSize}, cfg.Options.Scales.YAxes[0].Ticks)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"labels": ["Week 1", "Week 2", "Week 3", "Week 4"],
		"datasets": [
			{"label": "Goals", "data": [10, 20, 30, 40], "fill": false, "borderColor": "#4dc9f6", "backgroundColor": "#4dc9f6", "borderWidth": 2},
			{"label": "Awe", "data": [12, 43, null, null], "fill": false, "borderColor": "#000000", "backgroundColor": "#000000", "borderWidth": 4}
		],
		"options": {"scales": {"yAxes": [{"ticks": {"min": 0, "max": 50, "stepSize": 10}}]}}
	}`, string(data))
}

func TestBuilder_Config_error(t *testing.T) {
	errBoom := errors.New("boom")

	b := NewBuilder(Settings{})
	b.SetLabels(WeekLabels(3))
	b.AddDataset("Goals", func(_ context.Context, label string) (null.Float64, error) {
		if label == "Week 2" {
			return null.Float64{}, errBoom
		}
		return null.Float64From(1), nil
	}, Style{})

	_, err := b.Config(context.Background())
	assert.ErrorIs(t, err, errBoom)
}
