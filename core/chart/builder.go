// Package chart compiles weekly series of a term into line chart configurations.
package chart

import (
	"context"
	"math"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultStepSize = 10
	defaultWidth    = 2
	weekLabelPrefix = "Week "
)

var (
	weekLabelRe = regexp.MustCompile(`^Week (\d+)$`)

	palette = []string{"#4dc9f6", "#f67019", "#f53794", "#537bc4", "#acc236", "#166a8f", "#00a950", "#58595b", "#8549ba"}
)

// WeekLabels returns "Week 1" to "Week n".
func WeekLabels(n int) []string {
	labels := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		labels = append(labels, weekLabelPrefix+strconv.Itoa(i))
	}
	return labels
}

// ParseWeekLabel returns the week number of a "Week <n>" label.
func ParseWeekLabel(label string) (int, bool) {
	m := weekLabelRe.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	week, err := strconv.Atoi(m[1])
	if err != nil || week < 1 {
		return 0, false
	}
	return week, true
}

// PointFunc returns the raw value of a dataset at a label. A null value is a gap.
// It may be called concurrently.
type PointFunc func(ctx context.Context, label string) (null.Float64, error)

// Style sets how a dataset is drawn. Zero fields get defaults.
type Style struct {
	Color string
	Width int
}

// Settings tunes chart building.
type Settings struct {
	// StepSize is the y axis step. Defaults to DefaultStepSize.
	StepSize float64
	// Concurrency bounds the number of points evaluated at once. Unbounded if <= 0.
	Concurrency int
}

type (
	Config struct {
		Labels   []string     `json:"labels"`
		Datasets []Dataset    `json:"datasets"`
		Options  ChartOptions `json:"options"`
	}

	Dataset struct {
		Label           string         `json:"label"`
		Data            []null.Float64 `json:"data"`
		Fill            bool           `json:"fill"`
		BorderColor     string         `json:"borderColor"`
		BackgroundColor string         `json:"backgroundColor"`
		BorderWidth     int            `json:"borderWidth"`
	}

	ChartOptions struct {
		Scales Scales `json:"scales"`
	}

	Scales struct {
		YAxes []Axis `json:"yAxes"`
	}

	Axis struct {
		Ticks Ticks `json:"ticks"`
	}

	Ticks struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		StepSize float64 `json:"stepSize"`
	}
)

type dataset struct {
	label string
	point PointFunc
	style Style
}

// Builder assembles datasets sharing the same labels into a chart Config.
type Builder struct {
	settings Settings
	labels   []string
	datasets []dataset
}

func NewBuilder(settings Settings) *Builder {
	if settings.StepSize <= 0 {
		settings.StepSize = DefaultStepSize
	}
	return &Builder{settings: settings}
}

func (b *Builder) SetLabels(labels []string) {
	b.labels = labels
}

// AddDataset registers a dataset whose values are point evaluated at every label, with gaps interpolated.
func (b *Builder) AddDataset(label string, point PointFunc, style Style) {
	b.datasets = append(b.datasets, dataset{label: label, point: point, style: style})
}

// Config evaluates every point of every dataset and returns the chart configuration.
// The first point error aborts the build.
func (b *Builder) Config(ctx context.Context) (Config, error) {
	raw := make([][]null.Float64, len(b.datasets))
	for i := range raw {
		raw[i] = make([]null.Float64, len(b.labels))
	}

	g, ctx := errgroup.WithContext(ctx)
	if b.settings.Concurrency > 0 {
		g.SetLimit(b.settings.Concurrency)
	}
	for i, ds := range b.datasets {
		for j, label := range b.labels {
			i, j, ds, label := i, j, ds, label
			g.Go(func() error {
				v, err := ds.point(ctx, label)
				if err != nil {
					return errors.Wrapf(err, "%s at %s", ds.label, label)
				}
				raw[i][j] = v
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Labels:   append([]string{}, b.labels...),
		Datasets: make([]Dataset, 0, len(b.datasets)),
	}
	var top float64
	for i, ds := range b.datasets {
		data := Interpolate(raw[i])
		for _, v := range data {
			if v.Valid && v.Float64 > top {
				top = v.Float64
			}
		}

		color := ds.style.Color
		if color == "" {
			color = palette[i%len(palette)]
		}
		width := ds.style.Width
		if width <= 0 {
			width = defaultWidth
		}
		cfg.Datasets = append(cfg.Datasets, Dataset{
			Label:           ds.label,
			Data:            data,
			BorderColor:     color,
			BackgroundColor: color,
			BorderWidth:     width,
		})
	}

	cfg.Options.Scales.YAxes = []Axis{{Ticks: yTicks(top, b.settings.StepSize)}}
	return cfg, nil
}

// yTicks returns a 0-based axis whose max is the smallest multiple of step not below top, and at least one step.
func yTicks(top, step float64) Ticks {
	max := math.Ceil(top/step) * step
	if max < step {
		max = step
	}
	return Ticks{Min: 0, Max: max, StepSize: step}
}
