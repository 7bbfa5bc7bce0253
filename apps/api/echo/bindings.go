package echoapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progress"
	"github.com/trezcool/maendeleo/core/term"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// mustDate parses a date already checked by the `isodate` validator.
func mustDate(s string) core.Date {
	d, _ := core.ParseDate(s)
	return d
}

func pathInt(ctx echo.Context, name string) (int, error) {
	i, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, core.NewFieldError(name, "must be an integer")
	}
	return i, nil
}

type CreateTermRequest struct {
	Start string `json:"start" validate:"required,isodate"`
	End   string `json:"end" validate:"required,isodate"`
	// AllowedDays defaults to monday to friday.
	AllowedDays *term.Weekdays `json:"allowed_days"`
}

func (r CreateTermRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r CreateTermRequest) NewTerm(classroomID string) term.NewTerm {
	days := term.SchoolDays
	if r.AllowedDays != nil {
		days = *r.AllowedDays
	}
	return term.NewTerm{ClassroomID: classroomID, Start: mustDate(r.Start), End: mustDate(r.End), AllowedDays: days}
}

type UpdateTermRequest struct {
	Start       string         `json:"start" validate:"omitempty,isodate"`
	End         string         `json:"end" validate:"omitempty,isodate"`
	AllowedDays *term.Weekdays `json:"allowed_days"`
}

func (r UpdateTermRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r UpdateTermRequest) Changes() term.Changes {
	ch := term.Changes{AllowedDays: r.AllowedDays}
	if r.Start != "" {
		start := mustDate(r.Start)
		ch.Start = &start
	}
	if r.End != "" {
		end := mustDate(r.End)
		ch.End = &end
	}
	return ch
}

type RecordProgressRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required,isodate"`
	progress.Patch
}

func (r RecordProgressRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r RecordProgressRequest) Key() progress.Key {
	return progress.Key{SubjectID: r.SubjectID, StudentID: r.StudentID, Date: mustDate(r.Date)}
}

type ProgressQuery struct {
	SubjectID string `query:"subject_id" validate:"required"`
	StudentID string `query:"student_id" validate:"required"`
	From      string `query:"from" validate:"omitempty,isodate"`
	To        string `query:"to" validate:"omitempty,isodate"`
}

func (q ProgressQuery) Validate(validate *validator.Validate) error {
	return validate.Struct(q)
}

func (q ProgressQuery) Filter() progress.QueryFilter {
	f := progress.QueryFilter{SubjectID: q.SubjectID, StudentID: q.StudentID}
	if q.From != "" {
		f.From = mustDate(q.From)
	}
	if q.To != "" {
		f.To = mustDate(q.To)
	}
	return f
}

type SetGoalRequest struct {
	Pages *int `json:"pages" validate:"required,min=0"`
}

func (r SetGoalRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
