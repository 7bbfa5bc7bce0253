package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/progress"
	"github.com/trezcool/maendeleo/core/roster"
)

type progressApi struct {
	svc      *progress.Service
	roster   roster.Repository
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, deps *Deps) {
	api := progressApi{
		svc:      deps.ProgressSvc,
		roster:   deps.Roster,
		validate: deps.Validate,
	}

	pg := g.Group("/progress")
	pg.PUT("", api.record)
	pg.GET("", api.query)
}

func (api *progressApi) authorize(ctx echo.Context, subjectID, studentID string) error {
	usr, err := getContextUser(ctx, api.roster)
	if err != nil {
		return err
	}
	ok, err := api.svc.IsUserAuthorized(ctx.Request().Context(), usr, subjectID, studentID)
	if err != nil {
		return errors.Wrap(err, "authorizing user")
	}
	if !ok {
		return errHttpForbidden
	}
	return nil
}

// Handlers

// record finds or creates the progress of (subject, student, date) and applies the given pages to it.
func (api *progressApi) record(ctx echo.Context) error {
	var data RecordProgressRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordProgressRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.authorize(ctx, data.SubjectID, data.StudentID); err != nil {
		return err
	}

	prog, err := api.svc.Record(ctx.Request().Context(), data.Key(), data.Patch)
	if err != nil {
		return errors.Wrap(err, "recording progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

// query lists the progress of a student in a subject. `?ordering=-date` sorts by descending date.
func (api *progressApi) query(ctx echo.Context) error {
	var q ProgressQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to ProgressQuery")
	}
	if err := q.Validate(api.validate); err != nil {
		return err
	}
	if err := api.authorize(ctx, q.SubjectID, q.StudentID); err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	res, err := api.svc.Query(ctx.Request().Context(), q.Filter(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	if res == nil {
		res = []progress.Progress{}
	}
	return ctx.JSON(http.StatusOK, res)
}
