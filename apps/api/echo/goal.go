package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/goal"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

type goalApi struct {
	svc      *goal.Service
	terms    *term.Service
	roster   roster.Repository
	validate *validator.Validate
}

func registerGoalAPI(g *echo.Group, deps *Deps) {
	api := goalApi{
		svc:      deps.GoalSvc,
		terms:    deps.TermSvc,
		roster:   deps.Roster,
		validate: deps.Validate,
	}

	gg := g.Group("/terms/:term/goals")
	gg.GET("", api.query, termMiddleware(api.terms, api.roster, false))
	gg.PUT("/:week", api.set, termMiddleware(api.terms, api.roster, true))
	gg.DELETE("/:week", api.unset, termMiddleware(api.terms, api.roster, true))
}

// Handlers

func (api *goalApi) query(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	goals, err := api.svc.Get(ctx.Request().Context(), t.ClassroomID, t.ID)
	if err != nil {
		return errors.Wrap(err, "querying goals")
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	return ctx.JSON(http.StatusOK, goals)
}

func (api *goalApi) set(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	week, err := pathInt(ctx, "week")
	if err != nil {
		return err
	}

	var data SetGoalRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetGoalRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Set(ctx.Request().Context(), t.ClassroomID, t.ID, week, *data.Pages)
	if err != nil {
		return errors.Wrap(err, "setting goal")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *goalApi) unset(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	week, err := pathInt(ctx, "week")
	if err != nil {
		return err
	}
	if err = api.svc.Unset(ctx.Request().Context(), t.ClassroomID, t.ID, week); err != nil {
		return errors.Wrap(err, "unsetting goal")
	}
	return ctx.NoContent(http.StatusNoContent)
}
