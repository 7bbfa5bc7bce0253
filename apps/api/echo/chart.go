package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/chart"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
	"github.com/trezcool/maendeleo/services/export"
)

const formatXLSX = "xlsx"

type chartApi struct {
	svc    *chart.Service
	terms  *term.Service
	roster roster.Repository
}

func registerChartAPI(g *echo.Group, deps *Deps) {
	api := chartApi{
		svc:    deps.ChartSvc,
		terms:  deps.TermSvc,
		roster: deps.Roster,
	}

	cg := g.Group("/terms/:term/charts")
	cg.GET("/goals", api.goals, termMiddleware(api.terms, api.roster, false))
	cg.GET("/progress", api.progress, termMiddleware(api.terms, api.roster, false))
}

// render sends the config as JSON, or as a spreadsheet with `?format=xlsx`.
func render(ctx echo.Context, name string, cfg chart.Config) error {
	if ctx.QueryParam("format") != formatXLSX {
		return ctx.JSON(http.StatusOK, cfg)
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, cfg); err != nil {
		return errors.Wrap(err, "exporting chart")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	return ctx.Blob(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// Handlers

func (api *chartApi) goals(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	cfg, err := api.svc.GoalChart(ctx.Request().Context(), t)
	if err != nil {
		return errors.Wrap(err, "building goals chart")
	}
	return render(ctx, "goals-"+t.ID, cfg)
}

// progress charts `?student=<id>` (repeatable). Students may only chart themselves and default to it.
func (api *chartApi) progress(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.roster)
	if err != nil {
		return err
	}

	students := ctx.QueryParams()["student"]
	if usr.IsStudent() {
		for _, id := range students {
			if id != usr.ID {
				return errHttpForbidden
			}
		}
		if len(students) == 0 {
			students = []string{usr.ID}
		}
	}

	cfg, err := api.svc.ProgressChart(ctx.Request().Context(), t, students)
	if err != nil {
		return errors.Wrap(err, "building progress chart")
	}
	return render(ctx, "progress-"+t.ID, cfg)
}
