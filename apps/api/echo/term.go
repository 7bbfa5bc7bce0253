package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

type termApi struct {
	svc      *term.Service
	roster   roster.Repository
	validate *validator.Validate
}

func registerTermAPI(g *echo.Group, deps *Deps) {
	api := termApi{
		svc:      deps.TermSvc,
		roster:   deps.Roster,
		validate: deps.Validate,
	}

	cg := g.Group("/classrooms/:classroom/terms")
	cg.POST("", api.create, classroomMiddleware(api.roster, true))
	cg.GET("", api.query, classroomMiddleware(api.roster, false))

	tg := g.Group("/terms/:term")
	tg.GET("", api.retrieve, termMiddleware(api.svc, api.roster, false))
	tg.GET("/weeks", api.weeks, termMiddleware(api.svc, api.roster, false))
	tg.PATCH("", api.update, termMiddleware(api.svc, api.roster, true))
	tg.DELETE("", api.destroy, termMiddleware(api.svc, api.roster, true))
}

// Handlers

func (api *termApi) create(ctx echo.Context) error {
	var data CreateTermRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CreateTermRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data.NewTerm(ctx.Param("classroom")))
	if err != nil {
		return errors.Wrap(err, "creating term")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *termApi) query(ctx echo.Context) error {
	terms, err := api.svc.QueryByClassroom(ctx.Request().Context(), ctx.Param("classroom"))
	if err != nil {
		return errors.Wrap(err, "querying terms")
	}
	if terms == nil {
		terms = []term.Term{}
	}
	return ctx.JSON(http.StatusOK, terms)
}

func (api *termApi) retrieve(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *termApi) weeks(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t.Weeks())
}

func (api *termApi) update(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}

	var data UpdateTermRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTermRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if t, err = api.svc.Update(ctx.Request().Context(), t.ID, data.Changes()); err != nil {
		return errors.Wrap(err, "updating term")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *termApi) destroy(ctx echo.Context) error {
	t, err := getContextTerm(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), t.ID); err != nil {
		return errors.Wrap(err, "deleting term")
	}
	return ctx.NoContent(http.StatusNoContent)
}
