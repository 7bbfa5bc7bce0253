package echoapi

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

const contextTermKey = "term"

// timeoutMiddleware bounds the time a request may spend in the services.
func timeoutMiddleware(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c, cancel := context.WithTimeout(ctx.Request().Context(), timeout)
			defer cancel()
			ctx.SetRequest(ctx.Request().WithContext(c))
			return next(ctx)
		}
	}
}

// checkMember fails unless the context user belongs to the classroom.
// With staffOnly, students are refused too.
func checkMember(ctx echo.Context, repo roster.Repository, classroomID string, staffOnly bool) (roster.User, error) {
	usr, err := getContextUser(ctx, repo)
	if err != nil {
		return roster.User{}, err
	}
	member, err := repo.IsInClassroom(ctx.Request().Context(), classroomID, usr.ID)
	if err != nil {
		return roster.User{}, errors.Wrap(err, "checking classroom membership")
	}
	if !member || (staffOnly && usr.IsStudent()) {
		return roster.User{}, errHttpForbidden
	}
	return usr, nil
}

// classroomMiddleware lets through the members of the `:classroom` path param.
func classroomMiddleware(repo roster.Repository, staffOnly bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := repo.GetClassroom(ctx.Request().Context(), ctx.Param("classroom")); err != nil {
				return err
			}
			if _, err := checkMember(ctx, repo, ctx.Param("classroom"), staffOnly); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// termMiddleware loads the `:term` path param into the context and lets through the members of its classroom.
func termMiddleware(svc *term.Service, repo roster.Repository, staffOnly bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			t, err := svc.Get(ctx.Request().Context(), ctx.Param("term"))
			if err != nil {
				return err
			}
			if _, err = checkMember(ctx, repo, t.ClassroomID, staffOnly); err != nil {
				return err
			}
			ctx.Set(contextTermKey, t)
			return next(ctx)
		}
	}
}

func getContextTerm(ctx echo.Context) (term.Term, error) {
	if t, ok := ctx.Get(contextTermKey).(term.Term); ok {
		return t, nil
	}
	return term.Term{}, errHttpNotFound
}
