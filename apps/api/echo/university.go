package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/university"
)

type universityApi struct {
	deps ServerDeps
}

func registerUniversityAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := universityApi{deps: deps}

	g.GET("/my-universities", api.mine, auth)

	ug := g.Group("/universities", auth)
	ug.POST("", api.create)
	ug.POST("/:id/roles", api.assignRole)
	ug.PUT("/:id/formula", api.setFormula)
}

// pathID parses a decimal path param; 0 when absent or malformed so
// lookups downstream resolve to not-found.
func pathID(ctx echo.Context, name string) int {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0
	}
	return id
}

// Handlers

func (api *universityApi) mine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	unis, err := api.deps.UniversitySvc.Mine(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, unis)
}

func (api *universityApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data university.NewUniversity
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUniversity")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	uni, err := api.deps.UniversitySvc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, uni)
}

func (api *universityApi) assignRole(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data university.AssignRole
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignRole")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err = api.deps.UniversitySvc.Assign(ctx.Request().Context(), usr, pathID(ctx, "id"), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *universityApi) setFormula(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data university.SetFormula
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetFormula")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	uni, err := api.deps.UniversitySvc.ReplaceFormula(ctx.Request().Context(), usr, pathID(ctx, "id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, uni)
}
