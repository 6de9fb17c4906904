package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

type userApi struct {
	deps ServerDeps
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{deps: deps}

	// un-authed endpoints
	g.POST("/login", api.login)

	// authed endpoints
	g.POST("/check-auth", api.checkAuth, auth)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}

	return ctx.JSON(http.StatusOK, user.LoginResponse{OK: true, Token: usr.Token})
}

func (api *userApi) checkAuth(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}
