package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/user"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

	contextUserKey = "user"
)

// tokenAuthMiddleware resolves the opaque bearer token into a user.User
// and stores it on the request context.
func tokenAuthMiddleware(svc user.ServiceInterface) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(token string, ctx echo.Context) (bool, error) {
			usr, err := svc.GetByToken(ctx.Request().Context(), token)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return false, errUnauthorized
				}
				return false, errors.Wrap(err, "resolving token")
			}
			ctx.Set(contextUserKey, usr)
			return true, nil
		},
	})
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}
