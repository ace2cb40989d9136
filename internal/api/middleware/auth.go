package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/censudex/clients-service/internal/pkg/token"
)

// Context keys set by Auth and read by the request logger.
const (
	CtxSubject  = "subject"
	CtxUsername = "username"
)

// Auth validates the bearer token and injects its claims into the context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := token.FromHeader(c.Request().Header.Get(echo.HeaderAuthorization), jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(CtxSubject, claims.Subject)
			c.Set(CtxUsername, claims.Username)

			return next(c)
		}
	}
}
