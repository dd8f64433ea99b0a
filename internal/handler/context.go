package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"shellnote/internal/auth"
)

// currentUserID extracts the authenticated user's id from the JWT middleware
// context. Routes behind the middleware always have a validated token, so a
// failure here means a misconfigured route, not a client error.
func currentUserID(c echo.Context) (uint, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
	}
	return userID, nil
}
