package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"tiketnow/models"
	"tiketnow/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	token, user, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.auth.Logout(sessionToken(c))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.auth.CurrentUser(sessionToken(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
	}
	return c.JSON(http.StatusOK, user)
}

// RequireAuth guards the admin routes and stashes the signed-in user on the
// request context.
func (h *AuthHandler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := h.auth.CurrentUser(sessionToken(c))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		c.Set("user", user)
		return next(c)
	}
}

func sessionToken(c echo.Context) string {
	return strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
}

func currentUser(c echo.Context) models.User {
	user, _ := c.Get("user").(models.User)
	return user
}
