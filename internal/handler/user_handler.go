package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"warbler/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc    service.UserService
	cookie CookieConfig
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, cookie CookieConfig) *UserHandler {
	return &UserHandler{svc: svc, cookie: cookie}
}

// Search godoc
// @Summary Search users by username
// @Tags users
// @Produce json
// @Param q query string false "Username fragment"
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) Search(c echo.Context) error {
	users, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Show godoc
// @Summary Get a user profile with recent messages
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Show(c echo.Context) error {
	id, herr := paramID(c, "id")
	if herr != nil {
		return herr
	}
	profile, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// Followers godoc
// @Summary List who follows a user
// @Tags users
// @Produce json
// @Security SessionAuth
// @Param id path int true "User ID"
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/followers [get]
func (h *UserHandler) Followers(c echo.Context) error {
	id, herr := paramID(c, "id")
	if herr != nil {
		return herr
	}
	users, err := h.svc.Followers(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Following godoc
// @Summary List who a user follows
// @Tags users
// @Produce json
// @Security SessionAuth
// @Param id path int true "User ID"
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/following [get]
func (h *UserHandler) Following(c echo.Context) error {
	id, herr := paramID(c, "id")
	if herr != nil {
		return herr
	}
	users, err := h.svc.Following(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Delete godoc
// @Summary Delete the signed-in account
// @Tags users
// @Produce json
// @Security SessionAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/delete [post]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.svc.DeleteAccount(c.Request().Context()); err != nil {
		return respondError(c, err)
	}
	clearSessionCookie(c, h.cookie)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "account deleted",
	})
}
