package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"warbler/internal/service"
)

// FollowHandler handles follow endpoints.
type FollowHandler struct {
	followService service.FollowService
}

// NewFollowHandler creates a new follow handler.
func NewFollowHandler(followService service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow godoc
// @Summary Follow a user
// @Tags follows
// @Produce json
// @Security SessionAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/follow/{id} [post]
func (h *FollowHandler) Follow(c echo.Context) error {
	id, herr := paramID(c, "id")
	if herr != nil {
		return herr
	}
	if err := h.followService.Follow(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "following",
	})
}

// Unfollow godoc
// @Summary Stop following a user
// @Tags follows
// @Produce json
// @Security SessionAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/stop-following/{id} [post]
func (h *FollowHandler) Unfollow(c echo.Context) error {
	id, herr := paramID(c, "id")
	if herr != nil {
		return herr
	}
	if err := h.followService.Unfollow(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "unfollowed",
	})
}
