package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"warbler/internal/service"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// CreateMessageRequest represents a new message.
type CreateMessageRequest struct {
	Text string `json:"text"`
}

// Create godoc
// @Summary Post a message
// @Tags messages
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body CreateMessageRequest true "Message"
// @Success 201 {object} model.Message
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) Create(c echo.Context) error {
	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}

	message, err := h.messageService.Create(c.Request().Context(), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, message)
}

// Show godoc
// @Summary Get a message
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} model.Message
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/{id} [get]
func (h *MessageHandler) Show(c echo.Context) error {
	id, herr := paramID(c, "id")
	if herr != nil {
		return herr
	}
	message, err := h.messageService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, message)
}

// Delete godoc
// @Summary Delete one of your messages
// @Tags messages
// @Produce json
// @Security SessionAuth
// @Param id path int true "Message ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/{id}/delete [post]
func (h *MessageHandler) Delete(c echo.Context) error {
	id, herr := paramID(c, "id")
	if herr != nil {
		return herr
	}
	if err := h.messageService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "message deleted",
	})
}

// Timeline godoc
// @Summary Latest messages from you and the people you follow
// @Tags messages
// @Produce json
// @Security SessionAuth
// @Success 200 {array} model.Message
// @Failure 401 {object} errors.ErrorResponse
// @Router /timeline [get]
func (h *MessageHandler) Timeline(c echo.Context) error {
	messages, err := h.messageService.Timeline(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}
