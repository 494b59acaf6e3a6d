package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"realestate/internal/service"
)

// MessageHandler serves messaging between users.
type MessageHandler struct {
	svc service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// SendMessageRequest is a new message from the current user.
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	ListingID  *uint  `json:"listing_id"`
	Subject    string `json:"subject" validate:"max=255"`
	Content    string `json:"content" validate:"required"`
}

// List godoc
// @Summary List messages
// @Description Messages the current user sent or received, newest first.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} MessageView
// @Failure 401 {object} errors.ErrorResponse
// @Router /messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	messages, err := h.svc.List(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newMessageViews(messages))
}

// Send godoc
// @Summary Send a message
// @Description Stores the message and pushes new_message to the receiver's room.
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} MessageView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	msg, err := h.svc.Send(c.Request().Context(), userID, service.SendMessageInput{
		ReceiverID: req.ReceiverID,
		ListingID:  req.ListingID,
		Subject:    req.Subject,
		Content:    req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, newMessageView(msg))
}
