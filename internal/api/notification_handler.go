package api

import (
	"errors"
	"net/http"

	"fitcabinet/coach-crm/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler holds the notification service dependency.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListMine returns the caller's notifications, newest first.
func (h *NotificationHandler) ListMine(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}

	notifications, err := h.notificationService.ListMine(c.Request.Context(), accountID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// UnreadCount returns the badge counter.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), accountID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead flags one of the caller's notifications.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	notificationID, ok := parseIDParam(c, "notificationId")
	if !ok {
		return
	}

	err = h.notificationService.MarkRead(c.Request.Context(), accountID, notificationID)
	if errors.Is(err, service.ErrNotificationNotFound) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to mark notification")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead flags every unread notification of the caller.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), accountID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to mark notifications")
		return
	}
	c.Status(http.StatusNoContent)
}
