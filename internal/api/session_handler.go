package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"
	"fitcabinet/coach-crm/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler holds the session service dependency.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- Request/Response Structs ---

type CreateSessionRequest struct {
	ClientID    string    `json:"clientId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

type UpdateSessionRequest struct {
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	ClientFeedback *string    `json:"clientFeedback"`
	ScheduledAt    *time.Time `json:"scheduledAt"`
	Status         string     `json:"status"`
}

type AddCommentRequest struct {
	Text          string `json:"text"`
	AttachmentKey string `json:"attachmentKey"`
}

// CommentResponse exposes whether a message carries an attachment without
// leaking the raw object key.
type CommentResponse struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	AuthorID      string    `json:"authorId"`
	Text          string    `json:"text"`
	HasAttachment bool      `json:"hasAttachment"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}

type RequestUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmAttachmentRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// CreateSession schedules a new session on a visible card.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	clientID, err := parseObjectID(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format")
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), accountID, service.CreateSessionInput{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
	})
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions lists the calendar: sessions on every visible card, newest
// scheduled first. Optional ?status=, ?from=, ?to= (RFC 3339) filters.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}

	filter := repository.SessionFilter{}
	if status := c.Query("status"); status != "" {
		if !domain.ValidSessionStatus(domain.SessionStatus(status)) {
			abortWithError(c, http.StatusBadRequest, "Unknown status filter")
			return
		}
		filter.Status = domain.SessionStatus(status)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp")
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp")
			return
		}
		filter.To = &t
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), accountID, filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), accountID, sessionID)
	if handleAccessError(c, err, opRead) {
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession applies partial changes (status, feedback, reschedule).
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.UpdateSession(c.Request.Context(), accountID, sessionID, service.UpdateSessionInput{
		Title:          req.Title,
		Description:    req.Description,
		ClientFeedback: req.ClientFeedback,
		ScheduledAt:    req.ScheduledAt,
		Status:         domain.SessionStatus(req.Status),
	})
	if errors.Is(err, service.ErrInvalidStatus) {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusOK, session)
}

// --- Comments ---

// ListComments returns the chat thread of a session, oldest first.
func (h *SessionHandler) ListComments(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	comments, err := h.sessionService.ListComments(c.Request.Context(), accountID, sessionID)
	if handleAccessError(c, err, opRead) {
		return
	}

	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = MapCommentToResponse(&comments[i])
	}
	c.JSON(http.StatusOK, out)
}

// AddComment posts a chat message into the thread.
func (h *SessionHandler) AddComment(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if req.Text == "" && req.AttachmentKey == "" {
		abortWithError(c, http.StatusBadRequest, "Comment text or attachment is required")
		return
	}

	comment, err := h.sessionService.AddComment(c.Request.Context(), accountID, sessionID, service.AddCommentInput{
		Text:          req.Text,
		AttachmentKey: req.AttachmentKey,
	})
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusCreated, MapCommentToResponse(comment))
}

// MarkCommentsRead flags the counterpart's messages when the thread is opened.
func (h *SessionHandler) MarkCommentsRead(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	if handleAccessError(c, h.sessionService.MarkCommentsRead(c.Request.Context(), accountID, sessionID), opWrite) {
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Attachments ---

// RequestAttachmentUpload presigns a direct PUT for a session attachment.
func (h *SessionHandler) RequestAttachmentUpload(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.sessionService.RequestAttachmentUpload(c.Request.Context(), accountID, sessionID, req.FileName, req.ContentType)
	if errors.Is(err, service.ErrUploadURLError) {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmAttachment records the uploaded object key on the session.
func (h *SessionHandler) ConfirmAttachment(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req ConfirmAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.ConfirmAttachment(c.Request.Context(), accountID, sessionID, req.ObjectKey)
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetAttachment returns a temporary download URL plus the media kind.
func (h *SessionHandler) GetAttachment(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	download, err := h.sessionService.AttachmentDownloadURL(c.Request.Context(), accountID, sessionID)
	if errors.Is(err, service.ErrNoAttachment) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, service.ErrDownloadURLError) {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if handleAccessError(c, err, opRead) {
		return
	}
	c.JSON(http.StatusOK, download)
}

// RequestCommentAttachmentUpload presigns a direct PUT for a chat attachment.
func (h *SessionHandler) RequestCommentAttachmentUpload(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.sessionService.RequestCommentAttachmentUpload(c.Request.Context(), accountID, sessionID, req.FileName, req.ContentType)
	if errors.Is(err, service.ErrUploadURLError) {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCommentAttachment returns a temporary download URL plus the media kind.
func (h *SessionHandler) GetCommentAttachment(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	download, err := h.sessionService.CommentAttachmentDownloadURL(c.Request.Context(), accountID, sessionID, commentID)
	if errors.Is(err, service.ErrNoAttachment) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, service.ErrDownloadURLError) {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if handleAccessError(c, err, opRead) {
		return
	}
	c.JSON(http.StatusOK, download)
}

// MapCommentToResponse converts a domain Comment to its DTO.
func MapCommentToResponse(comment *domain.Comment) CommentResponse {
	if comment == nil {
		return CommentResponse{}
	}
	return CommentResponse{
		ID:            comment.ID.Hex(),
		SessionID:     comment.SessionID.Hex(),
		AuthorID:      comment.AuthorID.Hex(),
		Text:          comment.Text,
		HasAttachment: comment.AttachmentKey != "",
		Read:          comment.Read,
		CreatedAt:     comment.CreatedAt,
	}
}
