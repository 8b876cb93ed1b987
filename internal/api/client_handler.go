package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service dependency.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- Request/Response Structs ---

type OnboardClientRequest struct {
	Email         string   `json:"email" binding:"required,email"`
	Name          string   `json:"name" binding:"required"`
	Phone         string   `json:"phone"`
	CategorySlugs []string `json:"categorySlugs"`
	TagSlugs      []string `json:"tagSlugs"`
}

type UpdateClientRequest struct {
	Name          string   `json:"name"`
	CategorySlugs []string `json:"categorySlugs"`
	TagSlugs      []string `json:"tagSlugs"`
	Active        *bool    `json:"active"`
}

type SetAttributeRequest struct {
	Slug  string `json:"slug" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type UpdateAttributeRequest struct {
	Value string `json:"value" binding:"required"`
}

type ClientResponse struct {
	ID            string    `json:"id"`
	CoachID       string    `json:"coachId"`
	AccountID     *string   `json:"accountId,omitempty"`
	Name          string    `json:"name"`
	CategorySlugs []string  `json:"categorySlugs,omitempty"`
	TagSlugs      []string  `json:"tagSlugs,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// --- Handler Methods ---

// OnboardClient provisions a new client: account + card + classification
// in one unit, credentials delivered by mail.
func (h *ClientHandler) OnboardClient(c *gin.Context) {
	coachID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}

	var req OnboardClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.clientService.OnboardClient(c.Request.Context(), coachID, service.OnboardClientInput{
		Email:         req.Email,
		Name:          req.Name,
		Phone:         req.Phone,
		CategorySlugs: req.CategorySlugs,
		TagSlugs:      req.TagSlugs,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "email"})
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to onboard client")
		}
		return
	}

	c.JSON(http.StatusCreated, MapClientToResponse(client))
}

// ListClients returns every card visible to the caller.
func (h *ClientHandler) ListClients(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context(), accountID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = MapClientToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetClient returns a single card.
func (h *ClientHandler) GetClient(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), accountID, clientID)
	if handleAccessError(c, err, opRead) {
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// UpdateClient changes card fields (owning coach only).
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), accountID, clientID, service.UpdateClientInput{
		Name:          req.Name,
		CategorySlugs: req.CategorySlugs,
		TagSlugs:      req.TagSlugs,
		Active:        req.Active,
	})
	if errors.Is(err, service.ErrNotCardOwner) {
		abortWithError(c, http.StatusForbidden, err.Error())
		return
	}
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// DeleteClient removes the card and cascades over the linked account.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	err = h.clientService.DeleteClient(c.Request.Context(), accountID, clientID)
	if errors.Is(err, service.ErrNotCardOwner) {
		abortWithError(c, http.StatusForbidden, err.Error())
		return
	}
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.Status(http.StatusNoContent)
}

// --- EAV rows ---

// AddAttribute creates one metric row for the card.
func (h *ClientHandler) AddAttribute(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	var req SetAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	attr, err := h.clientService.AddAttribute(c.Request.Context(), accountID, clientID, req.Slug, req.Value)
	if errors.Is(err, service.ErrAttributeExists) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "slug"})
		return
	}
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusCreated, attr)
}

// UpdateAttribute overwrites the value of an existing row.
func (h *ClientHandler) UpdateAttribute(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	var req UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	attr, err := h.clientService.UpdateAttribute(c.Request.Context(), accountID, clientID, c.Param("slug"), req.Value)
	if errors.Is(err, service.ErrAttributeNotFound) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	if handleAccessError(c, err, opWrite) {
		return
	}
	c.JSON(http.StatusOK, attr)
}

// ListAttributes lists all metric rows of the card.
func (h *ClientHandler) ListAttributes(c *gin.Context) {
	accountID, err := currentAccountID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	attrs, err := h.clientService.ListAttributes(c.Request.Context(), accountID, clientID)
	if handleAccessError(c, err, opRead) {
		return
	}
	c.JSON(http.StatusOK, attrs)
}

// MapClientToResponse converts a domain Client to its DTO.
func MapClientToResponse(client *domain.Client) ClientResponse {
	if client == nil {
		return ClientResponse{}
	}
	resp := ClientResponse{
		ID:            client.ID.Hex(),
		CoachID:       client.CoachID.Hex(),
		Name:          client.Name,
		CategorySlugs: client.CategorySlugs,
		TagSlugs:      client.TagSlugs,
		Active:        client.Active,
		CreatedAt:     client.CreatedAt,
	}
	if client.AccountID != nil {
		hex := client.AccountID.Hex()
		resp.AccountID = &hex
	}
	return resp
}
