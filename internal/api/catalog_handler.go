package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service dependency.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- Request Structs ---

type CreateCategoryRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateTagRequest struct {
	Slug  string `json:"slug" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type CreateAttributeRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
}

// --- Categories ---

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), domain.Category{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
	})
	if handleCatalogError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if handleCatalogError(c, h.catalogService.DeleteCategory(c.Request.Context(), c.Param("slug"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tags ---

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	tag, err := h.catalogService.CreateTag(c.Request.Context(), domain.Tag{
		Slug:  req.Slug,
		Name:  req.Name,
		Color: req.Color,
	})
	if handleCatalogError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	if handleCatalogError(c, h.catalogService.DeleteTag(c.Request.Context(), c.Param("slug"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Attributes ---

func (h *CatalogHandler) CreateAttribute(c *gin.Context) {
	var req CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	attribute, err := h.catalogService.CreateAttribute(c.Request.Context(), domain.Attribute{
		Slug: req.Slug,
		Name: req.Name,
		Type: domain.AttributeType(req.Type),
	})
	if handleCatalogError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, attribute)
}

func (h *CatalogHandler) ListAttributes(c *gin.Context) {
	attributes, err := h.catalogService.ListAttributes(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list attributes")
		return
	}
	c.JSON(http.StatusOK, attributes)
}

func (h *CatalogHandler) DeleteAttribute(c *gin.Context) {
	if handleCatalogError(c, h.catalogService.DeleteAttribute(c.Request.Context(), c.Param("slug"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// handleCatalogError maps catalog service errors onto HTTP statuses.
// Returns true when the error was handled and the request aborted.
func handleCatalogError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrSlugTaken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "slug"})
	case errors.Is(err, service.ErrInvalidSlug):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "slug"})
	case errors.Is(err, service.ErrCatalogNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
	return true
}
