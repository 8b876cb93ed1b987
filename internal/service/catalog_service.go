package service

import (
	"context"
	"errors"
	"regexp"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSlugTaken       = errors.New("slug is already in use")
	ErrInvalidSlug     = errors.New("slug must be lowercase letters, digits, '-' or '_'")
	ErrCatalogNotFound = errors.New("catalog entry not found")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// CatalogService maintains the three slug-keyed reference catalogs.
// Plain CRUD, no behavior beyond slug validation and uniqueness.
type CatalogService interface {
	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, slug string) error

	CreateTag(ctx context.Context, t domain.Tag) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	DeleteTag(ctx context.Context, slug string) error

	CreateAttribute(ctx context.Context, a domain.Attribute) (*domain.Attribute, error)
	ListAttributes(ctx context.Context) ([]domain.Attribute, error)
	DeleteAttribute(ctx context.Context, slug string) error
}

type catalogService struct {
	repo repository.CatalogRepository
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error) {
	if err := validateSlug(c.Slug); err != nil {
		return nil, err
	}
	if c.Name == "" {
		return nil, errors.New("category name is required")
	}
	if err := s.repo.CreateCategory(ctx, &c); err != nil {
		return nil, mapCatalogError(err)
	}
	return &c, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *catalogService) DeleteCategory(ctx context.Context, slug string) error {
	return mapCatalogError(s.repo.DeleteCategory(ctx, slug))
}

func (s *catalogService) CreateTag(ctx context.Context, t domain.Tag) (*domain.Tag, error) {
	if err := validateSlug(t.Slug); err != nil {
		return nil, err
	}
	if t.Name == "" {
		return nil, errors.New("tag name is required")
	}
	if t.Color == "" {
		t.Color = "#808080"
	}
	if err := s.repo.CreateTag(ctx, &t); err != nil {
		return nil, mapCatalogError(err)
	}
	return &t, nil
}

func (s *catalogService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *catalogService) DeleteTag(ctx context.Context, slug string) error {
	return mapCatalogError(s.repo.DeleteTag(ctx, slug))
}

func (s *catalogService) CreateAttribute(ctx context.Context, a domain.Attribute) (*domain.Attribute, error) {
	if err := validateSlug(a.Slug); err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, errors.New("attribute name is required")
	}
	if a.Type == "" {
		a.Type = domain.AttributeText
	}
	switch a.Type {
	case domain.AttributeText, domain.AttributeNumber, domain.AttributeDate, domain.AttributeBoolean:
	default:
		return nil, errors.New("unknown attribute type")
	}
	if err := s.repo.CreateAttribute(ctx, &a); err != nil {
		return nil, mapCatalogError(err)
	}
	return &a, nil
}

func (s *catalogService) ListAttributes(ctx context.Context) ([]domain.Attribute, error) {
	return s.repo.ListAttributes(ctx)
}

func (s *catalogService) DeleteAttribute(ctx context.Context, slug string) error {
	return mapCatalogError(s.repo.DeleteAttribute(ctx, slug))
}

func validateSlug(slug string) error {
	if slug == "" || !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

func mapCatalogError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return ErrSlugTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrCatalogNotFound
	}
	return err
}
