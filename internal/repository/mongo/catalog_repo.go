package mongo

import (
	"context"
	"errors"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	categoryCollectionName  = "categories"
	tagCollectionName       = "tags"
	attributeCollectionName = "attributes"
)

// mongoCatalogRepository implements repository.CatalogRepository. The
// three catalogs use the slug as _id, so slug uniqueness comes for free.
type mongoCatalogRepository struct {
	categories *mongo.Collection
	tags       *mongo.Collection
	attributes *mongo.Collection
}

// NewMongoCatalogRepository creates a new instance of mongoCatalogRepository.
func NewMongoCatalogRepository(db *mongo.Database) repository.CatalogRepository {
	return &mongoCatalogRepository{
		categories: db.Collection(categoryCollectionName),
		tags:       db.Collection(tagCollectionName),
		attributes: db.Collection(attributeCollectionName),
	}
}

// --- Categories ---

func (r *mongoCatalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return insertSlugged(ctx, r.categories, c, c.Slug)
}

func (r *mongoCatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	return out, listAll(ctx, r.categories, &out)
}

func (r *mongoCatalogRepository) DeleteCategory(ctx context.Context, slug string) error {
	return deleteSlugged(ctx, r.categories, slug)
}

// --- Tags ---

func (r *mongoCatalogRepository) CreateTag(ctx context.Context, t *domain.Tag) error {
	return insertSlugged(ctx, r.tags, t, t.Slug)
}

func (r *mongoCatalogRepository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	out := []domain.Tag{}
	return out, listAll(ctx, r.tags, &out)
}

func (r *mongoCatalogRepository) DeleteTag(ctx context.Context, slug string) error {
	return deleteSlugged(ctx, r.tags, slug)
}

// --- Attributes ---

func (r *mongoCatalogRepository) CreateAttribute(ctx context.Context, a *domain.Attribute) error {
	if a.Type == "" {
		a.Type = domain.AttributeText
	}
	return insertSlugged(ctx, r.attributes, a, a.Slug)
}

func (r *mongoCatalogRepository) ListAttributes(ctx context.Context) ([]domain.Attribute, error) {
	out := []domain.Attribute{}
	return out, listAll(ctx, r.attributes, &out)
}

func (r *mongoCatalogRepository) DeleteAttribute(ctx context.Context, slug string) error {
	return deleteSlugged(ctx, r.attributes, slug)
}

// --- shared helpers ---

func insertSlugged(ctx context.Context, collection *mongo.Collection, doc interface{}, slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if _, err := collection.InsertOne(ctx, doc); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func listAll(ctx context.Context, collection *mongo.Collection, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func deleteSlugged(ctx context.Context, collection *mongo.Collection, slug string) error {
	result, err := collection.DeleteOne(ctx, bson.M{"_id": slug})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
