package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is the card a coach keeps for one customer. It binds the business
// side (coach, taxonomy, metrics) to the login account (User).
type Client struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID primitive.ObjectID `bson:"coachId" json:"coachId"` // The coach who owns this card

	// Login account for the client. Nullable: the card can exist before the
	// account is provisioned (e.g. created manually by an admin).
	AccountID *primitive.ObjectID `bson:"accountId,omitempty" json:"accountId,omitempty"`

	Name     string `bson:"name" json:"name"` // Display name
	PhotoKey string `bson:"photoKey,omitempty" json:"-"`

	// Taxonomy: slugs referencing the Category/Tag catalogs.
	CategorySlugs []string `bson:"categorySlugs,omitempty" json:"categorySlugs,omitempty"`
	TagSlugs      []string `bson:"tagSlugs,omitempty" json:"tagSlugs,omitempty"`

	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsLinkedTo reports whether the given account is the client's own login.
func (c *Client) IsLinkedTo(accountID primitive.ObjectID) bool {
	return c.AccountID != nil && *c.AccountID == accountID
}

// ClientAttribute is one EAV row: a value of a catalog Attribute for a
// specific client (e.g. client "Ivan" -> attribute "weight" -> "85").
// Unique per (client, attribute) pair.
type ClientAttribute struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID `bson:"clientId" json:"clientId"`
	AttributeSlug string             `bson:"attributeSlug" json:"attributeSlug"`
	Value         string             `bson:"value" json:"value"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
