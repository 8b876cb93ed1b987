package domain

// Reference catalogs: flat slug-keyed lookup rows maintained by the coach.
// These are referenced by Client cards, never owned by them.

// Category groups clients by program (e.g. "fat-loss", "bulking", "rehab").
type Category struct {
	Slug        string `bson:"_id" json:"slug"` // Slug is the primary key
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	IconKey     string `bson:"iconKey,omitempty" json:"-"` // SVG/PNG in blob storage
}

// Tag is a quick marker on a client card (e.g. "vip", "overdue", "injured").
type Tag struct {
	Slug    string `bson:"_id" json:"slug"`
	Name    string `bson:"name" json:"name"`
	Color   string `bson:"color" json:"color"` // HEX, for the UI
	IconKey string `bson:"iconKey,omitempty" json:"-"`
}

// AttributeType constrains how an attribute value should be interpreted.
type AttributeType string

const (
	AttributeText    AttributeType = "text"
	AttributeNumber  AttributeType = "number"
	AttributeDate    AttributeType = "date"
	AttributeBoolean AttributeType = "boolean"
)

// Attribute is a metric definition for the EAV rows on a client card
// (e.g. "weight", "waist", "bench_press").
type Attribute struct {
	Slug    string        `bson:"_id" json:"slug"`
	Name    string        `bson:"name" json:"name"`
	Type    AttributeType `bson:"type" json:"type"`
	IconKey string        `bson:"iconKey,omitempty" json:"-"`
}
