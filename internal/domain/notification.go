package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationCategory tells the client app which icon/section to use.
type NotificationCategory string

const (
	NotifyWorkout NotificationCategory = "workout" // New session scheduled
	NotifyMessage NotificationCategory = "message" // New chat comment
)

// EntityKind tags the linked entity on a notification. The consumer maps
// kind -> resource path explicitly; there is no reflective lookup.
type EntityKind string

const (
	EntitySession EntityKind = "session"
	EntityClient  EntityKind = "client"
)

// EntityRef points at the object the notification is about, so the client
// app knows where to navigate on tap.
type EntityRef struct {
	Kind EntityKind         `bson:"kind" json:"kind"`
	ID   primitive.ObjectID `bson:"id" json:"id"`
}

// Notification is addressed to exactly one account and is only ever
// created as a side effect of another write, never directly by a user.
type Notification struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID   `bson:"recipientId" json:"recipientId"`
	Category    NotificationCategory `bson:"category" json:"category"`
	Title       string               `bson:"title" json:"title"`
	Message     string               `bson:"message" json:"message"`
	Entity      *EntityRef           `bson:"entity,omitempty" json:"entity,omitempty"`
	Read        bool                 `bson:"read" json:"read"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}
