package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the session lifecycle
type SessionStatus string

const (
	StatusPlanned   SessionStatus = "planned"
	StatusCompleted SessionStatus = "completed" // Client marked the work done
	StatusReviewed  SessionStatus = "reviewed"  // Coach looked at the result
	StatusMissed    SessionStatus = "missed"
	StatusCancelled SessionStatus = "cancelled"
)

// ValidSessionStatus reports whether s is one of the known lifecycle states.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusReviewed, StatusMissed, StatusCancelled:
		return true
	}
	return false
}

// Session is the basic unit of work: one scheduled training/check-in owned
// by a Client card. Visibility is derived from the card, there is no
// independent ownership field here.
type Session struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID primitive.ObjectID `bson:"clientId" json:"clientId"`

	Title          string `bson:"title" json:"title"`
	Description    string `bson:"description,omitempty" json:"description,omitempty"`       // Plan / task text
	ClientFeedback string `bson:"clientFeedback,omitempty" json:"clientFeedback,omitempty"` // Quick report without the chat
	AttachmentKey  string `bson:"attachmentKey,omitempty" json:"-"`                         // e.g. a program PDF

	ScheduledAt time.Time     `bson:"scheduledAt" json:"scheduledAt"`
	Status      SessionStatus `bson:"status" json:"status"`

	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"` // Either party may create a session
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Comment is one chat message inside a session thread. Authored by either
// the coach or the session's client; ordered by creation time ascending.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`

	Text          string `bson:"text" json:"text"`
	AttachmentKey string `bson:"attachmentKey,omitempty" json:"-"`

	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
