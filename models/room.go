package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room is the persisted backing document for a class or direct-message
// stream, created lazily on first message. Its id equals the derived stream
// id, so concurrent first-contact upserts collapse into a single document.
type Room struct {
	ID            string             `json:"_id" bson:"_id"`
	Kind          string             `json:"kind" bson:"kind"` // 'dm', 'class'
	Members       []string           `json:"members,omitempty" bson:"members,omitempty"`
	ClassTag      string             `json:"classTag,omitempty" bson:"classTag,omitempty"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
	LastMessageAt primitive.DateTime `json:"lastMessageAt" bson:"lastMessageAt"`
}
