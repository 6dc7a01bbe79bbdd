package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message holds the structure for the message collection in mongo. Messages
// are immutable once written; sentAt is assigned by the server at write time,
// never by the client.
type Message struct {
	ID              string             `json:"_id" bson:"_id"`
	Stream          string             `json:"stream" bson:"stream"`
	Text            string             `json:"text" bson:"text"`
	SenderID        string             `json:"senderId" bson:"senderId"`
	SenderName      string             `json:"senderName" bson:"senderName"`
	SenderAvatarURL string             `json:"senderAvatarURL,omitempty" bson:"senderAvatarURL,omitempty"`
	SentAt          primitive.DateTime `json:"sentAt" bson:"sentAt"`
}

// CreateMessageRequest holds the structure for the append request body
type CreateMessageRequest struct {
	Text string `json:"text"`
}
