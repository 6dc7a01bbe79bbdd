package databases

// go generate: mockery --name MessageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zenova/school-connect-api/models"
)

const messageCollectionName = "messages"

// MessageDatabase contains the methods to use with the message database
type MessageDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Message, error)
	InsertOne(ctx context.Context, message models.Message) (interface{}, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type messageDatabase struct {
	db DatabaseHelper
}

// NewMessageDatabase initializes a new instance of message database with the provided db connection
func NewMessageDatabase(db DatabaseHelper) MessageDatabase {
	return &messageDatabase{
		db: db,
	}
}

func (m *messageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Message, error) {
	cursor, err := m.db.Collection(messageCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	if err := cursor.Decode(&messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (m *messageDatabase) InsertOne(ctx context.Context, message models.Message) (interface{}, error) {
	res, err := m.db.Collection(messageCollectionName).InsertOne(ctx, message)
	if err != nil {
		return nil, err
	}
	return res.Decode(), nil
}

func (m *messageDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return m.db.Collection(messageCollectionName).CountDocuments(ctx, filter, opts...)
}
