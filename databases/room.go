package databases

// go generate: mockery --name RoomDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zenova/school-connect-api/models"
)

const roomCollectionName = "rooms"

// RoomDatabase contains the methods to use with the room database
type RoomDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Room, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Room, error)
	EnsureRoom(ctx context.Context, room models.Room) error
	TouchLastMessage(ctx context.Context, roomID string) error
}

type roomDatabase struct {
	db DatabaseHelper
}

// NewRoomDatabase initializes a new instance of room database with the provided db connection
func NewRoomDatabase(db DatabaseHelper) RoomDatabase {
	return &roomDatabase{
		db: db,
	}
}

func (r *roomDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Room, error) {
	room := &models.Room{}
	err := r.db.Collection(roomCollectionName).FindOne(ctx, filter).Decode(room)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Room, error) {
	cursor, err := r.db.Collection(roomCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var rooms []models.Room
	if err := cursor.Decode(&rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// EnsureRoom creates the backing room document if it does not exist yet. The
// room id is a pure function of the stream, so concurrent first-contact
// upserts land on the same document and the race is benign.
func (r *roomDatabase) EnsureRoom(ctx context.Context, room models.Room) error {
	filter := bson.M{"_id": room.ID}
	update := bson.M{"$setOnInsert": bson.M{
		"kind":      room.Kind,
		"members":   room.Members,
		"classTag":  room.ClassTag,
		"createdAt": primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}
	_, err := r.db.Collection(roomCollectionName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *roomDatabase) TouchLastMessage(ctx context.Context, roomID string) error {
	filter := bson.M{"_id": roomID}
	update := bson.M{"$set": bson.M{
		"lastMessageAt": primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}
	_, err := r.db.Collection(roomCollectionName).UpdateOne(ctx, filter, update)
	return err
}
