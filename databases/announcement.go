package databases

// go generate: mockery --name AnnouncementDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zenova/school-connect-api/models"
)

const announcementCollectionName = "announcements"

// AnnouncementDatabase contains the methods to use with the announcement database
type AnnouncementDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Announcement, error)
	InsertOne(ctx context.Context, announcement models.Announcement) (interface{}, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type announcementDatabase struct {
	db DatabaseHelper
}

// NewAnnouncementDatabase initializes a new instance of announcement database with the provided db connection
func NewAnnouncementDatabase(db DatabaseHelper) AnnouncementDatabase {
	return &announcementDatabase{
		db: db,
	}
}

func (a *announcementDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Announcement, error) {
	cursor, err := a.db.Collection(announcementCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var announcements []models.Announcement
	if err := cursor.Decode(&announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (a *announcementDatabase) InsertOne(ctx context.Context, announcement models.Announcement) (interface{}, error) {
	res, err := a.db.Collection(announcementCollectionName).InsertOne(ctx, announcement)
	if err != nil {
		return nil, err
	}
	return res.Decode(), nil
}

func (a *announcementDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return a.db.Collection(announcementCollectionName).DeleteOne(ctx, filter, opts...)
}

func (a *announcementDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(announcementCollectionName).CountDocuments(ctx, filter, opts...)
}
