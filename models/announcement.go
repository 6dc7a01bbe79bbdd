package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement holds the structure for the announcement collection in mongo.
// Created by admin action, deletable by admin action, otherwise immutable.
type Announcement struct {
	ID          string             `json:"_id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Author      string             `json:"author" bson:"author"`
	AuthorID    string             `json:"authorId" bson:"authorId"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// CreateAnnouncementRequest holds the structure for creating a new announcement
type CreateAnnouncementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PaginatedAnnouncementsResponse holds the structure for paginated announcements
type PaginatedAnnouncementsResponse struct {
	Announcements []Announcement `json:"announcements"`
	Pagination    PaginationInfo `json:"pagination"`
}

// PaginationInfo holds pagination metadata
type PaginationInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}
