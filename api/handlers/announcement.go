package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/zenova/school-connect-api/api"
	"github.com/zenova/school-connect-api/config"
	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/models"
)

// Announcement struct for handling announcement operations
type Announcement struct {
	ADB databases.AnnouncementDatabase
	UDB databases.UserDatabase
}

// AnnouncementsHandler returns paginated announcements, newest first
func (a Announcement) AnnouncementsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.PaginatedOpts(limit, page).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	announcements, err := a.ADB.Find(ctx, bson.M{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get announcements", http.StatusInternalServerError, w, err)
		return
	}
	if len(announcements) == 0 {
		announcements = []models.Announcement{}
	}

	totalCount, err := a.ADB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to count announcements", http.StatusInternalServerError, w, err)
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))
	response := models.PaginatedAnnouncementsResponse{
		Announcements: announcements,
		Pagination: models.PaginationInfo{
			CurrentPage: page,
			TotalPages:  totalPages,
			Total:       int(totalCount),
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}

	b, err := json.Marshal(response)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateAnnouncementHandler posts a new school-wide announcement. Admin only;
// the author line is the caller's current display name.
func (a Announcement) CreateAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		config.ErrorStatus("title and description are required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	info := api.Principal(r.Context())
	if info == nil {
		config.ErrorStatus("failed to resolve principal", http.StatusUnauthorized, w, fmt.Errorf("no authenticated principal"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	author := "Admin"
	if user, err := a.UDB.FindOne(ctx, bson.M{"_id": info.ID()}); err == nil && user.DisplayName != "" {
		author = user.DisplayName
	}

	announcement := models.Announcement{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Author:      author,
		AuthorID:    info.ID(),
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now().UTC()),
	}

	if _, err := a.ADB.InsertOne(ctx, announcement); err != nil {
		config.ErrorStatus("failed to insert announcement", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(announcement)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// DeleteAnnouncementHandler removes an announcement by id. Admin only.
func (a Announcement) DeleteAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	announcementID := mux.Vars(r)["announcement_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := a.ADB.DeleteOne(ctx, bson.M{"_id": announcementID})
	if err != nil {
		config.ErrorStatus("failed to delete announcement", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("announcement not found", http.StatusNotFound, w, fmt.Errorf("no matching announcement"))
		return
	}

	zap.S().Infow("announcement deleted", "announcement", announcementID)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}
