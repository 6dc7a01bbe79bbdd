package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenova/school-connect-api/api/handlers"
	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/databases/mocks"
	"github.com/zenova/school-connect-api/models"
)

func announcementMocks() (handlers.Announcement, *mocks.CollectionHelper, *mocks.CollectionHelper) {
	db := &MockDatabaseHelper{}
	announcements := &mocks.CollectionHelper{}
	users := &mocks.CollectionHelper{}

	db.On("Collection", "announcements").Return(announcements)
	db.On("Collection", "users").Return(users)

	a := handlers.Announcement{
		ADB: databases.NewAnnouncementDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}
	return a, announcements, users
}

func TestAnnouncement_AnnouncementsHandler(t *testing.T) {
	a, announcements, _ := announcementMocks()

	cursorHelper := &mocks.CursorHelper{}
	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Announcement)
		*arg = []models.Announcement{
			{ID: "a1", Title: "Sports Day", Description: "Friday on the big field", Author: "Head Admin"},
		}
	})
	announcements.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	announcements.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	req, err := http.NewRequest("GET", "/api/v1/announcements", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.AnnouncementsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title":"Sports Day"`)
	assert.Contains(t, rr.Body.String(), `"currentPage":1`)
	assert.Contains(t, rr.Body.String(), `"totalPages":1`)
	assert.Contains(t, rr.Body.String(), `"hasNextPage":false`)
}

func TestAnnouncement_CreateAnnouncementHandlerMissingFields(t *testing.T) {
	a, announcements, _ := announcementMocks()

	req, err := http.NewRequest("POST", "/api/v1/announcements", strings.NewReader(`{"title": "  ", "description": "x"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = principalContext(req, "admin@school.test", "a1")

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.CreateAnnouncementHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "title and description are required, missing fields"}`, rr.Body.String())
	announcements.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAnnouncement_CreateAnnouncementHandler(t *testing.T) {
	a, announcements, users := announcementMocks()

	singleResultHelper := &mocks.SingleResultHelper{}
	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.User)
		arg.ID = "a1"
		arg.DisplayName = "Head Admin"
		arg.Role = models.RoleAdmin
	})
	users.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)

	insertOneResultHelper := &mocks.InsertOneResultHelper{}
	insertOneResultHelper.On("Decode").Return("inserted-id")
	announcements.On("InsertOne", mock.Anything, mock.Anything).Return(insertOneResultHelper, nil)

	body := `{"title": "Sports Day", "description": "Friday on the big field"}`
	req, err := http.NewRequest("POST", "/api/v1/announcements", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = principalContext(req, "admin@school.test", "a1")

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.CreateAnnouncementHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title":"Sports Day"`)
	assert.Contains(t, rr.Body.String(), `"author":"Head Admin"`)
	announcements.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAnnouncement_DeleteAnnouncementHandlerNotFound(t *testing.T) {
	a, announcements, _ := announcementMocks()

	announcements.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), nil)

	req, err := http.NewRequest("DELETE", "/api/v1/announcements/a9", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"announcement_id": "a9"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.DeleteAnnouncementHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"response": "announcement not found, no matching announcement"}`, rr.Body.String())
}

func TestAnnouncement_DeleteAnnouncementHandler(t *testing.T) {
	a, announcements, _ := announcementMocks()

	announcements.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil)

	req, err := http.NewRequest("DELETE", "/api/v1/announcements/a1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"announcement_id": "a1"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.DeleteAnnouncementHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"deleted": true}`, rr.Body.String())
}
