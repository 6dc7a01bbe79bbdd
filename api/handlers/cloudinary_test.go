package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenova/school-connect-api/api/handlers"
	"github.com/zenova/school-connect-api/databases"
)

func TestCloudinary_UploadAvatarHandlerForbidden(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/user/u1/avatar", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u1"})
	req = principalContext(req, "other@school.test", "u2")

	db := &MockDatabaseHelper{}
	c := handlers.CloudinaryHandler{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UploadAvatarHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, `{"response": "cannot change another user's avatar, principal mismatch"}`, rr.Body.String())
	db.AssertNotCalled(t, "Collection", mock.Anything)
}

func TestCloudinary_UploadAvatarHandlerUnauthenticated(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/user/u1/avatar", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u1"})

	db := &MockDatabaseHelper{}
	c := handlers.CloudinaryHandler{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UploadAvatarHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, `{"response": "cannot change another user's avatar, principal mismatch"}`, rr.Body.String())
}
