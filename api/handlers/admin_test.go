package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zenova/school-connect-api/api/handlers"
	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/databases/mocks"
	"github.com/zenova/school-connect-api/models"
)

func TestAdmin_UsersHandlerUnknownRoleFilter(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/users?role=principal", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	a := handlers.Admin{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.UsersHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "unknown role filter, role "principal""}`, rr.Body.String())
}

func TestAdmin_UsersHandlerRoleFilter(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/users?role=teacher", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.User)
		*arg = []models.User{
			{ID: "t1", DisplayName: "Ms. Frizzle", Role: models.RoleTeacher},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "users").Return(conn)

	a := handlers.Admin{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.UsersHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"displayName":"Ms. Frizzle"`)
	assert.Contains(t, rr.Body.String(), `"role":"teacher"`)
}

func TestAdmin_UsersHandlerEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/users", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "users").Return(conn)

	a := handlers.Admin{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.UsersHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestAdmin_UpdateUserRoleHandlerUnknownRole(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/user/u2/role", strings.NewReader(`{"role": "principal"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u2"})

	db := &MockDatabaseHelper{}
	a := handlers.Admin{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.UpdateUserRoleHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "unknown role, role "principal""}`, rr.Body.String())
}

func TestAdmin_UpdateUserRoleHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/user/u9/role", strings.NewReader(`{"role": "teacher"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u9"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0}, nil)
	db.On("Collection", "users").Return(conn)

	a := handlers.Admin{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.UpdateUserRoleHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"response": "failed to get user by ID, no matching user"}`, rr.Body.String())
}

func TestAdmin_UpdateUserRoleHandler(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/user/u2/role", strings.NewReader(`{"role": "teacher"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u2"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	db.On("Collection", "users").Return(conn)

	a := handlers.Admin{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.UpdateUserRoleHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"_id": "u2", "role": "teacher"}`, rr.Body.String())
}
