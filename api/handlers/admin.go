package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/zenova/school-connect-api/api"
	"github.com/zenova/school-connect-api/config"
	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/models"
)

// Admin handles the admin console's user management. Every route here sits
// behind the admin role gate.
type Admin struct {
	DB databases.UserDatabase
}

// UsersHandler returns all profiles, optionally filtered by role
func (a Admin) UsersHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		if !models.ValidRole(role) {
			config.ErrorStatus("unknown role filter", http.StatusBadRequest, w, fmt.Errorf("role %q", role))
			return
		}
		filter["role"] = role
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := a.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusInternalServerError, w, err)
		return
	}
	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.User{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateUserRoleHandler sets a user's role. Subsequent reads of the profile
// reflect the new role immediately; the role gate re-reads on every request
// so there is no stale grant to invalidate.
func (a Admin) UpdateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req models.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if !models.ValidRole(req.Role) {
		config.ErrorStatus("unknown role", http.StatusBadRequest, w, fmt.Errorf("role %q", req.Role))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	update := bson.M{"$set": bson.M{
		"role":      req.Role,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}
	res, err := a.DB.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		config.ErrorStatus("failed to update role", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, fmt.Errorf("no matching user"))
		return
	}

	zap.S().Infow("role updated",
		"user", userID,
		"role", req.Role)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"_id": "%s", "role": "%s"}`, userID, req.Role)))
}
