package api

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/models"
)

// RoleGate permits or denies gated routes based on the caller's profile role.
// The profile is re-read on every request rather than cached: an admin may be
// demoted while active and the gate must reflect the latest snapshot.
type RoleGate struct {
	DB databases.UserDatabase
}

// Require wraps next so it only runs when the authenticated principal's
// profile currently holds the given role. Must sit inside Middleware so the
// principal is present on the context.
func (g RoleGate) Require(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := Principal(r.Context())
		if info == nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		ctx, cancel := WithQueryTimeout(r.Context())
		defer cancel()

		user, err := g.DB.FindOne(ctx, bson.M{"_id": info.ID()})
		if err != nil {
			// a principal with no profile document is treated as a default
			// student, which fails any elevated-role gate
			user = &models.User{ID: info.ID(), Role: models.RoleStudent}
		}

		if !user.HasRole(role) {
			zap.S().Warnw("role gate denied",
				"user", info.ID(),
				"role", user.Role,
				"required", role,
				"url", r.URL.Path)
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "forbidden"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
