package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/zenova/school-connect-api/api"
	"github.com/zenova/school-connect-api/api/scheduler"
	"github.com/zenova/school-connect-api/api/socket"
	"github.com/zenova/school-connect-api/config"
	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Hub       *socket.Hub
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	udb := databases.NewUserDatabase(a.dbHelper)
	gate := api.RoleGate{DB: udb}

	u := User{DB: udb, Config: a.Config}
	adm := Admin{DB: udb}
	ann := Announcement{ADB: databases.NewAnnouncementDatabase(a.dbHelper), UDB: udb}
	ch := Chat{
		MDB: databases.NewMessageDatabase(a.dbHelper),
		RDB: databases.NewRoomDatabase(a.dbHelper),
		UDB: udb,
		Hub: a.Hub,
	}
	aff := Affiliate{Code: a.Config.AffiliateCode}
	cloudinaryHandler := CloudinaryHandler{DB: udb}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/affiliate/verify", http.HandlerFunc(aff.VerifyHandler)).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/forgot-password", http.HandlerFunc(u.ForgotPasswordHandler)).Methods("POST")
	apiCreate.Handle("/user/reset-password", http.HandlerFunc(u.ResetPasswordHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}/avatar", api.Middleware(http.HandlerFunc(cloudinaryHandler.UploadAvatarHandler))).Methods("POST")
	apiCreate.Handle("/user/{user_id}/role", api.Middleware(gate.Require(models.RoleAdmin, http.HandlerFunc(adm.UpdateUserRoleHandler)))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UpdateUserByIDHandler))).Methods("PUT")

	apiCreate.Handle("/users/directory", api.Middleware(http.HandlerFunc(u.DirectoryHandler))).Methods("GET")
	apiCreate.Handle("/users", api.Middleware(gate.Require(models.RoleAdmin, http.HandlerFunc(adm.UsersHandler)))).Methods("GET")

	apiCreate.Handle("/announcements", api.Middleware(http.HandlerFunc(ann.AnnouncementsHandler))).Methods("GET")
	apiCreate.Handle("/announcements", api.Middleware(gate.Require(models.RoleAdmin, http.HandlerFunc(ann.CreateAnnouncementHandler)))).Methods("POST")
	apiCreate.Handle("/announcements/{announcement_id}", api.Middleware(gate.Require(models.RoleAdmin, http.HandlerFunc(ann.DeleteAnnouncementHandler)))).Methods("DELETE")

	apiCreate.Handle("/rooms", api.Middleware(http.HandlerFunc(ch.RoomsHandler))).Methods("GET")
	apiCreate.Handle("/chat/{channel:.*}/messages", api.Middleware(http.HandlerFunc(ch.MessagesHandler))).Methods("GET")
	apiCreate.Handle("/chat/{channel:.*}/messages", api.Middleware(http.HandlerFunc(ch.CreateMessageHandler))).Methods("POST")
	apiCreate.Handle("/chat/{channel:.*}/subscribe", api.Middleware(http.HandlerFunc(ch.SubscribeHandler))).Methods("GET")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("school-connect-api has connected to the database")

	// live subscription hub
	a.Hub = socket.NewHub()
	go a.Hub.Run()

	// background presence and token cleanup jobs
	a.Scheduler = scheduler.NewScheduler(databases.NewUserDatabase(a.dbHelper))
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
