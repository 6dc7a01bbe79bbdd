package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zenova/school-connect-api/api"
	"github.com/zenova/school-connect-api/config"
	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/models"
	templates "github.com/zenova/school-connect-api/templates/html"
)

const (
	minClass = 1
	maxClass = 12

	resetTokenTTL = time.Hour
)

// User exported for testing purposes
type User struct {
	DB     databases.UserDatabase
	Config config.Config
}

// UserCreateHandler creates a user. Signup is gated by the school affiliation
// code; every new account starts as a student and the class chosen here is
// fixed for the lifetime of the profile.
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req models.CreateUserRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if req.AffiliateCode != u.Config.AffiliateCode {
		config.ErrorStatus("invalid affiliation code", http.StatusUnauthorized, w, fmt.Errorf("affiliation code rejected"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || req.Password == "" {
		config.ErrorStatus("email and password are required", http.StatusBadRequest, w, fmt.Errorf("missing credentials"))
		return
	}
	if req.DisplayName == "" {
		config.ErrorStatus("full name is required", http.StatusBadRequest, w, fmt.Errorf("missing display name"))
		return
	}
	if req.Class < minClass || req.Class > maxClass {
		config.ErrorStatus("a valid class is required", http.StatusBadRequest, w, fmt.Errorf("class out of range"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// check if the user already exists
	existingUser, _ := u.DB.FindOne(ctx, bson.M{"email": req.Email})
	if existingUser != nil {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	// hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	user := models.User{
		ID:          uuid.New().String(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        models.RoleStudent,
		Class:       req.Class,
		Password:    string(hashedPassword),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := u.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UserHandler returns a user given a userID. A principal whose own profile
// document is missing gets a synthesized default student profile instead of
// an error, so a half-finished signup still resolves to a usable identity.
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: %v", userID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		info := api.Principal(r.Context())
		if info == nil || info.ID() != userID {
			config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
			return
		}
		dbResp = defaultProfile(userID, info.UserName())
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateUserByIDHandler edits the caller's own profile. Display name is
// self-service; class is fixed after signup and any attempt to change it is
// rejected here, not just hidden in the surface.
func (u User) UpdateUserByIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	info := api.Principal(r.Context())
	if info == nil || info.ID() != userID {
		config.ErrorStatus("profiles are self-service", http.StatusForbidden, w, fmt.Errorf("principal mismatch"))
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		config.ErrorStatus("display name is required", http.StatusBadRequest, w, fmt.Errorf("missing display name"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	if req.Class != nil && *req.Class != existing.Class {
		config.ErrorStatus("class is fixed after signup", http.StatusConflict, w, fmt.Errorf("class is immutable"))
		return
	}

	update := bson.M{"$set": bson.M{
		"displayName": req.DisplayName,
		"updatedAt":   primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}
	if _, err := u.DB.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}

	existing.DisplayName = req.DisplayName
	b, err := json.Marshal(existing)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DirectoryHandler lists every other user's public profile. Any authenticated
// caller can browse the directory to pick a direct-message partner; the full
// admin listing stays behind the role gate.
func (u User) DirectoryHandler(w http.ResponseWriter, r *http.Request) {
	info := api.Principal(r.Context())
	if info == nil {
		config.ErrorStatus("failed to resolve principal", http.StatusUnauthorized, w, fmt.Errorf("no authenticated principal"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := u.DB.Find(ctx, bson.M{"_id": bson.M{"$ne": info.ID()}})
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusInternalServerError, w, err)
		return
	}

	directory := make([]models.UserSummary, 0, len(users))
	for _, user := range users {
		directory = append(directory, user.Summary())
	}

	b, err := json.Marshal(directory)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ForgotPasswordHandler issues a signed, single-use reset token and mails a
// reset link. The response is the same whether or not the email exists.
func (u User) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"email": email})
	if err == nil {
		token, err := u.issueResetToken(ctx, user)
		if err != nil {
			config.ErrorStatus("failed to issue reset token", http.StatusInternalServerError, w, err)
			return
		}
		if err := u.sendResetEmail(user, token); err != nil {
			zap.S().Errorw("failed to send reset email",
				"user", user.ID,
				"error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"response": "if that email exists, a reset link has been sent"}`))
}

func (u User) issueResetToken(ctx context.Context, user *models.User) (string, error) {
	expiry := time.Now().UTC().Add(resetTokenTTL)
	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": jwt.NewNumericDate(expiry),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(u.Config.JWTSecret))
	if err != nil {
		return "", err
	}

	// store a hash of the token so it is single-use; the scheduler clears
	// expired hashes
	digest := sha256.Sum256([]byte(token))
	update := bson.M{"$set": bson.M{
		"resetPasswordToken":   hex.EncodeToString(digest[:]),
		"resetPasswordExpires": primitive.NewDateTimeFromTime(expiry),
	}}
	if _, err := u.DB.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		return "", err
	}
	return token, nil
}

func (u User) sendResetEmail(user *models.User, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", u.Config.BaseURL, token)
	body := fmt.Sprintf("Hi %s,\n\nA password reset was requested for your account. The link below is valid for one hour.\n\n%s\n\nIf you did not request this, you can ignore this email.", user.DisplayName, resetURL)

	from := mail.NewEmail("School Connect", os.Getenv("SENDGRID_FROM_EMAIL"))
	to := mail.NewEmail(user.DisplayName, user.Email)
	subject := "Reset your School Connect password"
	message := mail.NewSingleEmail(from, subject, to, body, templates.RenderGenericEmail(subject, body))

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// ResetPasswordHandler validates a reset token and sets the new password
func (u User) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Password == "" {
		config.ErrorStatus("password is required", http.StatusBadRequest, w, fmt.Errorf("missing password"))
		return
	}

	parsed, err := jwt.Parse(req.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(u.Config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		config.ErrorStatus("invalid or expired reset token", http.StatusUnauthorized, w, err)
		return
	}
	userID, err := parsed.Claims.GetSubject()
	if err != nil || userID == "" {
		config.ErrorStatus("invalid reset token subject", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	digest := sha256.Sum256([]byte(req.Token))
	if user.ResetPasswordToken == "" || user.ResetPasswordToken != hex.EncodeToString(digest[:]) {
		config.ErrorStatus("reset token already used", http.StatusUnauthorized, w, fmt.Errorf("token hash mismatch"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	update := bson.M{
		"$set": bson.M{
			"password":  string(hashedPassword),
			"updatedAt": primitive.NewDateTimeFromTime(time.Now().UTC()),
		},
		"$unset": bson.M{
			"resetPasswordToken":   "",
			"resetPasswordExpires": "",
		},
	}
	if _, err := u.DB.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		config.ErrorStatus("failed to update password", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"response": "password updated"}`))
}

// defaultProfile synthesizes a student profile for a principal whose profile
// document is missing
func defaultProfile(id, email string) *models.User {
	name := email
	if i := strings.Index(email, "@"); i > 0 {
		name = email[:i]
	}
	return &models.User{
		ID:          id,
		Email:       email,
		DisplayName: name,
		Role:        models.RoleStudent,
	}
}
