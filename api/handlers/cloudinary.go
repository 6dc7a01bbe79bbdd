package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	capi "github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/zenova/school-connect-api/api"
	"github.com/zenova/school-connect-api/config"
	"github.com/zenova/school-connect-api/databases"
)

const maxAvatarBytes = 5 << 20

// CloudinaryHandler handles Cloudinary related requests
type CloudinaryHandler struct {
	DB databases.UserDatabase
}

// GenerateSignature generates a signature for Cloudinary uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	// Create the signature
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	// Respond with the timestamp and signature
	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UploadAvatarHandler accepts a multipart image upload, pushes it to
// Cloudinary and stores the resulting URL on the caller's profile.
// Users can only change their own avatar.
func (c CloudinaryHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	principal := api.Principal(r.Context())
	if principal == nil || principal.ID() != userID {
		config.ErrorStatus("cannot change another user's avatar", http.StatusForbidden, w, fmt.Errorf("principal mismatch"))
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		config.ErrorStatus("failed to parse upload", http.StatusBadRequest, w, err)
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		config.ErrorStatus("avatar file is required", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		config.ErrorStatus("failed to init cloudinary", http.StatusInternalServerError, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  userID,
		Folder:    "avatars",
		Overwrite: capi.Bool(true),
	})
	if err != nil {
		config.ErrorStatus("failed to upload avatar", http.StatusInternalServerError, w, err)
		return
	}

	_, err = c.DB.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"avatarURL": resp.SecureURL, "updatedAt": time.Now()}},
	)
	if err != nil {
		config.ErrorStatus("failed to save avatar url", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"avatarURL": resp.SecureURL})
}
