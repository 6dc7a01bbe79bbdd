package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zenova/school-connect-api/config"
)

// Affiliate exported for testing purposes
type Affiliate struct {
	Code string
}

type affiliateVerifyRequest struct {
	Code string `json:"code"`
}

// VerifyHandler checks a submitted affiliation code against the one
// configured for this school. Signup is gated on this check.
func (a Affiliate) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req affiliateVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Code), []byte(a.Code)) != 1 {
		config.ErrorStatus("invalid affiliation code", http.StatusUnauthorized, w, fmt.Errorf("affiliation code rejected"))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{"valid": true})
}
