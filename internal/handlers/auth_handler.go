package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/utils"
)

type AuthHandler struct {
	Store store.Store
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string             `json:"token"`
	Profile models.UserProfile `json:"profile"`
}

func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	profile, err := a.Store.GetProfileByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		utils.JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateJWT(profile.ID, profile.Name, string(profile.Role))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(LoginResponse{Token: token, Profile: *profile})
}
