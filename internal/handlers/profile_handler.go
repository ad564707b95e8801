package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/middleware"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/utils"
)

type ProfileHandler struct {
	Store store.Store
}

// GET /profiles?role=
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ProfileFilter{}
	if role := r.URL.Query().Get("role"); role != "" {
		if !models.IsValidRole(role) {
			utils.JSONError(w, "Invalid role", http.StatusBadRequest)
			return
		}
		filter.Role = models.Role(role)
	}

	profiles, err := h.Store.QueryProfiles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []models.UserProfile{}
	}
	json.NewEncoder(w).Encode(profiles)
}

// GET /profiles/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r)

	profile, err := h.Store.GetProfile(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(profile)
}

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// POST /profiles — admin only.
func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	if middleware.ActorFrom(r).Role != models.RoleAdmin {
		utils.JSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		utils.JSONError(w, "Name and email are required", http.StatusBadRequest)
		return
	}
	if !models.IsValidRole(req.Role) {
		utils.JSONError(w, "Invalid role", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		utils.JSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.Store.InsertProfile(r.Context(), models.UserProfile{
		Name:         req.Name,
		Email:        req.Email,
		Role:         models.Role(req.Role),
		Department:   req.Department,
		JoinDate:     time.Now().UTC(),
		PasswordHash: string(hash),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profile)
}
