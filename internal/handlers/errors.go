package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/circulation"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/utils"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Store
// failures are logged server-side and rendered as a generic message.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *circulation.ValidationError
		permission *circulation.PermissionError
		state      *circulation.StateError
		conflict   *circulation.ConflictError
		limit      *circulation.LimitExceededError
	)
	switch {
	case errors.As(err, &validation):
		utils.JSONError(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &permission):
		utils.JSONError(w, permission.Error(), http.StatusForbidden)
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, "Record not found", http.StatusNotFound)
	case errors.As(err, &state):
		utils.JSONError(w, state.Error(), http.StatusConflict)
	case errors.As(err, &conflict):
		utils.JSONError(w, conflict.Error(), http.StatusConflict)
	case errors.As(err, &limit):
		utils.JSONError(w, limit.Error(), http.StatusUnprocessableEntity)
	default:
		log.Error().Err(err).Msg("request failed")
		utils.JSONError(w, "Operation failed", http.StatusInternalServerError)
	}
}
