package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/reporting"
)

type DashboardHandler struct {
	Reporting *reporting.Service
}

// GET /dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	stats, err := h.Reporting.Stats(r.Context(), now)
	if err != nil {
		writeError(w, err)
		return
	}

	monthly, err := h.Reporting.MonthlyIssues(r.Context(), now, 6)
	if err != nil {
		writeError(w, err)
		return
	}

	categories, err := h.Reporting.CategoryCounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"stats":      stats,
		"monthly":    monthly,
		"categories": categories,
	})
}
