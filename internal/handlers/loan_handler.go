package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/circulation"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/middleware"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/reporting"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/utils"
)

type LoanHandler struct {
	Store     store.Store
	Engine    *circulation.Engine
	Reporting *reporting.Service
}

func NewLoanHandler(st store.Store, engine *circulation.Engine, rep *reporting.Service) *LoanHandler {
	return &LoanHandler{Store: st, Engine: engine, Reporting: rep}
}

type IssueRequest struct {
	BookRef     string `json:"book_ref"`
	StudentName string `json:"student_name"`
	StudentID   string `json:"student_id"`
}

// POST /loans/issue
func (h *LoanHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	loan, err := h.Engine.IssueBook(r.Context(), middleware.ActorFrom(r), circulation.IssueRequest{
		BookRef:     req.BookRef,
		StudentName: req.StudentName,
		StudentID:   req.StudentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
}

// POST /loans/{id}/return
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.Engine.ReturnBook(r.Context(), middleware.ActorFrom(r), id, time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"loan":         result.Loan,
		"days_overdue": result.DaysOverdue,
		"fine":         result.Fine,
	})
}

// POST /loans/{id}/renew
func (h *LoanHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	loan, err := h.Engine.Renew(r.Context(), middleware.ActorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

// GET /loans — staff see every loan, students only their own.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r)

	if !actor.Role.Staff() {
		loans, err := h.Reporting.StudentLoans(r.Context(), actor.ID, time.Now().UTC())
		if err != nil {
			writeError(w, err)
			return
		}
		writeLoans(w, loans)
		return
	}

	if _, err := h.Engine.DetectOverdue(r.Context(), time.Now().UTC()); err != nil {
		writeError(w, err)
		return
	}

	filter := store.LoanFilter{StudentID: r.URL.Query().Get("student_id")}
	if s := r.URL.Query().Get("status"); s != "" {
		if !models.IsValidLoanStatus(s) {
			utils.JSONError(w, "Invalid status", http.StatusBadRequest)
			return
		}
		filter.Status = models.LoanStatus(s)
	}

	loans, err := h.Store.QueryLoans(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeLoans(w, loans)
}

// GET /loans/overdue
func (h *LoanHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	details, total, err := h.Reporting.OverdueFines(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"overdue":      details,
		"fine_pending": total,
	})
}

// GET /loans/fines
func (h *LoanHandler) Fines(w http.ResponseWriter, r *http.Request) {
	details, total, err := h.Reporting.OverdueFines(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"fines":         details,
		"total_pending": total,
		"total_paid":    0,
	})
}

func writeLoans(w http.ResponseWriter, loans []models.Loan) {
	if loans == nil {
		loans = []models.Loan{}
	}
	json.NewEncoder(w).Encode(loans)
}
