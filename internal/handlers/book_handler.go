package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/catalog"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/middleware"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/reporting"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/utils"
)

type BookHandler struct {
	Store     store.Store
	Catalog   *catalog.Service
	Reporting *reporting.Service
}

func NewBookHandler(st store.Store, cat *catalog.Service, rep *reporting.Service) *BookHandler {
	return &BookHandler{Store: st, Catalog: cat, Reporting: rep}
}

// POST /books
func (h *BookHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.Catalog.AddBook(r.Context(), middleware.ActorFrom(r), book)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GET /books?q=&category=&availability=
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.BookFilter{
		Search:   q.Get("q"),
		Category: q.Get("category"),
	}

	books, err := h.Reporting.SearchBooks(r.Context(), filter, q.Get("availability"))
	if err != nil {
		writeError(w, err)
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	json.NewEncoder(w).Encode(books)
}

// GET /books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	book, err := h.Store.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(book)
}

// PUT /books/{id}
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch bookPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	updated, err := h.Catalog.UpdateBook(r.Context(), middleware.ActorFrom(r), id, patch.toPatch())
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(updated)
}

// DELETE /books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Catalog.DeleteBook(r.Context(), middleware.ActorFrom(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bookPatchRequest mirrors store.BookPatch for the wire: absent fields stay
// nil and are left untouched.
type bookPatchRequest struct {
	Title             *string  `json:"title"`
	SubTitle          *string  `json:"sub_title"`
	Author            *string  `json:"author"`
	Author2           *string  `json:"author2"`
	ISBN              *string  `json:"isbn"`
	Category          *string  `json:"category"`
	Available         *int     `json:"available"`
	Total             *int     `json:"total"`
	ClassNumber       *string  `json:"class_number"`
	BookNumber        *string  `json:"book_number"`
	Edition           *string  `json:"edition"`
	Publisher         *string  `json:"publisher"`
	YearOfPublication *int     `json:"year_of_publication"`
	Subject           *string  `json:"subject"`
	Location          *string  `json:"location"`
	Vendor            *string  `json:"vendor"`
	Price             *float64 `json:"price"`
	CallNo            *string  `json:"call_no"`
	AccessionNo       *string  `json:"accession_no"`
}

func (p bookPatchRequest) toPatch() store.BookPatch {
	return store.BookPatch{
		Title:             p.Title,
		SubTitle:          p.SubTitle,
		Author:            p.Author,
		Author2:           p.Author2,
		ISBN:              p.ISBN,
		Category:          p.Category,
		Available:         p.Available,
		Total:             p.Total,
		ClassNumber:       p.ClassNumber,
		BookNumber:        p.BookNumber,
		Edition:           p.Edition,
		Publisher:         p.Publisher,
		YearOfPublication: p.YearOfPublication,
		Subject:           p.Subject,
		Location:          p.Location,
		Vendor:            p.Vendor,
		Price:             p.Price,
		CallNo:            p.CallNo,
		AccessionNo:       p.AccessionNo,
	}
}
