// Package memstore is a mutex-guarded in-memory Store used by tests and
// local development. Query results are returned in a stable order so
// listings do not jump around between reads.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
)

type Store struct {
	mu       sync.Mutex
	books    map[string]models.Book
	loans    map[string]models.Loan
	profiles map[string]models.UserProfile
	audit    []models.AuditLog
}

func New() *Store {
	return &Store{
		books:    make(map[string]models.Book),
		loans:    make(map[string]models.Loan),
		profiles: make(map[string]models.UserProfile),
	}
}

func (s *Store) QueryBooks(_ context.Context, f store.BookFilter) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Book
	for _, b := range s.books {
		if f.Ref != "" && b.BookNumber != f.Ref && b.ISBN != f.Ref {
			continue
		}
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(b.Title), q) &&
				!strings.Contains(strings.ToLower(b.Author), q) {
				continue
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) GetBook(_ context.Context, id string) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (s *Store) InsertBook(_ context.Context, b models.Book) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.books[b.ID] = b
	return &b, nil
}

func (s *Store) UpdateBook(_ context.Context, id string, p store.BookPatch) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	applyBookPatch(&b, p)
	s.books[id] = b
	return &b, nil
}

func (s *Store) DeleteBook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.books, id)
	return nil
}

func (s *Store) AdjustAvailable(_ context.Context, id string, delta int) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	next := b.Available + delta
	if next < 0 {
		return nil, store.ErrCopiesExhausted
	}
	if next > b.Total {
		return nil, store.ErrCopiesExceedTotal
	}
	b.Available = next
	s.books[id] = b
	return &b, nil
}

func (s *Store) QueryLoans(_ context.Context, f store.LoanFilter) ([]models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Loan
	for _, l := range s.loans {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.StudentID != "" && l.StudentID != f.StudentID {
			continue
		}
		if f.BookID != "" && l.BookID != f.BookID {
			continue
		}
		if !f.DueBefore.IsZero() && !l.DueDate.Before(f.DueBefore) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssueDate.Equal(out[j].IssueDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].IssueDate.After(out[j].IssueDate)
	})
	return out, nil
}

func (s *Store) GetLoan(_ context.Context, id string) (*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &l, nil
}

func (s *Store) InsertLoan(_ context.Context, l models.Loan) (*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.loans[l.ID] = l
	return &l, nil
}

func (s *Store) UpdateLoan(_ context.Context, id string, p store.LoanPatch) (*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.IfStatus != "" && l.Status != p.IfStatus {
		return nil, store.ErrNotFound
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.ReturnDate != nil {
		l.ReturnDate = p.ReturnDate
	}
	if p.ClearReturnDate {
		l.ReturnDate = nil
	}
	if p.DueDate != nil {
		l.DueDate = *p.DueDate
	}
	if p.Renewals != nil {
		l.Renewals = *p.Renewals
	}
	s.loans[id] = l
	return &l, nil
}

func (s *Store) QueryProfiles(_ context.Context, f store.ProfileFilter) ([]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.UserProfile
	for _, p := range s.profiles {
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetProfile(_ context.Context, id string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetProfileByEmail(_ context.Context, email string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if strings.EqualFold(p.Email, email) {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) InsertProfile(_ context.Context, p models.UserProfile) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.profiles[p.ID] = p
	return &p, nil
}

func (s *Store) InsertAuditLog(_ context.Context, entry models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.audit = append(s.audit, entry)
	return nil
}

// AuditLogs returns a copy of everything logged so far. Test helper.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AuditLog, len(s.audit))
	copy(out, s.audit)
	return out
}

func applyBookPatch(b *models.Book, p store.BookPatch) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.SubTitle != nil {
		b.SubTitle = *p.SubTitle
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Author2 != nil {
		b.Author2 = *p.Author2
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Available != nil {
		b.Available = *p.Available
	}
	if p.Total != nil {
		b.Total = *p.Total
	}
	if p.ClassNumber != nil {
		b.ClassNumber = *p.ClassNumber
	}
	if p.BookNumber != nil {
		b.BookNumber = *p.BookNumber
	}
	if p.Edition != nil {
		b.Edition = *p.Edition
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	if p.YearOfPublication != nil {
		b.YearOfPublication = *p.YearOfPublication
	}
	if p.Subject != nil {
		b.Subject = *p.Subject
	}
	if p.Location != nil {
		b.Location = *p.Location
	}
	if p.Vendor != nil {
		b.Vendor = *p.Vendor
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.CallNo != nil {
		b.CallNo = *p.CallNo
	}
	if p.AccessionNo != nil {
		b.AccessionNo = *p.AccessionNo
	}
}
