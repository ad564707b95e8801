// Package catalog guards the book inventory invariant: a catalog edit can
// never leave a book with available < 0 or available > total, and a book
// with copies still out cannot be deleted.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/audit"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/circulation"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
)

type Service struct {
	store store.Store
	audit audit.Logger
}

func NewService(st store.Store, auditLogger audit.Logger) *Service {
	return &Service{store: st, audit: auditLogger}
}

func (s *Service) AddBook(ctx context.Context, actor circulation.Actor, b models.Book) (*models.Book, error) {
	if !actor.Role.Staff() {
		return nil, &circulation.PermissionError{Role: actor.Role, Op: "add books"}
	}
	if err := validateCounts(b.Available, b.Total); err != nil {
		return nil, err
	}
	if strings.TrimSpace(b.Title) == "" {
		return nil, &circulation.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if strings.TrimSpace(b.Author) == "" {
		return nil, &circulation.ValidationError{Field: "author", Reason: "must not be blank"}
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	created, err := s.store.InsertBook(ctx, b)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, actor.ID, models.BookEntity, audit.ActionCreate, created)
	return created, nil
}

// UpdateBook applies a partial edit. The copy counters are validated
// against the values the edit would produce, so a patch that touches only
// total is still checked against the current available count.
func (s *Service) UpdateBook(ctx context.Context, actor circulation.Actor, id string, p store.BookPatch) (*models.Book, error) {
	if !actor.Role.Staff() {
		return nil, &circulation.PermissionError{Role: actor.Role, Op: "edit books"}
	}

	current, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	available := current.Available
	if p.Available != nil {
		available = *p.Available
	}
	total := current.Total
	if p.Total != nil {
		total = *p.Total
	}
	if err := validateCounts(available, total); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateBook(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, actor.ID, models.BookEntity, audit.ActionUpdate, updated)
	return updated, nil
}

// DeleteBook refuses while copies are still out; the loan records pointing
// at the book keep their denormalized titles either way.
func (s *Service) DeleteBook(ctx context.Context, actor circulation.Actor, id string) error {
	if !actor.Role.Staff() {
		return &circulation.PermissionError{Role: actor.Role, Op: "delete books"}
	}

	b, err := s.store.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if out := b.CopiesOut(); out > 0 {
		return &circulation.ConflictError{
			Reason: fmt.Sprintf("%d copies of %q are still on loan", out, b.Title),
		}
	}

	if err := s.store.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, actor.ID, models.BookEntity, audit.ActionDelete, id)
	return nil
}

func validateCounts(available, total int) error {
	if available < 0 {
		return &circulation.ValidationError{Field: "available", Reason: "must not be negative"}
	}
	if total < 0 {
		return &circulation.ValidationError{Field: "total", Reason: "must not be negative"}
	}
	if available > total {
		return &circulation.ConflictError{
			Reason: fmt.Sprintf("available (%d) cannot exceed total (%d)", available, total),
		}
	}
	return nil
}
