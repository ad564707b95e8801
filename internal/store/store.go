// Package store defines the record store contract the circulation engine and
// catalog rules are written against. Backends live in the mongostore and
// memstore subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
)

var (
	ErrNotFound = errors.New("store: record not found")

	// AdjustAvailable bounds violations.
	ErrCopiesExhausted   = errors.New("store: no copies available")
	ErrCopiesExceedTotal = errors.New("store: available would exceed total")
)

// BookFilter narrows QueryBooks. Zero value matches everything.
type BookFilter struct {
	// Ref matches book_number or isbn exactly, matching how issue requests
	// reference a book.
	Ref string
	// Search is a case-insensitive substring match on title or author.
	Search   string
	Category string
}

// LoanFilter narrows QueryLoans. Zero value matches everything.
type LoanFilter struct {
	Status    models.LoanStatus
	StudentID string
	BookID    string
	// DueBefore matches loans whose due date is strictly earlier.
	DueBefore time.Time
}

// ProfileFilter narrows QueryProfiles. Zero value matches everything.
type ProfileFilter struct {
	Role models.Role
}

// BookPatch is a partial book update; nil fields are left untouched.
type BookPatch struct {
	Title             *string
	SubTitle          *string
	Author            *string
	Author2           *string
	ISBN              *string
	Category          *string
	Available         *int
	Total             *int
	ClassNumber       *string
	BookNumber        *string
	Edition           *string
	Publisher         *string
	YearOfPublication *int
	Subject           *string
	Location          *string
	Vendor            *string
	Price             *float64
	CallNo            *string
	AccessionNo       *string
}

// LoanPatch is a partial loan update; nil fields are left untouched.
type LoanPatch struct {
	Status     *models.LoanStatus
	ReturnDate *time.Time
	// ClearReturnDate unsets the return date, reopening a loan.
	ClearReturnDate bool
	DueDate         *time.Time
	Renewals        *int
	// IfStatus, when set, makes the update conditional on the loan still
	// holding that status. A miss reports ErrNotFound.
	IfStatus models.LoanStatus
}

// Store is the persistence contract. Implementations must make
// AdjustAvailable atomic: the bounds check and the write happen as one
// operation so concurrent issues and returns can never drive a book's
// available counter negative or past its total.
type Store interface {
	QueryBooks(ctx context.Context, f BookFilter) ([]models.Book, error)
	GetBook(ctx context.Context, id string) (*models.Book, error)
	InsertBook(ctx context.Context, b models.Book) (*models.Book, error)
	UpdateBook(ctx context.Context, id string, p BookPatch) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) error
	AdjustAvailable(ctx context.Context, id string, delta int) (*models.Book, error)

	QueryLoans(ctx context.Context, f LoanFilter) ([]models.Loan, error)
	GetLoan(ctx context.Context, id string) (*models.Loan, error)
	InsertLoan(ctx context.Context, l models.Loan) (*models.Loan, error)
	UpdateLoan(ctx context.Context, id string, p LoanPatch) (*models.Loan, error)

	QueryProfiles(ctx context.Context, f ProfileFilter) ([]models.UserProfile, error)
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	InsertProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error)

	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
}

// Failure wraps a backend error so callers can tell store-layer failures
// apart from domain rule violations.
type Failure struct {
	Op  string
	Err error
}

func (f *Failure) Error() string { return fmt.Sprintf("store: %s: %v", f.Op, f.Err) }
func (f *Failure) Unwrap() error { return f.Err }

// Fail wraps err as a Failure unless it is one of the package sentinels,
// which pass through for errors.Is checks.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCopiesExhausted) || errors.Is(err, ErrCopiesExceedTotal) {
		return err
	}
	return &Failure{Op: op, Err: err}
}
