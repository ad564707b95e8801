// Package circulation enforces the loan lifecycle: issuing, returning,
// overdue detection, fines, and renewals. All status transitions and every
// mutation of a book's available counter go through this package.
package circulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/audit"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
)

// Actor identifies who is invoking an operation. Handlers build it from the
// authenticated session; tests build it directly.
type Actor struct {
	ID   string
	Name string
	Role models.Role
}

type Config struct {
	LoanPeriodDays int
	FinePerDay     float64
	MaxRenewals    int
}

const (
	DefaultLoanPeriodDays = 14
	DefaultFinePerDay     = 5
	DefaultMaxRenewals    = 2
)

func (c Config) withDefaults() Config {
	if c.LoanPeriodDays <= 0 {
		c.LoanPeriodDays = DefaultLoanPeriodDays
	}
	if c.FinePerDay <= 0 {
		c.FinePerDay = DefaultFinePerDay
	}
	if c.MaxRenewals <= 0 {
		c.MaxRenewals = DefaultMaxRenewals
	}
	return c
}

type Engine struct {
	store  store.Store
	audit  audit.Logger
	config Config
}

func NewEngine(st store.Store, auditLogger audit.Logger, cfg Config) *Engine {
	return &Engine{store: st, audit: auditLogger, config: cfg.withDefaults()}
}

type IssueRequest struct {
	// BookRef is a book number or ISBN.
	BookRef     string
	StudentName string
	StudentID   string
	// IssueDate defaults to now.
	IssueDate time.Time
}

// IssueBook creates a loan and takes one copy out of the referenced book.
// A reference that matches no catalog entry still produces a loan, with a
// placeholder title and no book linkage; a matched book with no copies left
// is a conflict.
func (e *Engine) IssueBook(ctx context.Context, actor Actor, req IssueRequest) (*models.Loan, error) {
	if !actor.Role.Staff() {
		return nil, &PermissionError{Role: actor.Role, Op: "issue books"}
	}
	req.BookRef = strings.TrimSpace(req.BookRef)
	req.StudentName = strings.TrimSpace(req.StudentName)
	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.BookRef == "" {
		return nil, &ValidationError{Field: "book reference", Reason: "must not be blank"}
	}
	if req.StudentName == "" {
		return nil, &ValidationError{Field: "student name", Reason: "must not be blank"}
	}
	if req.StudentID == "" {
		return nil, &ValidationError{Field: "student id", Reason: "must not be blank"}
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	books, err := e.store.QueryBooks(ctx, store.BookFilter{Ref: req.BookRef})
	if err != nil {
		return nil, err
	}

	loan := models.Loan{
		StudentName: req.StudentName,
		StudentID:   req.StudentID,
		IssueDate:   issueDate,
		DueDate:     issueDate.AddDate(0, 0, e.config.LoanPeriodDays),
		Status:      models.StatusIssued,
	}

	var book *models.Book
	if len(books) > 0 {
		book = &books[0]
		loan.BookID = book.ID
		loan.BookTitle = book.Title
	} else {
		loan.BookTitle = fmt.Sprintf("Book #%s", req.BookRef)
	}

	if book != nil {
		if _, err := e.store.AdjustAvailable(ctx, book.ID, -1); err != nil {
			if errors.Is(err, store.ErrCopiesExhausted) {
				return nil, &ConflictError{Reason: fmt.Sprintf("no copies of %q available", book.Title)}
			}
			return nil, err
		}
	}

	created, err := e.store.InsertLoan(ctx, loan)
	if err != nil {
		// Put the copy back so a failed insert leaves no trace.
		if book != nil {
			if _, rbErr := e.store.AdjustAvailable(ctx, book.ID, 1); rbErr != nil {
				log.Error().Err(rbErr).Str("book_id", book.ID).Msg("rollback of available counter failed")
			}
		}
		return nil, err
	}

	e.audit.Log(ctx, actor.ID, models.LoanEntity, audit.ActionIssue, created)
	return created, nil
}

// ReturnResult is what a return receipt shows: the frozen loan plus the
// fine owed as of the return date.
type ReturnResult struct {
	Loan        *models.Loan
	DaysOverdue int
	Fine        float64
}

// ReturnBook closes an issued or overdue loan and puts the copy back.
func (e *Engine) ReturnBook(ctx context.Context, actor Actor, loanID string, returnDate time.Time) (*ReturnResult, error) {
	if !actor.Role.Staff() {
		return nil, &PermissionError{Role: actor.Role, Op: "return books"}
	}

	loan, err := e.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Active() {
		return nil, &StateError{LoanID: loanID, Status: loan.Status, Op: "return"}
	}

	if returnDate.IsZero() {
		returnDate = time.Now().UTC()
	}

	status := models.StatusReturned
	updated, err := e.store.UpdateLoan(ctx, loanID, store.LoanPatch{
		Status:     &status,
		ReturnDate: &returnDate,
	})
	if err != nil {
		return nil, err
	}

	if loan.BookID != "" {
		if _, err := e.store.AdjustAvailable(ctx, loan.BookID, 1); err != nil {
			switch {
			case errors.Is(err, store.ErrCopiesExceedTotal):
				// Incrementing would break available <= total. The counter is
				// left clamped at total and the inconsistency is flagged.
				log.Warn().Str("book_id", loan.BookID).Str("loan_id", loanID).
					Msg("return would push available past total; counter left clamped")
			case errors.Is(err, store.ErrNotFound):
				// Book was deleted while the copy was out; nothing to restore.
				log.Warn().Str("book_id", loan.BookID).Str("loan_id", loanID).
					Msg("returned copy references a deleted book")
			default:
				// Reopen the loan so a failed increment leaves no trace.
				prev := loan.Status
				if _, rbErr := e.store.UpdateLoan(ctx, loanID, store.LoanPatch{
					Status:          &prev,
					ClearReturnDate: true,
				}); rbErr != nil {
					log.Error().Err(rbErr).Str("loan_id", loanID).
						Msg("rollback of return status failed")
				}
				return nil, err
			}
		}
	}

	days, fine := e.Fine(*updated, returnDate)
	e.audit.Log(ctx, actor.ID, models.LoanEntity, audit.ActionReturn, updated)
	return &ReturnResult{Loan: updated, DaysOverdue: days, Fine: fine}, nil
}

// DetectOverdue moves every issued loan whose due date has passed to
// overdue. It is idempotent and safe to run on every dashboard read:
// already-overdue loans are untouched and returned loans are never
// considered. Returns the number of loans transitioned.
func (e *Engine) DetectOverdue(ctx context.Context, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	due, err := e.store.QueryLoans(ctx, store.LoanFilter{
		Status:    models.StatusIssued,
		DueBefore: asOf,
	})
	if err != nil {
		return 0, err
	}

	status := models.StatusOverdue
	count := 0
	for _, l := range due {
		// Conditional on the loan still being issued: a return racing in
		// between the query and this write must not be flipped back.
		_, err := e.store.UpdateLoan(ctx, l.ID, store.LoanPatch{
			Status:   &status,
			IfStatus: models.StatusIssued,
		})
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Renew extends an issued loan by one loan period. Overdue loans must be
// returned and fines settled first; renewals stop at the configured cap.
func (e *Engine) Renew(ctx context.Context, actor Actor, loanID string) (*models.Loan, error) {
	loan, err := e.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Staff() && actor.ID != loan.StudentID {
		return nil, &PermissionError{Role: actor.Role, Op: "renew this loan"}
	}
	if loan.Status != models.StatusIssued {
		return nil, &StateError{LoanID: loanID, Status: loan.Status, Op: "renew"}
	}
	if loan.Renewals >= e.config.MaxRenewals {
		return nil, &LimitExceededError{LoanID: loanID, Limit: e.config.MaxRenewals}
	}

	newDue := loan.DueDate.AddDate(0, 0, e.config.LoanPeriodDays)
	renewals := loan.Renewals + 1
	updated, err := e.store.UpdateLoan(ctx, loanID, store.LoanPatch{
		DueDate:  &newDue,
		Renewals: &renewals,
	})
	if err != nil {
		return nil, err
	}

	e.audit.Log(ctx, actor.ID, models.LoanEntity, audit.ActionRenew, updated)
	return updated, nil
}

// ComputeFine measures days overdue against the due date, regardless of the
// loan's recorded status, and prices them at ratePerDay. Pure.
func ComputeFine(loan models.Loan, asOf time.Time, ratePerDay float64) (daysOverdue int, fine float64) {
	diff := asOf.Sub(loan.DueDate)
	if diff <= 0 {
		return 0, 0
	}
	daysOverdue = int(math.Ceil(diff.Hours() / 24))
	return daysOverdue, float64(daysOverdue) * ratePerDay
}

// Fine computes the fine for a loan at the configured rate. For a returned
// loan the recorded return date wins over asOf: a fine frozen at return
// never grows afterwards.
func (e *Engine) Fine(loan models.Loan, asOf time.Time) (daysOverdue int, fine float64) {
	if loan.Status == models.StatusReturned && loan.ReturnDate != nil {
		asOf = *loan.ReturnDate
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return ComputeFine(loan, asOf, e.config.FinePerDay)
}
