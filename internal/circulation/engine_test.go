package circulation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/audit"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/circulation"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store/memstore"
)

var (
	librarian = circulation.Actor{ID: "staff-1", Name: "Priya", Role: models.RoleLibrarian}
	student   = circulation.Actor{ID: "stu-42", Name: "Arjun", Role: models.RoleStudent}
)

func newTestEngine(t *testing.T) (*circulation.Engine, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	engine := circulation.NewEngine(st, audit.Logger{Recorder: st}, circulation.Config{
		LoanPeriodDays: 14,
		FinePerDay:     5,
		MaxRenewals:    2,
	})
	return engine, st
}

// brokenAdjustStore fails AdjustAvailable once armed, standing in for a
// backend outage between the two writes of an issue or return.
type brokenAdjustStore struct {
	*memstore.Store
	broken bool
}

func (s *brokenAdjustStore) AdjustAvailable(ctx context.Context, id string, delta int) (*models.Book, error) {
	if s.broken {
		return nil, &store.Failure{Op: "adjust available", Err: errors.New("connection reset by peer")}
	}
	return s.Store.AdjustAvailable(ctx, id, delta)
}

// staleQueryStore serves one canned QueryLoans result, then delegates.
type staleQueryStore struct {
	*memstore.Store
	snapshot []models.Loan
}

func (s *staleQueryStore) QueryLoans(ctx context.Context, f store.LoanFilter) ([]models.Loan, error) {
	if s.snapshot != nil {
		out := s.snapshot
		s.snapshot = nil
		return out, nil
	}
	return s.Store.QueryLoans(ctx, f)
}

func seedBook(t *testing.T, st *memstore.Store, bookNumber string, available, total int) *models.Book {
	t.Helper()
	b, err := st.InsertBook(context.Background(), models.Book{
		Title:      "The Go Programming Language",
		Author:     "Donovan",
		BookNumber: bookNumber,
		ISBN:       "978-0134190440",
		Available:  available,
		Total:      total,
	})
	require.NoError(t, err)
	return b
}

func TestIssueBook(t *testing.T) {
	ctx := context.Background()

	t.Run("creates loan and decrements available", func(t *testing.T) {
		engine, st := newTestEngine(t)
		book := seedBook(t, st, "B100", 3, 5)

		issueDate := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "B100",
			StudentName: "Arjun",
			StudentID:   "stu-42",
			IssueDate:   issueDate,
		})
		require.NoError(t, err)

		assert.Equal(t, models.StatusIssued, loan.Status)
		assert.Equal(t, book.ID, loan.BookID)
		assert.Equal(t, book.Title, loan.BookTitle)
		assert.Equal(t, issueDate.AddDate(0, 0, 14), loan.DueDate)

		after, err := st.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, after.Available)
	})

	t.Run("resolves by isbn as well", func(t *testing.T) {
		engine, st := newTestEngine(t)
		book := seedBook(t, st, "B100", 1, 1)

		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "978-0134190440",
			StudentName: "Arjun",
			StudentID:   "stu-42",
		})
		require.NoError(t, err)
		assert.Equal(t, book.ID, loan.BookID)
	})

	t.Run("fails when no copies available", func(t *testing.T) {
		engine, st := newTestEngine(t)
		book := seedBook(t, st, "B100", 0, 3)

		_, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "B100",
			StudentName: "Arjun",
			StudentID:   "stu-42",
		})
		var conflict *circulation.ConflictError
		require.ErrorAs(t, err, &conflict)

		after, err := st.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, after.Available, "failed issue must not change state")

		loans, err := st.QueryLoans(ctx, store.LoanFilter{})
		require.NoError(t, err)
		assert.Empty(t, loans)
	})

	t.Run("unmatched reference still succeeds with placeholder", func(t *testing.T) {
		engine, st := newTestEngine(t)

		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "B999",
			StudentName: "Arjun",
			StudentID:   "stu-42",
		})
		require.NoError(t, err)
		assert.Empty(t, loan.BookID)
		assert.Equal(t, "Book #B999", loan.BookTitle)

		stored, err := st.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusIssued, stored.Status)
	})

	t.Run("blank inputs are rejected", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		cases := []struct {
			name string
			req  circulation.IssueRequest
		}{
			{"blank book ref", circulation.IssueRequest{StudentName: "Arjun", StudentID: "stu-42"}},
			{"blank student name", circulation.IssueRequest{BookRef: "B100", StudentID: "stu-42"}},
			{"blank student id", circulation.IssueRequest{BookRef: "B100", StudentName: "Arjun"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := engine.IssueBook(ctx, librarian, tc.req)
				var validation *circulation.ValidationError
				assert.ErrorAs(t, err, &validation)
			})
		}
	})

	t.Run("students may not issue", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		_, err := engine.IssueBook(ctx, student, circulation.IssueRequest{
			BookRef:     "B100",
			StudentName: "Arjun",
			StudentID:   "stu-42",
		})
		var permission *circulation.PermissionError
		assert.ErrorAs(t, err, &permission)
	})
}

func TestReturnBook(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip restores available", func(t *testing.T) {
		engine, st := newTestEngine(t)
		book := seedBook(t, st, "B100", 3, 5)

		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "B100",
			StudentName: "Arjun",
			StudentID:   "stu-42",
		})
		require.NoError(t, err)

		result, err := engine.ReturnBook(ctx, librarian, loan.ID, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, models.StatusReturned, result.Loan.Status)
		require.NotNil(t, result.Loan.ReturnDate)

		after, err := st.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, after.Available)
	})

	t.Run("late return carries fine on receipt", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		issueDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "B100",
			StudentName: "Arjun",
			StudentID:   "stu-42",
			IssueDate:   issueDate,
		})
		require.NoError(t, err)

		returnDate := loan.DueDate.AddDate(0, 0, 3)
		result, err := engine.ReturnBook(ctx, librarian, loan.ID, returnDate)
		require.NoError(t, err)
		assert.Equal(t, 3, result.DaysOverdue)
		assert.Equal(t, 15.0, result.Fine)
	})

	t.Run("returning a returned loan is a state error", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "B100",
			StudentName: "Arjun",
			StudentID:   "stu-42",
		})
		require.NoError(t, err)

		_, err = engine.ReturnBook(ctx, librarian, loan.ID, time.Time{})
		require.NoError(t, err)

		_, err = engine.ReturnBook(ctx, librarian, loan.ID, time.Time{})
		var state *circulation.StateError
		require.ErrorAs(t, err, &state)

		after, err := st.GetBook(ctx, loan.BookID)
		require.NoError(t, err)
		assert.Equal(t, 1, after.Available, "double return must not inflate available")
	})

	t.Run("failed counter restore reopens the loan", func(t *testing.T) {
		st := &brokenAdjustStore{Store: memstore.New()}
		engine := circulation.NewEngine(st, audit.Logger{Recorder: st.Store}, circulation.Config{
			LoanPeriodDays: 14, FinePerDay: 5, MaxRenewals: 2,
		})
		seedBook(t, st.Store, "B100", 1, 1)

		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: "stu-42",
		})
		require.NoError(t, err)

		st.broken = true
		_, err = engine.ReturnBook(ctx, librarian, loan.ID, time.Time{})
		require.Error(t, err)

		after, err := st.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusIssued, after.Status, "errored return must leave the loan open")
		assert.Nil(t, after.ReturnDate)

		book, err := st.GetBook(ctx, loan.BookID)
		require.NoError(t, err)
		assert.Zero(t, book.Available)
	})

	t.Run("overdue loan can be returned", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		issueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef:     "B100",
			StudentName: "Arjun",
			StudentID:   "stu-42",
			IssueDate:   issueDate,
		})
		require.NoError(t, err)

		_, err = engine.DetectOverdue(ctx, issueDate.AddDate(0, 0, 30))
		require.NoError(t, err)

		result, err := engine.ReturnBook(ctx, librarian, loan.ID, issueDate.AddDate(0, 0, 30))
		require.NoError(t, err)
		assert.Equal(t, models.StatusReturned, result.Loan.Status)
	})
}

func TestDetectOverdue(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions issued loans past due", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 2, 2)

		issueDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		late, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: "stu-42", IssueDate: issueDate,
		})
		require.NoError(t, err)
		fresh, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Meera", StudentID: "stu-43", IssueDate: issueDate.AddDate(0, 0, 20),
		})
		require.NoError(t, err)

		asOf := issueDate.AddDate(0, 0, 20)
		count, err := engine.DetectOverdue(ctx, asOf)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		gotLate, err := st.GetLoan(ctx, late.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusOverdue, gotLate.Status)

		gotFresh, err := st.GetLoan(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusIssued, gotFresh.Status)
	})

	t.Run("idempotent", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		issueDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: "stu-42", IssueDate: issueDate,
		})
		require.NoError(t, err)

		asOf := issueDate.AddDate(0, 0, 30)
		first, err := engine.DetectOverdue(ctx, asOf)
		require.NoError(t, err)
		assert.Equal(t, 1, first)

		second, err := engine.DetectOverdue(ctx, asOf)
		require.NoError(t, err)
		assert.Zero(t, second)

		loans, err := st.QueryLoans(ctx, store.LoanFilter{Status: models.StatusOverdue})
		require.NoError(t, err)
		assert.Len(t, loans, 1)
	})

	t.Run("a return racing detection is not flipped back", func(t *testing.T) {
		st := &staleQueryStore{Store: memstore.New()}
		engine := circulation.NewEngine(st, audit.Logger{Recorder: st.Store}, circulation.Config{
			LoanPeriodDays: 14, FinePerDay: 5, MaxRenewals: 2,
		})
		seedBook(t, st.Store, "B100", 1, 1)

		issueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: "stu-42", IssueDate: issueDate,
		})
		require.NoError(t, err)

		_, err = engine.ReturnBook(ctx, librarian, loan.ID, issueDate.AddDate(0, 0, 20))
		require.NoError(t, err)

		// Detection sees a snapshot from before the return.
		st.snapshot = []models.Loan{*loan}
		count, err := engine.DetectOverdue(ctx, issueDate.AddDate(0, 0, 20))
		require.NoError(t, err)
		assert.Zero(t, count)

		got, err := st.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusReturned, got.Status)
	})

	t.Run("never touches returned loans", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		issueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: "stu-42", IssueDate: issueDate,
		})
		require.NoError(t, err)

		_, err = engine.ReturnBook(ctx, librarian, loan.ID, issueDate.AddDate(0, 0, 5))
		require.NoError(t, err)

		_, err = engine.DetectOverdue(ctx, issueDate.AddDate(1, 0, 0))
		require.NoError(t, err)

		got, err := st.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusReturned, got.Status)
	})
}

func TestComputeFine(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	loan := models.Loan{DueDate: due}

	tests := []struct {
		name     string
		asOf     time.Time
		wantDays int
		wantFine float64
	}{
		{"on due date", due, 0, 0},
		{"one day before", due.AddDate(0, 0, -1), 0, 0},
		{"three days late", due.AddDate(0, 0, 3), 3, 15},
		{"partial day rounds up", due.Add(6 * time.Hour), 1, 5},
		{"ten days late", due.AddDate(0, 0, 10), 10, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, fine := circulation.ComputeFine(loan, tt.asOf, 5)
			assert.Equal(t, tt.wantDays, days)
			assert.Equal(t, tt.wantFine, fine)
		})
	}
}

func TestEngineFineUsesReturnDateForReturnedLoans(t *testing.T) {
	engine, _ := newTestEngine(t)

	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	returned := due.AddDate(0, 0, 2)
	loan := models.Loan{
		DueDate:    due,
		Status:     models.StatusReturned,
		ReturnDate: &returned,
	}

	// asOf far in the future must not grow a fine frozen at return.
	days, fine := engine.Fine(loan, due.AddDate(1, 0, 0))
	assert.Equal(t, 2, days)
	assert.Equal(t, 10.0, fine)
}

func TestRenew(t *testing.T) {
	ctx := context.Background()

	t.Run("extends due date up to the cap", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		issueDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: "stu-42", IssueDate: issueDate,
		})
		require.NoError(t, err)

		first, err := engine.Renew(ctx, librarian, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, loan.DueDate.AddDate(0, 0, 14), first.DueDate)
		assert.Equal(t, 1, first.Renewals)

		second, err := engine.Renew(ctx, librarian, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, second.Renewals)

		_, err = engine.Renew(ctx, librarian, loan.ID)
		var limit *circulation.LimitExceededError
		require.ErrorAs(t, err, &limit)
	})

	t.Run("overdue loans cannot be renewed", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 1, 1)

		issueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: "stu-42", IssueDate: issueDate,
		})
		require.NoError(t, err)

		_, err = engine.DetectOverdue(ctx, issueDate.AddDate(0, 0, 30))
		require.NoError(t, err)

		_, err = engine.Renew(ctx, librarian, loan.ID)
		var state *circulation.StateError
		assert.ErrorAs(t, err, &state)
	})

	t.Run("students may renew only their own loans", func(t *testing.T) {
		engine, st := newTestEngine(t)
		seedBook(t, st, "B100", 2, 2)

		own, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Arjun", StudentID: student.ID,
		})
		require.NoError(t, err)
		other, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
			BookRef: "B100", StudentName: "Meera", StudentID: "stu-43",
		})
		require.NoError(t, err)

		_, err = engine.Renew(ctx, student, own.ID)
		assert.NoError(t, err)

		_, err = engine.Renew(ctx, student, other.ID)
		var permission *circulation.PermissionError
		assert.ErrorAs(t, err, &permission)
	})
}

// The example flow from the dashboard: one copy, two issue attempts, then a
// return.
func TestSingleCopyCirculationScenario(t *testing.T) {
	ctx := context.Background()
	engine, st := newTestEngine(t)

	book, err := st.InsertBook(ctx, models.Book{
		Title: "Operating System Concepts", Author: "Silberschatz",
		BookNumber: "B200", Available: 1, Total: 5,
	})
	require.NoError(t, err)

	loan, err := engine.IssueBook(ctx, librarian, circulation.IssueRequest{
		BookRef: "B200", StudentName: "Arjun", StudentID: "stu-42",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, loan.Status)

	after, err := st.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Zero(t, after.Available)

	_, err = engine.IssueBook(ctx, librarian, circulation.IssueRequest{
		BookRef: "B200", StudentName: "Meera", StudentID: "stu-43",
	})
	var conflict *circulation.ConflictError
	require.ErrorAs(t, err, &conflict)

	result, err := engine.ReturnBook(ctx, librarian, loan.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, result.Loan.Status)

	final, err := st.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.Available)
}
