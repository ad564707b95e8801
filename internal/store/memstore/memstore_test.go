package memstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store/memstore"
)

func TestAdjustAvailableBounds(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	b, err := st.InsertBook(ctx, models.Book{Title: "T", Author: "A", Available: 1, Total: 2})
	require.NoError(t, err)

	_, err = st.AdjustAvailable(ctx, b.ID, -1)
	require.NoError(t, err)

	_, err = st.AdjustAvailable(ctx, b.ID, -1)
	assert.ErrorIs(t, err, store.ErrCopiesExhausted)

	_, err = st.AdjustAvailable(ctx, b.ID, 3)
	assert.ErrorIs(t, err, store.ErrCopiesExceedTotal)

	_, err = st.AdjustAvailable(ctx, "missing", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Concurrent issues against one copy: exactly one wins, the counter never
// goes negative.
func TestAdjustAvailableConcurrent(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	b, err := st.InsertBook(ctx, models.Book{Title: "T", Author: "A", Available: 1, Total: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wins := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.AdjustAvailable(ctx, b.ID, -1); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)

	after, err := st.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, after.Available)
}

func TestQueryBooksFilter(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	_, err := st.InsertBook(ctx, models.Book{
		Title: "Database Systems", Author: "Ullman", BookNumber: "B1", ISBN: "111", Category: "CS",
	})
	require.NoError(t, err)
	_, err = st.InsertBook(ctx, models.Book{
		Title: "Modern Physics", Author: "Krane", BookNumber: "B2", ISBN: "222", Category: "Science",
	})
	require.NoError(t, err)

	byRef, err := st.QueryBooks(ctx, store.BookFilter{Ref: "B1"})
	require.NoError(t, err)
	require.Len(t, byRef, 1)
	assert.Equal(t, "Database Systems", byRef[0].Title)

	byISBN, err := st.QueryBooks(ctx, store.BookFilter{Ref: "222"})
	require.NoError(t, err)
	require.Len(t, byISBN, 1)
	assert.Equal(t, "Modern Physics", byISBN[0].Title)

	bySearch, err := st.QueryBooks(ctx, store.BookFilter{Search: "ullman"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 1)

	byCategory, err := st.QueryBooks(ctx, store.BookFilter{Category: "Science"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	all, err := st.QueryBooks(ctx, store.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQueryLoansFilter(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.InsertLoan(ctx, models.Loan{
		StudentID: "s1", Status: models.StatusIssued, IssueDate: base, DueDate: base.AddDate(0, 0, 14),
	})
	require.NoError(t, err)
	_, err = st.InsertLoan(ctx, models.Loan{
		StudentID: "s2", Status: models.StatusOverdue, IssueDate: base.AddDate(0, 0, -30), DueDate: base.AddDate(0, 0, -16),
	})
	require.NoError(t, err)

	byStudent, err := st.QueryLoans(ctx, store.LoanFilter{StudentID: "s1"})
	require.NoError(t, err)
	assert.Len(t, byStudent, 1)

	byStatus, err := st.QueryLoans(ctx, store.LoanFilter{Status: models.StatusOverdue})
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	dueBefore, err := st.QueryLoans(ctx, store.LoanFilter{DueBefore: base})
	require.NoError(t, err)
	assert.Len(t, dueBefore, 1)

	// Loans due exactly at the cutoff are not "before" it.
	dueAt, err := st.QueryLoans(ctx, store.LoanFilter{DueBefore: base.AddDate(0, 0, -16)})
	require.NoError(t, err)
	assert.Empty(t, dueAt)
}

func TestUpdateLoanConditionalOnStatus(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	returnDate := base.AddDate(0, 0, 10)
	l, err := st.InsertLoan(ctx, models.Loan{
		StudentID: "s1", Status: models.StatusReturned, IssueDate: base,
		DueDate: base.AddDate(0, 0, 14), ReturnDate: &returnDate,
	})
	require.NoError(t, err)

	// Guard misses: the loan is not issued anymore.
	overdue := models.StatusOverdue
	_, err = st.UpdateLoan(ctx, l.ID, store.LoanPatch{
		Status: &overdue, IfStatus: models.StatusIssued,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := st.GetLoan(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, got.Status)

	// Guard matches: reopen and drop the return date.
	issued := models.StatusIssued
	reopened, err := st.UpdateLoan(ctx, l.ID, store.LoanPatch{
		Status: &issued, ClearReturnDate: true, IfStatus: models.StatusReturned,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, reopened.Status)
	assert.Nil(t, reopened.ReturnDate)
}

func TestProfileLookup(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	_, err := st.InsertProfile(ctx, models.UserProfile{
		Name: "Arjun", Email: "arjun@gcu.edu", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	p, err := st.GetProfileByEmail(ctx, "ARJUN@gcu.edu")
	require.NoError(t, err)
	assert.Equal(t, "Arjun", p.Name)

	_, err = st.GetProfileByEmail(ctx, "nobody@gcu.edu")
	assert.ErrorIs(t, err, store.ErrNotFound)

	staff, err := st.QueryProfiles(ctx, store.ProfileFilter{Role: models.RoleLibrarian})
	require.NoError(t, err)
	assert.Empty(t, staff)
}
