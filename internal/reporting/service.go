// Package reporting aggregates catalog and circulation data for the
// dashboard, the overdue list, and the fine details view. Every read that
// depends on loan status runs overdue detection first so the numbers are
// current without any background job.
package reporting

import (
	"context"
	"time"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/circulation"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
)

type Service struct {
	store  store.Store
	engine *circulation.Engine
}

func NewService(st store.Store, engine *circulation.Engine) *Service {
	return &Service{store: st, engine: engine}
}

type DashboardStats struct {
	TotalBooks      int     `json:"total_books"`
	Available       int     `json:"available"`
	Issued          int     `json:"issued"`
	Overdue         int     `json:"overdue"`
	FineOutstanding float64 `json:"fine_outstanding"`
	Users           int     `json:"users"`
}

// Stats computes the admin dashboard counters. The outstanding fine total
// is the sum of per-loan fines over unreturned past-due loans, not a flat
// multiple of the overdue count.
func (s *Service) Stats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if _, err := s.engine.DetectOverdue(ctx, now); err != nil {
		return nil, err
	}

	books, err := s.store.QueryBooks(ctx, store.BookFilter{})
	if err != nil {
		return nil, err
	}
	loans, err := s.store.QueryLoans(ctx, store.LoanFilter{})
	if err != nil {
		return nil, err
	}
	profiles, err := s.store.QueryProfiles(ctx, store.ProfileFilter{})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{Users: len(profiles)}
	for _, b := range books {
		stats.TotalBooks += b.Total
		stats.Available += b.Available
	}
	for _, l := range loans {
		switch l.Status {
		case models.StatusIssued:
			stats.Issued++
		case models.StatusOverdue:
			stats.Overdue++
			_, fine := s.engine.Fine(l, now)
			stats.FineOutstanding += fine
		}
	}
	return stats, nil
}

type MonthCount struct {
	Month  string `json:"month"`
	Year   int    `json:"year"`
	Issued int    `json:"issued"`
}

// MonthlyIssues buckets loans by issue month over the trailing window,
// oldest first. The dashboard chart uses six months.
func (s *Service) MonthlyIssues(ctx context.Context, now time.Time, months int) ([]MonthCount, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	loans, err := s.store.QueryLoans(ctx, store.LoanFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]MonthCount, months)
	for i := 0; i < months; i++ {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, -(months - 1 - i), 0)
		out[i] = MonthCount{Month: start.Month().String()[:3], Year: start.Year()}
		end := start.AddDate(0, 1, 0)
		for _, l := range loans {
			if !l.IssueDate.Before(start) && l.IssueDate.Before(end) {
				out[i].Issued++
			}
		}
	}
	return out, nil
}

// CategoryCounts sums owned copies per catalog category.
func (s *Service) CategoryCounts(ctx context.Context) (map[string]int, error) {
	books, err := s.store.QueryBooks(ctx, store.BookFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, b := range books {
		cat := b.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		counts[cat] += b.Total
	}
	return counts, nil
}

// FineDetail is one row of the fine details and overdue views.
type FineDetail struct {
	Loan        models.Loan `json:"loan"`
	DaysOverdue int         `json:"days_overdue"`
	Fine        float64     `json:"fine"`
}

// OverdueFines lists every overdue loan with its accrued fine and the
// pending total.
func (s *Service) OverdueFines(ctx context.Context, now time.Time) ([]FineDetail, float64, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if _, err := s.engine.DetectOverdue(ctx, now); err != nil {
		return nil, 0, err
	}

	overdue, err := s.store.QueryLoans(ctx, store.LoanFilter{Status: models.StatusOverdue})
	if err != nil {
		return nil, 0, err
	}

	details := make([]FineDetail, 0, len(overdue))
	var total float64
	for _, l := range overdue {
		days, fine := s.engine.Fine(l, now)
		details = append(details, FineDetail{Loan: l, DaysOverdue: days, Fine: fine})
		total += fine
	}
	return details, total, nil
}

// StudentLoans lists one borrower's loans, newest first, with statuses
// reconciled.
func (s *Service) StudentLoans(ctx context.Context, studentID string, now time.Time) ([]models.Loan, error) {
	if _, err := s.engine.DetectOverdue(ctx, now); err != nil {
		return nil, err
	}
	return s.store.QueryLoans(ctx, store.LoanFilter{StudentID: studentID})
}

// Availability filters for SearchBooks, mirroring the catalog view.
const (
	AvailabilityAny        = ""
	AvailabilityAvailable  = "available"
	AvailabilityIssued     = "issued"
	AvailabilityOutOfStock = "out_of_stock"
)

// SearchBooks runs a catalog query and then applies the availability
// facet, which cuts across the stored fields.
func (s *Service) SearchBooks(ctx context.Context, f store.BookFilter, availability string) ([]models.Book, error) {
	books, err := s.store.QueryBooks(ctx, f)
	if err != nil {
		return nil, err
	}
	if availability == AvailabilityAny {
		return books, nil
	}

	filtered := books[:0]
	for _, b := range books {
		switch availability {
		case AvailabilityAvailable:
			if b.Available > 0 {
				filtered = append(filtered, b)
			}
		case AvailabilityIssued:
			if b.CopiesOut() > 0 {
				filtered = append(filtered, b)
			}
		case AvailabilityOutOfStock:
			if b.Available == 0 {
				filtered = append(filtered, b)
			}
		}
	}
	return filtered, nil
}
