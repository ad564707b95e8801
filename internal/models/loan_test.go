package models_test

import (
	"testing"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
)

func TestIsValidLoanStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		isValid bool
	}{
		{"Issued", string(models.StatusIssued), true},
		{"Overdue", string(models.StatusOverdue), true},
		{"Returned", string(models.StatusReturned), true},
		{"Invalid Status", "LOST", false},
		{"Empty Status", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.IsValidLoanStatus(tt.status); got != tt.isValid {
				t.Errorf("IsValidLoanStatus() = %v, want %v", got, tt.isValid)
			}
		})
	}
}

func TestLoanActive(t *testing.T) {
	tests := []struct {
		name   string
		status models.LoanStatus
		active bool
	}{
		{"Issued is active", models.StatusIssued, true},
		{"Overdue is active", models.StatusOverdue, true},
		{"Returned is not", models.StatusReturned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := models.Loan{Status: tt.status}
			if got := l.Active(); got != tt.active {
				t.Errorf("Active() = %v, want %v", got, tt.active)
			}
		})
	}
}
