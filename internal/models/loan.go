package models

import "time"

type LoanStatus string

const (
	StatusIssued   LoanStatus = "issued"
	StatusOverdue  LoanStatus = "overdue"
	StatusReturned LoanStatus = "returned"

	LoanEntity = "loan"
)

// Loan is one circulation event. BookTitle is denormalized on purpose so the
// record stays readable after the book is edited or deleted. BookID is empty
// when the issue request could not be matched to a catalog entry.
type Loan struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	BookID      string     `bson:"book_id" json:"book_id"`
	BookTitle   string     `bson:"book_title" json:"book_title"`
	StudentName string     `bson:"student_name" json:"student_name"`
	StudentID   string     `bson:"student_id" json:"student_id"`
	IssueDate   time.Time  `bson:"issue_date" json:"issue_date"`
	DueDate     time.Time  `bson:"due_date" json:"due_date"`
	ReturnDate  *time.Time `bson:"return_date,omitempty" json:"return_date,omitempty"`
	Status      LoanStatus `bson:"status" json:"status"`
	Renewals    int        `bson:"renewals" json:"renewals"`
}

var ValidLoanStatuses = map[string]bool{
	string(StatusIssued):   true,
	string(StatusOverdue):  true,
	string(StatusReturned): true,
}

func IsValidLoanStatus(status string) bool {
	return ValidLoanStatuses[status]
}

// Active reports whether the loan still has a copy out.
func (l *Loan) Active() bool {
	return l.Status == StatusIssued || l.Status == StatusOverdue
}
