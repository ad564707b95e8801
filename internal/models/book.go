package models

import "time"

type Book struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	Title             string    `bson:"title" json:"title"`
	SubTitle          string    `bson:"sub_title,omitempty" json:"sub_title,omitempty"`
	Author            string    `bson:"author" json:"author"`
	Author2           string    `bson:"author2,omitempty" json:"author2,omitempty"`
	ISBN              string    `bson:"isbn" json:"isbn"`
	Category          string    `bson:"category" json:"category"`
	Available         int       `bson:"available" json:"available"`
	Total             int       `bson:"total" json:"total"`
	ClassNumber       string    `bson:"class_number,omitempty" json:"class_number,omitempty"`
	BookNumber        string    `bson:"book_number" json:"book_number"`
	Edition           string    `bson:"edition,omitempty" json:"edition,omitempty"`
	Publisher         string    `bson:"publisher,omitempty" json:"publisher,omitempty"`
	YearOfPublication int       `bson:"year_of_publication,omitempty" json:"year_of_publication,omitempty"`
	Subject           string    `bson:"subject,omitempty" json:"subject,omitempty"`
	Location          string    `bson:"location,omitempty" json:"location,omitempty"`
	Vendor            string    `bson:"vendor,omitempty" json:"vendor,omitempty"`
	Price             float64   `bson:"price,omitempty" json:"price,omitempty"`
	CallNo            string    `bson:"call_no,omitempty" json:"call_no,omitempty"`
	AccessionNo       string    `bson:"accession_no,omitempty" json:"accession_no,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

const (
	BookEntity = "book"
)

// CopiesOut is the number of copies currently on loan.
func (b *Book) CopiesOut() int {
	return b.Total - b.Available
}
