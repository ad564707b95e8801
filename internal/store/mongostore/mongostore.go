// Package mongostore backs the store contract with MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
)

type Store struct {
	Books    *mongo.Collection
	Loans    *mongo.Collection
	Profiles *mongo.Collection
	Audit    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		Books:    db.Collection("books"),
		Loans:    db.Collection("issued_books"),
		Profiles: db.Collection("profiles"),
		Audit:    db.Collection("audit_logs"),
	}
}

func (s *Store) QueryBooks(ctx context.Context, f store.BookFilter) ([]models.Book, error) {
	filter := bson.M{}
	if f.Ref != "" {
		filter["$or"] = bson.A{
			bson.M{"book_number": f.Ref},
			bson.M{"isbn": f.Ref},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		rx := bson.M{"$regex": f.Search, "$options": "i"}
		filter["$and"] = bson.A{
			bson.M{"$or": bson.A{bson.M{"title": rx}, bson.M{"author": rx}}},
		}
	}

	cursor, err := s.Books.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, store.Fail("query books", err)
	}
	defer cursor.Close(ctx)

	var books []models.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, store.Fail("decode books", err)
	}
	return books, nil
}

func (s *Store) GetBook(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	err := s.Books.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Fail("get book", err)
	}
	return &b, nil
}

func (s *Store) InsertBook(ctx context.Context, b models.Book) (*models.Book, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, err := s.Books.InsertOne(ctx, b); err != nil {
		return nil, store.Fail("insert book", err)
	}
	return &b, nil
}

func (s *Store) UpdateBook(ctx context.Context, id string, p store.BookPatch) (*models.Book, error) {
	set := bookPatchSet(p)
	set["updated_at"] = time.Now().UTC()

	var b models.Book
	err := s.Books.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Fail("update book", err)
	}
	return &b, nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.Books.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Fail("delete book", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AdjustAvailable applies delta as a single conditional $inc so the
// 0 <= available <= total invariant holds under concurrent issue/return
// calls. The bound check sits in the update filter; a miss is then told
// apart from a missing book by re-reading.
func (s *Store) AdjustAvailable(ctx context.Context, id string, delta int) (*models.Book, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["available"] = bson.M{"$gte": -delta}
	} else {
		filter["$expr"] = bson.M{
			"$lte": bson.A{bson.M{"$add": bson.A{"$available", delta}}, "$total"},
		}
	}

	var b models.Book
	err := s.Books.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{"available": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.Fail("adjust available", err)
	}

	if _, getErr := s.GetBook(ctx, id); getErr != nil {
		return nil, getErr
	}
	if delta < 0 {
		return nil, store.ErrCopiesExhausted
	}
	return nil, store.ErrCopiesExceedTotal
}

func (s *Store) QueryLoans(ctx context.Context, f store.LoanFilter) ([]models.Loan, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.StudentID != "" {
		filter["student_id"] = f.StudentID
	}
	if f.BookID != "" {
		filter["book_id"] = f.BookID
	}
	if !f.DueBefore.IsZero() {
		filter["due_date"] = bson.M{"$lt": f.DueBefore}
	}

	cursor, err := s.Loans.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "issue_date", Value: -1}}))
	if err != nil {
		return nil, store.Fail("query loans", err)
	}
	defer cursor.Close(ctx)

	var loans []models.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, store.Fail("decode loans", err)
	}
	return loans, nil
}

func (s *Store) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	err := s.Loans.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Fail("get loan", err)
	}
	return &l, nil
}

func (s *Store) InsertLoan(ctx context.Context, l models.Loan) (*models.Loan, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, err := s.Loans.InsertOne(ctx, l); err != nil {
		return nil, store.Fail("insert loan", err)
	}
	return &l, nil
}

func (s *Store) UpdateLoan(ctx context.Context, id string, p store.LoanPatch) (*models.Loan, error) {
	set := bson.M{}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.ReturnDate != nil {
		set["return_date"] = *p.ReturnDate
	}
	if p.DueDate != nil {
		set["due_date"] = *p.DueDate
	}
	if p.Renewals != nil {
		set["renewals"] = *p.Renewals
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if p.ClearReturnDate {
		update["$unset"] = bson.M{"return_date": ""}
	}
	filter := bson.M{"_id": id}
	if p.IfStatus != "" {
		filter["status"] = p.IfStatus
	}

	var l models.Loan
	err := s.Loans.FindOneAndUpdate(ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Fail("update loan", err)
	}
	return &l, nil
}

func (s *Store) QueryProfiles(ctx context.Context, f store.ProfileFilter) ([]models.UserProfile, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}

	cursor, err := s.Profiles.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, store.Fail("query profiles", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.UserProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, store.Fail("decode profiles", err)
	}
	return profiles, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.Profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Fail("get profile", err)
	}
	return &p, nil
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.Profiles.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Fail("get profile by email", err)
	}
	return &p, nil
}

func (s *Store) InsertProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, err := s.Profiles.InsertOne(ctx, p); err != nil {
		return nil, store.Fail("insert profile", err)
	}
	return &p, nil
}

func (s *Store) InsertAuditLog(ctx context.Context, entry models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, err := s.Audit.InsertOne(ctx, entry); err != nil {
		return store.Fail("insert audit log", err)
	}
	return nil
}

func bookPatchSet(p store.BookPatch) bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.SubTitle != nil {
		set["sub_title"] = *p.SubTitle
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.Author2 != nil {
		set["author2"] = *p.Author2
	}
	if p.ISBN != nil {
		set["isbn"] = *p.ISBN
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Available != nil {
		set["available"] = *p.Available
	}
	if p.Total != nil {
		set["total"] = *p.Total
	}
	if p.ClassNumber != nil {
		set["class_number"] = *p.ClassNumber
	}
	if p.BookNumber != nil {
		set["book_number"] = *p.BookNumber
	}
	if p.Edition != nil {
		set["edition"] = *p.Edition
	}
	if p.Publisher != nil {
		set["publisher"] = *p.Publisher
	}
	if p.YearOfPublication != nil {
		set["year_of_publication"] = *p.YearOfPublication
	}
	if p.Subject != nil {
		set["subject"] = *p.Subject
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Vendor != nil {
		set["vendor"] = *p.Vendor
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.CallNo != nil {
		set["call_no"] = *p.CallNo
	}
	if p.AccessionNo != nil {
		set["accession_no"] = *p.AccessionNo
	}
	return set
}
