package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/princinho/o3dstudio/models"
	"github.com/princinho/o3dstudio/quoteform"
)

var ErrQuoteNotFound = errors.New("quote request not found")

// QuoteStore persists submitted project requests. It is the intake used when
// INTAKE_MODE=mongo and backs the admin review endpoints.
type QuoteStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewQuoteStore(db *mongo.Database) *QuoteStore {
	return &QuoteStore{col: db.Collection(QuoteRequestsCollection), now: time.Now}
}

// NewQuoteRecord builds the stored document for a submission.
func NewQuoteRecord(sub quoteform.Submission, now time.Time) models.QuoteRequest {
	created := sub.SubmittedAt
	if created.IsZero() {
		created = now
	}
	return models.QuoteRequest{
		FormID:     sub.FormID,
		Project:    sub.Request,
		Advisory:   sub.Advisory,
		Attachment: sub.Attachment,
		Status:     models.QuoteStatusNew,
		Notes:      []models.QuoteAdminNote{},
		CreatedAt:  created.UTC(),
		UpdatedAt:  now.UTC(),
	}
}

func (s *QuoteStore) Accept(ctx context.Context, sub quoteform.Submission) (quoteform.Acknowledgement, error) {
	doc := NewQuoteRecord(sub, s.now())
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return quoteform.Acknowledgement{}, fmt.Errorf("insert quote request: %w", err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return quoteform.Acknowledgement{}, fmt.Errorf("unexpected inserted id %T", res.InsertedID)
	}
	return quoteform.Acknowledgement{Reference: id.Hex(), ReceivedAt: doc.CreatedAt}, nil
}

type QuoteFilter struct {
	Status models.QuoteRequestStatus
	Email  string
	Query  string
}

// BSON turns the admin list filters into a Mongo query.
func (f QuoteFilter) BSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if email := strings.ToLower(strings.TrimSpace(f.Email)); email != "" {
		filter["project.email"] = bson.M{"$regex": "^" + regexp.QuoteMeta(email) + "$", "$options": "i"}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		escaped := regexp.QuoteMeta(q)
		filter["$or"] = bson.A{
			bson.M{"project.name": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"project.projectName": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"project.description": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"project.email": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}
	return filter
}

func (s *QuoteStore) List(ctx context.Context, f QuoteFilter, skip int64, limit int) ([]models.QuoteRequest, int64, error) {
	filter := f.BSON()
	opts := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find quote requests: %w", err)
	}
	defer cur.Close(ctx)

	items := []models.QuoteRequest{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode quote requests: %w", err)
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count quote requests: %w", err)
	}
	return items, total, nil
}

func (s *QuoteStore) Get(ctx context.Context, id bson.ObjectID) (*models.QuoteRequest, error) {
	var qr models.QuoteRequest
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&qr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("find quote request: %w", err)
	}
	return &qr, nil
}

// StatusUpdate builds the $set for a status change; QUOTED stamps quotedAt.
func StatusUpdate(status models.QuoteRequestStatus, now time.Time) bson.M {
	set := bson.M{
		"status":    string(status),
		"updatedAt": now,
	}
	if status == models.QuoteStatusQuoted {
		set["quotedAt"] = now
	}
	return bson.M{"$set": set}
}

func (s *QuoteStore) UpdateStatus(ctx context.Context, id bson.ObjectID, status models.QuoteRequestStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := s.col.UpdateByID(ctx, id, StatusUpdate(status, s.now().UTC()))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

// AddNote appends an admin note. A NEW request moves to IN_PROGRESS once the
// team starts writing on it.
func (s *QuoteStore) AddNote(ctx context.Context, id bson.ObjectID, note models.QuoteAdminNote) (models.QuoteAdminNote, error) {
	now := s.now().UTC()
	if note.ID.IsZero() {
		note.ID = bson.NewObjectID()
	}
	note.Content = strings.TrimSpace(note.Content)
	note.CreatedAt = now

	res, err := s.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return note, fmt.Errorf("add note: %w", err)
	}
	if res.MatchedCount == 0 {
		return note, ErrQuoteNotFound
	}

	_, err = s.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(models.QuoteStatusNew)},
		bson.M{"$set": bson.M{"status": string(models.QuoteStatusInProgress)}},
	)
	if err != nil {
		return note, fmt.Errorf("advance status: %w", err)
	}
	return note, nil
}
