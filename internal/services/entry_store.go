package services

import (
	"context"
	"time"

	"github.com/Twahaaa/JOURNY/internal/apperr"
	"github.com/Twahaaa/JOURNY/internal/database"
	"github.com/Twahaaa/JOURNY/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const entryCollection = "journal_entries"

// EntryStore is the persistence contract the entry service orchestrates
// against. All operations except Create are keyed by entry id; ownership
// checks for reads happen in the service, deletion is owner-scoped here so
// a mismatched owner can never remove someone else's entry.
type EntryStore interface {
	Create(ctx context.Context, ownerID, content string) (*models.JournalEntry, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.JournalEntry, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error)
	UpdateAnalysis(ctx context.Context, id primitive.ObjectID, analysis models.Analysis) (*models.JournalEntry, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID, ownerID string) (*models.JournalEntry, error)
}

// MongoEntryStore persists journal entries in the journal_entries collection.
type MongoEntryStore struct{}

func NewMongoEntryStore() *MongoEntryStore {
	return &MongoEntryStore{}
}

func (s *MongoEntryStore) collection() (*mongo.Collection, error) {
	db, err := database.DB()
	if err != nil {
		return nil, apperr.Store(err)
	}
	return db.Collection(entryCollection), nil
}

// EnsureEntryIndexes configures indexes for the journal_entries collection.
// Called on startup from main after Mongo has connected.
func EnsureEntryIndexes(ctx context.Context) error {
	db, err := database.DB()
	if err != nil {
		return err
	}
	col := db.Collection(entryCollection)

	// Compound index on (owner_id, created_at) so per-user fetches stay
	// cheap even though ordering is applied after the fetch.
	model := mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_owner_created"),
	}

	_, err = col.Indexes().CreateOne(ctx, model)
	return err
}

// Create inserts a new PROCESSING entry with no analysis attached.
func (s *MongoEntryStore) Create(ctx context.Context, ownerID, content string) (*models.JournalEntry, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := models.JournalEntry{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Content:   content,
		Status:    models.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := col.InsertOne(ctx, entry); err != nil {
		return nil, apperr.Store(err)
	}
	return &entry, nil
}

func (s *MongoEntryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.JournalEntry, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	var entry models.JournalEntry
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Entry not found")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &entry, nil
}

// FindAllByOwner returns every entry for an owner. No sort is requested
// from the store; ordering is the caller's responsibility.
func (s *MongoEntryStore) FindAllByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer cursor.Close(ctx)

	var entries []models.JournalEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, apperr.Store(err)
	}
	return entries, nil
}

// UpdateAnalysis attaches the analysis as one object and moves the entry to
// COMPLETED. The analysis is never written piecemeal.
func (s *MongoEntryStore) UpdateAnalysis(ctx context.Context, id primitive.ObjectID, analysis models.Analysis) (*models.JournalEntry, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"analysis":   analysis,
			"status":     models.StatusCompleted,
			"updated_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entry models.JournalEntry
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Entry not found")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &entry, nil
}

// DeleteByID removes an entry only when the owner matches.
func (s *MongoEntryStore) DeleteByID(ctx context.Context, id primitive.ObjectID, ownerID string) (*models.JournalEntry, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	var entry models.JournalEntry
	err = col.FindOneAndDelete(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Entry not found or user not authorized")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &entry, nil
}
