package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

// EntryCollection is the collection config entries are stored in
const EntryCollection = "config_entries"

type EntryRepository struct {
	collection *mongo.Collection
}

// Ensure EntryRepository implements the EntryRepository interface
var _ repositories.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new MongoDB config entry repository
func NewEntryRepository(db *mongo.Database) *EntryRepository {
	return &EntryRepository{
		collection: db.Collection(EntryCollection),
	}
}

// Create implements repositories.EntryRepository
func (r *EntryRepository) Create(ctx context.Context, entry *entities.ConfigEntry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Options == nil {
		entry.Options = make(map[string]interface{})
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// GetByID implements repositories.EntryRepository
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*entities.ConfigEntry, error) {
	var entry entities.ConfigEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry %s: %w", id, err)
	}
	return &entry, nil
}

// List implements repositories.EntryRepository
func (r *EntryRepository) List(ctx context.Context) ([]*entities.ConfigEntry, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*entities.ConfigEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

// UpdateOptions implements repositories.EntryRepository
func (r *EntryRepository) UpdateOptions(ctx context.Context, id string, opts map[string]interface{}) error {
	update := bson.M{
		"$set": bson.M{
			"options":    opts,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update entry options: %w", err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrEntryNotFound
	}
	return nil
}

// Delete implements repositories.EntryRepository
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return repositories.ErrEntryNotFound
	}
	return nil
}
