package mongo

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

// TestEntryRepository_Integration requires a running MongoDB instance
// (skipped if MONGODB_URI is not set)
func TestEntryRepository_Integration(t *testing.T) {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration test - MONGODB_URI not set")
	}

	ctx := context.Background()
	logger, _ := zap.NewDevelopment()

	client, err := NewClient(ctx, mongoURI, "speechkit_test", logger)
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(ctx)
	defer client.Database.Drop(ctx)

	repo := NewEntryRepository(client.Database)

	t.Run("CreateAndGetEntry", func(t *testing.T) {
		entry, _ := entities.NewConfigEntry("mongo-key")
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}

		retrieved, err := repo.GetByID(ctx, entry.ID)
		if err != nil {
			t.Fatalf("Failed to get entry: %v", err)
		}
		if retrieved.APIKey() != "mongo-key" {
			t.Errorf("Expected api key mongo-key, got %s", retrieved.APIKey())
		}
		if retrieved.MinorVersion != entities.EntryMinorVersion {
			t.Errorf("Expected minor version %d, got %d", entities.EntryMinorVersion, retrieved.MinorVersion)
		}
	})

	t.Run("UpdateOptions", func(t *testing.T) {
		entry, _ := entities.NewConfigEntry("mongo-key-2")
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}

		err := repo.UpdateOptions(ctx, entry.ID, map[string]interface{}{"tts_voice": "alena", "tts_unsafe": true})
		if err != nil {
			t.Fatalf("Failed to update options: %v", err)
		}

		retrieved, _ := repo.GetByID(ctx, entry.ID)
		opts := entities.ResolveOptions(retrieved.StoredOptions())
		if opts.Voice != "alena" || !opts.Unsafe {
			t.Errorf("Unexpected options after update: %+v", opts)
		}
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		entries, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list entries: %v", err)
		}
		if len(entries) < 2 {
			t.Fatalf("Expected at least 2 entries, got %d", len(entries))
		}

		if err := repo.Delete(ctx, entries[0].ID); err != nil {
			t.Fatalf("Failed to delete entry: %v", err)
		}
		if _, err := repo.GetByID(ctx, entries[0].ID); !errors.Is(err, repositories.ErrEntryNotFound) {
			t.Errorf("Expected ErrEntryNotFound, got %v", err)
		}
	})

	t.Run("MissingEntry", func(t *testing.T) {
		if err := repo.UpdateOptions(ctx, "missing", nil); !errors.Is(err, repositories.ErrEntryNotFound) {
			t.Errorf("Expected ErrEntryNotFound, got %v", err)
		}
	})
}
