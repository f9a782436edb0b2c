package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

func newEntry(t *testing.T, apiKey string) *entities.ConfigEntry {
	t.Helper()
	entry, err := entities.NewConfigEntry(apiKey)
	if err != nil {
		t.Fatalf("Failed to build entry: %v", err)
	}
	return entry
}

func TestMemoryEntryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEntryRepository()

	entry := newEntry(t, "key-1")
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Expected generated ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	retrieved, err := repo.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if retrieved.APIKey() != "key-1" {
		t.Errorf("Expected api key key-1, got %s", retrieved.APIKey())
	}
	if retrieved.Title != entities.EntryTitle {
		t.Errorf("Expected title %s, got %s", entities.EntryTitle, retrieved.Title)
	}
}

func TestMemoryEntryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEntryRepository()

	entry := newEntry(t, "key-1")
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	entry.Options["tts_voice"] = "alena"
	retrieved, _ := repo.GetByID(ctx, entry.ID)
	if _, ok := retrieved.Options["tts_voice"]; ok {
		t.Error("Stored entry changed through caller copy")
	}

	retrieved.Options["tts_voice"] = "filipp"
	again, _ := repo.GetByID(ctx, entry.ID)
	if _, ok := again.Options["tts_voice"]; ok {
		t.Error("Stored entry changed through returned copy")
	}
}

func TestMemoryEntryRepository_Validation(t *testing.T) {
	repo := NewMemoryEntryRepository()

	if err := repo.Create(context.Background(), nil); err == nil {
		t.Error("Expected error for nil entry")
	}
	if err := repo.Create(context.Background(), &entities.ConfigEntry{Title: entities.EntryTitle}); err == nil {
		t.Error("Expected error for entry without api key")
	}
}

func TestMemoryEntryRepository_UpdateOptions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEntryRepository()

	entry := newEntry(t, "key-1")
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	time.Sleep(time.Millisecond)
	options := map[string]interface{}{"tts_voice": "alena", "tts_unsafe": true}
	if err := repo.UpdateOptions(ctx, entry.ID, options); err != nil {
		t.Fatalf("Failed to update options: %v", err)
	}

	retrieved, _ := repo.GetByID(ctx, entry.ID)
	if retrieved.Options["tts_voice"] != "alena" {
		t.Errorf("Expected voice alena, got %v", retrieved.Options["tts_voice"])
	}
	if !retrieved.UpdatedAt.After(retrieved.CreatedAt) {
		t.Error("Expected UpdatedAt to advance")
	}

	err := repo.UpdateOptions(ctx, "missing", options)
	if !errors.Is(err, repositories.ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}
}

func TestMemoryEntryRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEntryRepository()

	first := newEntry(t, "key-1")
	second := newEntry(t, "key-2")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Fatalf("Unexpected list result: %+v", entries)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}
	if _, err := repo.GetByID(ctx, first.ID); !errors.Is(err, repositories.ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, repositories.ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound on second delete, got %v", err)
	}
}
