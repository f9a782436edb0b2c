package adapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

// MemoryEntryRepository keeps config entries in process memory.
// Entries are lost on restart.
type MemoryEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*entities.ConfigEntry
}

// Ensure MemoryEntryRepository implements the EntryRepository interface
var _ repositories.EntryRepository = (*MemoryEntryRepository)(nil)

// NewMemoryEntryRepository creates a new in-memory entry repository
func NewMemoryEntryRepository() *MemoryEntryRepository {
	return &MemoryEntryRepository{
		entries: make(map[string]*entities.ConfigEntry),
	}
}

// Create implements EntryRepository interface
func (m *MemoryEntryRepository) Create(ctx context.Context, entry *entities.ConfigEntry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if _, exists := m.entries[entry.ID]; exists {
		return errors.New("entry with this ID already exists")
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	m.entries[entry.ID] = copyEntry(entry)
	return nil
}

// GetByID implements EntryRepository interface
func (m *MemoryEntryRepository) GetByID(ctx context.Context, id string) (*entities.ConfigEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[id]
	if !exists {
		return nil, repositories.ErrEntryNotFound
	}
	return copyEntry(entry), nil
}

// List implements EntryRepository interface. Entries are ordered by creation time.
func (m *MemoryEntryRepository) List(ctx context.Context) ([]*entities.ConfigEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.ConfigEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		result = append(result, copyEntry(entry))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateOptions implements EntryRepository interface
func (m *MemoryEntryRepository) UpdateOptions(ctx context.Context, id string, options map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[id]
	if !exists {
		return repositories.ErrEntryNotFound
	}

	updated := copyEntry(entry)
	updated.Options = copyOptions(options)
	updated.UpdatedAt = time.Now()
	m.entries[id] = updated
	return nil
}

// Delete implements EntryRepository interface
func (m *MemoryEntryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[id]; !exists {
		return repositories.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func copyEntry(entry *entities.ConfigEntry) *entities.ConfigEntry {
	entryCopy := *entry
	entryCopy.Options = copyOptions(entry.Options)
	return &entryCopy
}

func copyOptions(options map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(options))
	for k, v := range options {
		result[k] = v
	}
	return result
}
