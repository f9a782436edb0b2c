package repositories

import (
	"context"
	"errors"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
)

// ErrEntryNotFound is returned when no config entry has the requested ID
var ErrEntryNotFound = errors.New("config entry not found")

// EntryRepository defines data access methods for config entries
type EntryRepository interface {
	Create(ctx context.Context, entry *entities.ConfigEntry) error
	GetByID(ctx context.Context, id string) (*entities.ConfigEntry, error)
	List(ctx context.Context) ([]*entities.ConfigEntry, error)
	// UpdateOptions replaces the options of an entry
	UpdateOptions(ctx context.Context, id string, options map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}
