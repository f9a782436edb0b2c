package entities

import (
	"errors"
	"time"
)

const (
	// EntryTitle is the title every SpeechKit config entry is created with
	EntryTitle = "Yandex SpeechKit"

	EntryVersion      = 1
	EntryMinorVersion = 2
)

// EntryData holds the immutable setup data of a config entry
type EntryData struct {
	APIKey string `json:"api_key" bson:"api_key"`
}

// ConfigEntry represents one configured SpeechKit account
type ConfigEntry struct {
	ID           string                 `json:"id" bson:"_id"`
	Title        string                 `json:"title" bson:"title"`
	Data         EntryData              `json:"-" bson:"data"`
	Options      map[string]interface{} `json:"options" bson:"options"`
	Version      int                    `json:"version" bson:"version"`
	MinorVersion int                    `json:"minor_version" bson:"minor_version"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at" bson:"updated_at"`
}

// NewConfigEntry creates an entry from the setup step input
func NewConfigEntry(apiKey string) (*ConfigEntry, error) {
	entry := &ConfigEntry{
		Title:        EntryTitle,
		Data:         EntryData{APIKey: apiKey},
		Options:      make(map[string]interface{}),
		Version:      EntryVersion,
		MinorVersion: EntryMinorVersion,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Validate checks the required setup data
func (e *ConfigEntry) Validate() error {
	if e.Data.APIKey == "" {
		return errors.New("api key is required")
	}
	if e.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

// APIKey returns the SpeechKit API key of the entry
func (e *ConfigEntry) APIKey() string {
	return e.Data.APIKey
}

// StoredOptions returns a copy of the options saved by the options flow
func (e *ConfigEntry) StoredOptions() map[string]interface{} {
	options := make(map[string]interface{}, len(e.Options))
	for k, v := range e.Options {
		options[k] = v
	}
	return options
}
