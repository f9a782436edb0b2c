package entities

import "testing"

func TestNewConfigEntry(t *testing.T) {
	entry, err := NewConfigEntry("secret-key")
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	if entry.Title != EntryTitle {
		t.Errorf("Expected title %s, got %s", EntryTitle, entry.Title)
	}

	if entry.APIKey() != "secret-key" {
		t.Errorf("Expected api key secret-key, got %s", entry.APIKey())
	}

	if entry.Version != 1 || entry.MinorVersion != 2 {
		t.Errorf("Expected version 1.2, got %d.%d", entry.Version, entry.MinorVersion)
	}

	if len(entry.Options) != 0 {
		t.Errorf("Expected empty options, got %v", entry.Options)
	}
}

func TestNewConfigEntryRequiresAPIKey(t *testing.T) {
	if _, err := NewConfigEntry(""); err == nil {
		t.Error("Expected error for empty api key")
	}
}

func TestStoredOptionsReturnsCopy(t *testing.T) {
	entry, _ := NewConfigEntry("key")
	entry.Options[ConfTTSVoice] = "alena"

	options := entry.StoredOptions()
	options[ConfTTSVoice] = "john"

	if entry.Options[ConfTTSVoice] != "alena" {
		t.Errorf("Stored options were modified through the copy: %v", entry.Options)
	}
}
