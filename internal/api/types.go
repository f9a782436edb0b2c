package api

import (
	"time"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
)

// TokenRequest represents the request payload for client authentication
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse represents the response payload for client authentication
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateEntryRequest is the setup step input
type CreateEntryRequest struct {
	APIKey string `json:"api_key"`
}

// EntryListResponse wraps a list of config entries
type EntryListResponse struct {
	Entries []*entities.ConfigEntry `json:"entries"`
}

// SynthesisRequest is the body of TTS and proxy calls
type SynthesisRequest struct {
	Message  string                 `json:"message"`
	Language string                 `json:"language,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// ProviderInfo describes what a TTS provider accepts
type ProviderInfo struct {
	DefaultLanguage    string   `json:"default_language"`
	SupportedLanguages []string `json:"supported_languages"`
	SupportedOptions   []string `json:"supported_options"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
