package repositories

import (
	"context"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
)

// EntryConfig supplies the credentials and saved options of one config entry
type EntryConfig interface {
	APIKey() string
	StoredOptions() map[string]interface{}
}

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// ProcessAudioStream recognizes speech from chunks until the channel is closed
	ProcessAudioStream(ctx context.Context, metadata entities.SpeechMetadata, chunks <-chan []byte) entities.SpeechResult
	// Capabilities returns the statically supported audio parameters
	Capabilities() entities.STTCapabilities
}

// TextToSpeech abstracts speech synthesis services
type TextToSpeech interface {
	// GetTTSAudio returns audio for message, or the zero TTSAudio on failure
	GetTTSAudio(ctx context.Context, message, language string, options map[string]interface{}) entities.TTSAudio
	DefaultLanguage() string
	SupportedLanguages() []string
	SupportedOptions() []string
}

// PlayMediaRequest is the payload of a media_player.play_media service call
type PlayMediaRequest struct {
	EntityID    string `json:"entity_id"`
	ContentID   string `json:"media_content_id"`
	ContentType string `json:"media_content_type"`
}

// MediaPlayer invokes playback on a host media player and waits for it
type MediaPlayer interface {
	PlayMedia(ctx context.Context, req PlayMediaRequest) error
}
