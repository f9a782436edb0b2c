package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
)

func TestMessageValidator_ValidateListeningStart(t *testing.T) {
	validator := NewMessageValidator(entities.DefaultSTTCapabilities())

	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{
			name:    "valid pcm",
			message: `{"type": "listening_start", "language": "ru-RU", "format": "wav", "codec": "pcm", "sample_rate": 16000, "bit_rate": 16, "channel": 1}`,
		},
		{
			name:    "defaults",
			message: `{"type": "listening_start"}`,
		},
		{
			name:    "valid opus",
			message: `{"type": "listening_start", "language": "en-US", "format": "ogg", "codec": "opus", "sample_rate": 48000}`,
		},
		{
			name:    "unsupported language",
			message: `{"type": "listening_start", "language": "xx-XX"}`,
			wantErr: true,
		},
		{
			name:    "unsupported sample rate",
			message: `{"type": "listening_start", "sample_rate": 12345}`,
			wantErr: true,
		},
		{
			name:    "stereo",
			message: `{"type": "listening_start", "channel": 2}`,
			wantErr: true,
		},
		{
			name:    "invalid codec",
			message: `{"type": "listening_start", "codec": "mp3"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.ValidateMessage([]byte(tt.message))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageValidator_Types(t *testing.T) {
	validator := NewMessageValidator(entities.DefaultSTTCapabilities())

	msg, err := validator.ValidateMessage([]byte(`{"type": "listening_end"}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := msg.(*ListeningEndMessage); !ok {
		t.Errorf("Expected *ListeningEndMessage, got %T", msg)
	}

	msg, err = validator.ValidateMessage([]byte(`{"type": "ping", "data": "hi"}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ping, ok := msg.(*PingMessage); !ok || ping.Data != "hi" {
		t.Errorf("Expected ping with data, got %#v", msg)
	}

	if _, err := validator.ValidateMessage([]byte(`{"type": "audio_chunk"}`)); err == nil {
		t.Error("Expected error for unsupported type")
	}
	if _, err := validator.ValidateMessage([]byte(`not json`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestListeningStartMessage_Metadata(t *testing.T) {
	msg := &ListeningStartMessage{Language: "ru-RU"}
	meta := msg.Metadata()

	want := entities.SpeechMetadata{
		Language:   "ru-RU",
		Format:     entities.AudioFormatWAV,
		Codec:      entities.AudioCodecPCM,
		SampleRate: 16000,
		BitRate:    16,
		Channel:    1,
	}
	if meta != want {
		t.Errorf("Metadata() = %+v, want %+v", meta, want)
	}
}

func TestCreateTranscriptMessage(t *testing.T) {
	msg := CreateTranscriptMessage("session-1", entities.SpeechSuccess("привет"), 3, 1500*time.Millisecond)

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded["type"] != string(MessageTypeTranscript) {
		t.Errorf("Expected type transcript, got %v", decoded["type"])
	}
	if decoded["session_id"] != "session-1" || decoded["text"] != "привет" || decoded["state"] != "success" {
		t.Errorf("Unexpected transcript payload: %v", decoded)
	}
	if decoded["duration_ms"] != float64(1500) || decoded["chunks"] != float64(3) {
		t.Errorf("Unexpected counters: %v", decoded)
	}
}

func TestCreateErrorMessage(t *testing.T) {
	msg := CreateErrorMessage("s", ErrorCodeNoSession, "no session", "details")

	if msg.Type != MessageTypeError {
		t.Errorf("Expected type error, got %s", msg.Type)
	}
	if msg.Code != ErrorCodeNoSession || msg.Details != "details" {
		t.Errorf("Unexpected error message: %+v", msg)
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Errorf("Invalid timestamp format: %v", err)
	}
}
