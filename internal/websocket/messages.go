package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeListeningStart MessageType = "listening_start"
	MessageTypeListeningEnd   MessageType = "listening_end"
	MessageTypeTranscript     MessageType = "transcript"
	MessageTypePing           MessageType = "ping"
	MessageTypePong           MessageType = "pong"
	MessageTypeError          MessageType = "error"
)

// Error codes sent in ErrorMessage
const (
	ErrorCodeInvalidMessage   = "invalid_message"
	ErrorCodeSessionActive    = "session_active"
	ErrorCodeNoSession        = "no_session"
	ErrorCodeTranscribeFailed = "transcribe_failed"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	SessionID string      `json:"session_id,omitempty"`
}

// ListeningStartMessage opens a recognition session. The fields describe
// the binary frames that follow it.
type ListeningStartMessage struct {
	BaseMessage
	Language   string `json:"language"`
	Format     string `json:"format"`
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	BitRate    int    `json:"bit_rate"`
	Channel    int    `json:"channel"`
}

// Metadata returns the speech metadata the message describes.
// Missing fields fall back to 16 kHz mono 16-bit PCM WAV.
func (m *ListeningStartMessage) Metadata() entities.SpeechMetadata {
	meta := entities.SpeechMetadata{
		Language:   m.Language,
		Format:     entities.AudioFormat(m.Format),
		Codec:      entities.AudioCodec(m.Codec),
		SampleRate: m.SampleRate,
		BitRate:    m.BitRate,
		Channel:    m.Channel,
	}
	if meta.Format == "" {
		meta.Format = entities.AudioFormatWAV
	}
	if meta.Codec == "" {
		meta.Codec = entities.AudioCodecPCM
	}
	if meta.SampleRate == 0 {
		meta.SampleRate = 16000
	}
	if meta.BitRate == 0 {
		meta.BitRate = 16
	}
	if meta.Channel == 0 {
		meta.Channel = 1
	}
	return meta
}

// ListeningEndMessage closes the audio of the current session
type ListeningEndMessage struct {
	BaseMessage
}

// TranscriptMessage carries the result of a recognition session
type TranscriptMessage struct {
	BaseMessage
	Text       string                     `json:"text"`
	State      entities.SpeechResultState `json:"state"`
	Chunks     int                        `json:"chunks"`
	DurationMs int64                      `json:"duration_ms"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct {
	capabilities entities.STTCapabilities
}

// NewMessageValidator creates a validator that accepts what caps allows
func NewMessageValidator(caps entities.STTCapabilities) *MessageValidator {
	return &MessageValidator{capabilities: caps}
}

// ValidateMessage validates an incoming text message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeListeningStart:
		var msg ListeningStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid listening start message: %w", err)
		}
		if err := v.capabilities.CheckMetadata(msg.Metadata()); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeListeningEnd:
		var msg ListeningEndMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid listening end message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func newBase(t MessageType, sessionID string) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: time.Now().Format(time.RFC3339),
		SessionID: sessionID,
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(sessionID, code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError, sessionID),
		Code:        code,
		Message:     message,
		Details:     details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong, ""),
		Data:        data,
	}
}

// CreateTranscriptMessage creates the message that ends a recognition session
func CreateTranscriptMessage(sessionID string, result entities.SpeechResult, chunks int, elapsed time.Duration) *TranscriptMessage {
	return &TranscriptMessage{
		BaseMessage: newBase(MessageTypeTranscript, sessionID),
		Text:        result.Text,
		State:       result.State,
		Chunks:      chunks,
		DurationMs:  elapsed.Milliseconds(),
	}
}
