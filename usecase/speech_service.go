package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/adapters/stt"
	"github.com/black-roland/homeassistant-yandex-speechkit/adapters/tts"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/metrics"
)

// SpeechService builds the SpeechKit adapters of a config entry and runs them
type SpeechService struct {
	entries repositories.EntryRepository
	kit     repositories.SpeechKit
	player  repositories.MediaPlayer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSpeechService creates a new speech service
func NewSpeechService(
	entries repositories.EntryRepository,
	kit repositories.SpeechKit,
	player repositories.MediaPlayer,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SpeechService {
	return &SpeechService{
		entries: entries,
		kit:     kit,
		player:  player,
		metrics: m,
		logger:  logger,
	}
}

// Capabilities returns what the recognizer of an entry accepts
func (s *SpeechService) Capabilities(ctx context.Context, entryID string) (entities.STTCapabilities, error) {
	recognizer, err := s.SpeechToText(ctx, entryID)
	if err != nil {
		return entities.STTCapabilities{}, err
	}
	return recognizer.Capabilities(), nil
}

// SpeechToText returns the recognizer of an entry
func (s *SpeechService) SpeechToText(ctx context.Context, entryID string) (repositories.SpeechToText, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return stt.NewYandexSpeechToText(s.kit, entry, s.metrics, s.logger.With(zap.String("entryID", entryID))), nil
}

// Transcribe recognizes the chunks delivered on audio. Metadata the recognizer
// does not support is rejected before any call is made.
func (s *SpeechService) Transcribe(ctx context.Context, entryID string, metadata entities.SpeechMetadata, audio <-chan []byte) (entities.SpeechResult, error) {
	recognizer, err := s.SpeechToText(ctx, entryID)
	if err != nil {
		return entities.SpeechResult{}, err
	}
	if err := recognizer.Capabilities().CheckMetadata(metadata); err != nil {
		return entities.SpeechResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return recognizer.ProcessAudioStream(ctx, metadata, audio), nil
}

// TextToSpeech returns the SpeechKit synthesizer of an entry
func (s *SpeechService) TextToSpeech(ctx context.Context, entryID string) (repositories.TextToSpeech, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return tts.NewYandexTextToSpeech(s.kit, entry, s.metrics, s.logger.With(zap.String("entryID", entryID))), nil
}

// Synthesize speaks message with the SpeechKit voice of an entry
func (s *SpeechService) Synthesize(ctx context.Context, entryID, message, language string, options map[string]interface{}) (entities.TTSAudio, error) {
	synthesizer, err := s.TextToSpeech(ctx, entryID)
	if err != nil {
		return entities.TTSAudio{}, err
	}
	return synthesizer.GetTTSAudio(ctx, message, language, options), nil
}

// Proxy hands message to the Yandex.Station configured on an entry
func (s *SpeechService) Proxy(ctx context.Context, entryID, message, language string, options map[string]interface{}) (entities.TTSAudio, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return entities.TTSAudio{}, err
	}

	proxy := tts.NewProxyTextToSpeech(s.player, entry, nil, s.metrics, s.logger.With(zap.String("entryID", entryID)))
	return proxy.GetTTSAudio(ctx, message, language, options), nil
}
