package tts

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/metrics"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/speecherr"
)

// PlaceholderFile is the silent WAV returned after a proxied playback
const PlaceholderFile = "silence.wav"

//go:embed silence.wav
var placeholderFS embed.FS

// ProxyTextToSpeech hands text to a Yandex.Station media player instead of
// synthesizing it, and returns silence so the caller still gets audio.
type ProxyTextToSpeech struct {
	base
	player      repositories.MediaPlayer
	placeholder fs.FS
}

// Ensure ProxyTextToSpeech implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*ProxyTextToSpeech)(nil)

// NewProxyTextToSpeech creates a proxy bound to one config entry.
// A nil placeholder uses the embedded silence.wav.
func NewProxyTextToSpeech(player repositories.MediaPlayer, entry repositories.EntryConfig, placeholder fs.FS, m *metrics.Metrics, logger *zap.Logger) *ProxyTextToSpeech {
	if placeholder == nil {
		placeholder = placeholderFS
	}
	return &ProxyTextToSpeech{
		base:        base{entry: entry, metrics: m, logger: logger},
		player:      player,
		placeholder: placeholder,
	}
}

// GetTTSAudio plays message on the configured speaker and waits for it
func (p *ProxyTextToSpeech) GetTTSAudio(ctx context.Context, message, language string, options map[string]interface{}) entities.TTSAudio {
	started := time.Now()
	_, opts := p.resolve(language, options)

	if opts.ProxySpeaker == "" {
		return p.fail(metrics.AdapterProxy, speecherr.New(speecherr.ReasonProxyNoTarget, "no proxy speaker configured"), started)
	}

	p.logger.Debug("Proxying message to media player",
		zap.String("entityID", opts.ProxySpeaker),
		zap.String("mediaType", opts.ProxyMediaType))

	if err := p.player.PlayMedia(ctx, repositories.PlayMediaRequest{
		EntityID:    opts.ProxySpeaker,
		ContentID:   message,
		ContentType: opts.ProxyMediaType,
	}); err != nil {
		return p.fail(metrics.AdapterProxy, speecherr.Wrap(err, speecherr.ReasonProxyPlay), started)
	}

	silence, err := fs.ReadFile(p.placeholder, PlaceholderFile)
	if err != nil {
		return p.fail(metrics.AdapterProxy, speecherr.Wrap(
			fmt.Errorf("failed to read placeholder audio: %w", err), speecherr.ReasonProxyPlaceholder), started)
	}

	p.metrics.ObserveSuccess(metrics.AdapterProxy, started)
	return entities.TTSAudio{Extension: "wav", Data: silence}
}
