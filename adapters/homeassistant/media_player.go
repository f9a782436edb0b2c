package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

const playMediaPath = "/api/services/media_player/play_media"

// Config holds Home Assistant REST API settings
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// DefaultConfig returns default settings for a local Home Assistant
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://homeassistant.local:8123",
		Timeout: 30 * time.Second,
	}
}

// MediaPlayer invokes media_player.play_media through the Home Assistant REST API.
// The service call blocks until the player accepts the media.
type MediaPlayer struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure MediaPlayer implements the MediaPlayer interface
var _ repositories.MediaPlayer = (*MediaPlayer)(nil)

// NewMediaPlayer creates a new Home Assistant media player client
func NewMediaPlayer(config Config, logger *zap.Logger) *MediaPlayer {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &MediaPlayer{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// PlayMedia implements repositories.MediaPlayer
func (m *MediaPlayer) PlayMedia(ctx context.Context, req repositories.PlayMediaRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal play_media request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+playMediaPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if m.config.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+m.config.Token)
	}

	m.logger.Debug("Calling media_player.play_media",
		zap.String("entityID", req.EntityID),
		zap.String("contentType", req.ContentType))

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call play_media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("play_media returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
