package homeassistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

func TestPlayMedia(t *testing.T) {
	var got repositories.PlayMediaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, playMediaPath, r.URL.Path)
		assert.Equal(t, "Bearer ha-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	player := NewMediaPlayer(Config{BaseURL: server.URL + "/", Token: "ha-token"}, zaptest.NewLogger(t))

	err := player.PlayMedia(context.Background(), repositories.PlayMediaRequest{
		EntityID:    "media_player.station",
		ContentID:   "привет",
		ContentType: "tts",
	})

	require.NoError(t, err)
	assert.Equal(t, "media_player.station", got.EntityID)
	assert.Equal(t, "привет", got.ContentID)
	assert.Equal(t, "tts", got.ContentType)
}

func TestPlayMediaWireFormat(t *testing.T) {
	var raw map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer server.Close()

	player := NewMediaPlayer(Config{BaseURL: server.URL}, zaptest.NewLogger(t))
	require.NoError(t, player.PlayMedia(context.Background(), repositories.PlayMediaRequest{
		EntityID: "media_player.station", ContentID: "hi", ContentType: "text",
	}))

	assert.Equal(t, map[string]string{
		"entity_id":          "media_player.station",
		"media_content_id":   "hi",
		"media_content_type": "text",
	}, raw)
}

func TestPlayMediaErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "entity not found", http.StatusBadRequest)
	}))
	defer server.Close()

	player := NewMediaPlayer(Config{BaseURL: server.URL}, zaptest.NewLogger(t))
	err := player.PlayMedia(context.Background(), repositories.PlayMediaRequest{EntityID: "media_player.missing"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "entity not found")
}

func TestPlayMediaTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	player := NewMediaPlayer(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, zaptest.NewLogger(t))
	err := player.PlayMedia(context.Background(), repositories.PlayMediaRequest{EntityID: "media_player.station"})

	assert.Error(t, err)
}

func TestNewMediaPlayerDefaults(t *testing.T) {
	player := NewMediaPlayer(Config{}, zaptest.NewLogger(t))

	assert.Equal(t, DefaultConfig().BaseURL, player.config.BaseURL)
	assert.Equal(t, 30*time.Second, player.config.Timeout)
}
