package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/auth"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/metrics"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/websocket"
	"github.com/black-roland/homeassistant-yandex-speechkit/usecase"
)

// uploadChunkSize is the size of audio chunks read from an STT upload body
const uploadChunkSize = 4096

// EntryManager runs the setup step and options flow of config entries
type EntryManager interface {
	CreateEntry(ctx context.Context, apiKey string) (*entities.ConfigEntry, error)
	GetEntry(ctx context.Context, id string) (*entities.ConfigEntry, error)
	ListEntries(ctx context.Context) ([]*entities.ConfigEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	StartOptionsFlow(ctx context.Context, entryID string) (*usecase.FlowResult, error)
	SubmitOptionsFlow(ctx context.Context, flowID string, input map[string]interface{}) (*usecase.FlowResult, error)
}

// SpeechRunner runs the speech adapters of config entries
type SpeechRunner interface {
	Capabilities(ctx context.Context, entryID string) (entities.STTCapabilities, error)
	Transcribe(ctx context.Context, entryID string, metadata entities.SpeechMetadata, audio <-chan []byte) (entities.SpeechResult, error)
	Synthesize(ctx context.Context, entryID, message, language string, options map[string]interface{}) (entities.TTSAudio, error)
	Proxy(ctx context.Context, entryID, message, language string, options map[string]interface{}) (entities.TTSAudio, error)
	TextToSpeech(ctx context.Context, entryID string) (repositories.TextToSpeech, error)
}

// Handlers holds what the routes need. A nil Issuer disables authentication.
type Handlers struct {
	Entries  EntryManager
	Speech   SpeechRunner
	Hub      *websocket.Hub
	Issuer   *auth.Issuer
	TokenTTL time.Duration
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handlers) {
	if h.Metrics != nil {
		e.Use(MetricsMiddleware(h.Metrics))
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "yandex-speechkit",
		})
	})

	e.POST("/api/v1/auth/token", h.issueToken)

	var guarded []echo.MiddlewareFunc
	if h.Issuer != nil {
		guarded = append(guarded, JWTMiddleware(h.Issuer, h.Logger))
	}

	// API v1 routes
	v1 := e.Group("/api/v1", guarded...)

	// Config entry APIs
	v1.POST("/entries", h.createEntry)
	v1.GET("/entries", h.listEntries)
	v1.GET("/entries/:id", h.getEntry)
	v1.DELETE("/entries/:id", h.deleteEntry)

	// Options flow APIs
	v1.POST("/entries/:id/options", h.startOptionsFlow)
	v1.POST("/flows/:flow_id", h.submitOptionsFlow)

	// Speech APIs
	v1.GET("/entries/:id/stt", h.sttCapabilities)
	v1.POST("/entries/:id/stt", h.transcribe)
	v1.GET("/entries/:id/tts", h.ttsInfo)
	v1.POST("/entries/:id/tts", h.synthesize)
	v1.POST("/entries/:id/proxy", h.proxy)

	// Streaming STT
	e.GET("/ws/entries/:id/stt", h.streamTranscribe, guarded...)
}

func (h *Handlers) issueToken(c echo.Context) error {
	if h.Issuer == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "auth_disabled",
			Message: "Authentication is disabled on this server",
		})
	}

	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		h.Logger.Error("Failed to bind token request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.ClientID == "" || req.ClientSecret == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Client ID and client secret are required",
		})
	}

	token, err := h.Issuer.Authenticate(req.ClientID, req.ClientSecret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Logger.Warn("Client authentication failed", zap.String("client_id", req.ClientID))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "authentication_failed",
				Message: "Invalid client credentials",
			})
		}
		h.Logger.Error("Failed to generate client token", zap.String("client_id", req.ClientID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	h.Logger.Info("Client authenticated successfully", zap.String("client_id", req.ClientID))

	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(h.TokenTTL),
	})
}

func (h *Handlers) createEntry(c echo.Context) error {
	var req CreateEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	entry, err := h.Entries.CreateEntry(c.Request().Context(), req.APIKey)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handlers) listEntries(c echo.Context) error {
	entries, err := h.Entries.ListEntries(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, EntryListResponse{Entries: entries})
}

func (h *Handlers) getEntry(c echo.Context) error {
	entry, err := h.Entries.GetEntry(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handlers) deleteEntry(c echo.Context) error {
	if err := h.Entries.DeleteEntry(c.Request().Context(), c.Param("id")); err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) startOptionsFlow(c echo.Context) error {
	result, err := h.Entries.StartOptionsFlow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handlers) submitOptionsFlow(c echo.Context) error {
	input := make(map[string]interface{})
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	result, err := h.Entries.SubmitOptionsFlow(c.Request().Context(), c.Param("flow_id"), input)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handlers) sttCapabilities(c echo.Context) error {
	caps, err := h.Speech.Capabilities(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, caps)
}

func (h *Handlers) transcribe(c echo.Context) error {
	metadata, err := ParseSpeechContent(c.Request().Header.Get(SpeechContentHeader))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_speech_content",
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	audio := make(chan []byte)
	go h.readChunks(ctx, cancel, c.Request().Body, audio)

	result, err := h.Speech.Transcribe(ctx, c.Param("id"), metadata, audio)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// readChunks delivers body on audio in fixed size chunks. A read failure
// cancels the recognition instead of finishing it with partial audio.
func (h *Handlers) readChunks(ctx context.Context, cancel context.CancelFunc, body io.Reader, audio chan<- []byte) {
	defer close(audio)

	for {
		buf := make([]byte, uploadChunkSize)
		n, err := io.ReadFull(body, buf)
		if n > 0 {
			select {
			case audio <- buf[:n]:
			case <-ctx.Done():
				return
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return
		}
		if err != nil {
			h.Logger.Warn("Failed to read audio upload", zap.Error(err))
			cancel()
			return
		}
	}
}

func (h *Handlers) ttsInfo(c echo.Context) error {
	provider, err := h.Speech.TextToSpeech(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, ProviderInfo{
		DefaultLanguage:    provider.DefaultLanguage(),
		SupportedLanguages: provider.SupportedLanguages(),
		SupportedOptions:   provider.SupportedOptions(),
	})
}

func (h *Handlers) synthesize(c echo.Context) error {
	return h.speak(c, h.Speech.Synthesize)
}

func (h *Handlers) proxy(c echo.Context) error {
	return h.speak(c, h.Speech.Proxy)
}

type speakFunc func(ctx context.Context, entryID, message, language string, options map[string]interface{}) (entities.TTSAudio, error)

func (h *Handlers) speak(c echo.Context, speak speakFunc) error {
	var req SynthesisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Message is required",
		})
	}

	audio, err := speak(c.Request().Context(), c.Param("id"), req.Message, req.Language, req.Options)
	if err != nil {
		return h.errorResponse(c, err)
	}
	if !audio.OK() {
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "synthesis_failed",
			Message: "No audio was produced",
		})
	}

	return c.Blob(http.StatusOK, ContentTypeFor(audio.Extension), audio.Data)
}

func (h *Handlers) streamTranscribe(c echo.Context) error {
	entryID := c.Param("id")
	if _, err := h.Entries.GetEntry(c.Request().Context(), entryID); err != nil {
		return h.errorResponse(c, err)
	}
	return websocket.HandleWebSocket(h.Hub, c, entryID, h.Logger)
}

// errorResponse translates service errors into HTTP responses
func (h *Handlers) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repositories.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "entry_not_found", Message: err.Error()})
	case errors.Is(err, usecase.ErrFlowNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "flow_not_found", Message: err.Error()})
	case errors.Is(err, usecase.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_input", Message: err.Error()})
	default:
		h.Logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Internal server error"})
	}
}
