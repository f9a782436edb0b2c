package yandex

import (
	"context"
	"crypto/tls"
	"fmt"

	sttpb "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
	ttspb "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

const (
	DefaultSTTEndpoint = "stt.api.cloud.yandex.net:443"
	DefaultTTSEndpoint = "tts.api.cloud.yandex.net:443"
)

// Config holds configuration for the SpeechKit gRPC client
// Optional fields with defaults:
// - STTEndpoint: recognition endpoint (default: "stt.api.cloud.yandex.net:443")
// - TTSEndpoint: synthesis endpoint (default: "tts.api.cloud.yandex.net:443")
// - DialOptions: replace the TLS transport credentials, used by tests
type Config struct {
	STTEndpoint string
	TTSEndpoint string
	DialOptions []grpc.DialOption
}

// Client opens SpeechKit calls, one channel per call
type Client struct {
	sttEndpoint string
	ttsEndpoint string
	dialOptions []grpc.DialOption
	logger      *zap.Logger
}

// Ensure Client implements the SpeechKit interface
var _ repositories.SpeechKit = (*Client)(nil)

// NewClient creates a new SpeechKit client
func NewClient(config Config, logger *zap.Logger) *Client {
	sttEndpoint := config.STTEndpoint
	if sttEndpoint == "" {
		sttEndpoint = DefaultSTTEndpoint
	}

	ttsEndpoint := config.TTSEndpoint
	if ttsEndpoint == "" {
		ttsEndpoint = DefaultTTSEndpoint
	}

	dialOptions := config.DialOptions
	if len(dialOptions) == 0 {
		dialOptions = []grpc.DialOption{
			grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})),
		}
	}

	return &Client{
		sttEndpoint: sttEndpoint,
		ttsEndpoint: ttsEndpoint,
		dialOptions: dialOptions,
		logger:      logger,
	}
}

// OpenRecognition starts a RecognizeStreaming call on a fresh channel
func (c *Client) OpenRecognition(ctx context.Context, apiKey string) (repositories.RecognitionSession, error) {
	conn, err := c.dial(c.sttEndpoint)
	if err != nil {
		return nil, err
	}

	stream, err := sttpb.NewRecognizerClient(conn).RecognizeStreaming(withAPIKey(ctx, apiKey))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start streaming recognition: %w", err)
	}

	c.logger.Debug("Recognition stream opened", zap.String("endpoint", c.sttEndpoint))
	return &recognitionSession{Recognizer_RecognizeStreamingClient: stream, conn: conn}, nil
}

// OpenSynthesis starts an UtteranceSynthesis call on a fresh channel
func (c *Client) OpenSynthesis(ctx context.Context, apiKey string, req *ttspb.UtteranceSynthesisRequest) (repositories.SynthesisSession, error) {
	conn, err := c.dial(c.ttsEndpoint)
	if err != nil {
		return nil, err
	}

	stream, err := ttspb.NewSynthesizerClient(conn).UtteranceSynthesis(withAPIKey(ctx, apiKey), req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start utterance synthesis: %w", err)
	}

	c.logger.Debug("Synthesis stream opened", zap.String("endpoint", c.ttsEndpoint))
	return &synthesisSession{Synthesizer_UtteranceSynthesisClient: stream, conn: conn}, nil
}

func (c *Client) dial(endpoint string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(endpoint, c.dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel to %s: %w", endpoint, err)
	}
	return conn, nil
}

// withAPIKey attaches the SpeechKit API key header to an outgoing call
func withAPIKey(ctx context.Context, apiKey string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Api-Key "+apiKey)
}

type recognitionSession struct {
	sttpb.Recognizer_RecognizeStreamingClient
	conn *grpc.ClientConn
}

func (s *recognitionSession) Close() error {
	return s.conn.Close()
}

type synthesisSession struct {
	ttspb.Synthesizer_UtteranceSynthesisClient
	conn *grpc.ClientConn
}

func (s *synthesisSession) Close() error {
	return s.conn.Close()
}
