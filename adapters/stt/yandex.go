package stt

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	sttpb "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/metrics"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/speecherr"
)

// YandexSpeechToText implements SpeechToText for Yandex SpeechKit
type YandexSpeechToText struct {
	kit     repositories.SpeechKit
	entry   repositories.EntryConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Ensure YandexSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*YandexSpeechToText)(nil)

// NewYandexSpeechToText creates a recognizer bound to one config entry
func NewYandexSpeechToText(kit repositories.SpeechKit, entry repositories.EntryConfig, m *metrics.Metrics, logger *zap.Logger) *YandexSpeechToText {
	return &YandexSpeechToText{
		kit:     kit,
		entry:   entry,
		metrics: m,
		logger:  logger,
	}
}

// Capabilities implements repositories.SpeechToText
func (y *YandexSpeechToText) Capabilities() entities.STTCapabilities {
	return entities.DefaultSTTCapabilities()
}

// ProcessAudioStream opens one streaming recognition call, sends the options
// frame followed by every chunk, and joins the final refinements.
func (y *YandexSpeechToText) ProcessAudioStream(ctx context.Context, metadata entities.SpeechMetadata, chunks <-chan []byte) entities.SpeechResult {
	started := time.Now()

	alternatives, err := y.recognize(ctx, metadata, chunks)
	if err == nil && len(alternatives) == 0 {
		err = speecherr.New(speecherr.ReasonSTTEmpty, "no final refinement received")
	}
	if err != nil {
		y.logger.Error("Error occurred during speech recognition",
			zap.String("language", metadata.Language),
			zap.String("reason", string(speecherr.ReasonOf(err))),
			zap.Error(err))
		y.metrics.ObserveFailure(metrics.AdapterSTT, err, started)
		return entities.SpeechError()
	}

	text := strings.Join(alternatives, " ")
	y.logger.Info("Speech recognized",
		zap.String("language", metadata.Language),
		zap.Int("alternatives", len(alternatives)),
		zap.Duration("elapsed", time.Since(started)))
	y.metrics.ObserveSuccess(metrics.AdapterSTT, started)
	return entities.SpeechSuccess(text)
}

func (y *YandexSpeechToText) recognize(ctx context.Context, metadata entities.SpeechMetadata, chunks <-chan []byte) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)

	session, err := y.kit.OpenRecognition(gctx, y.entry.APIKey())
	if err != nil {
		return nil, speecherr.Wrap(err, speecherr.ReasonSTTConnect)
	}
	defer session.Close()

	// Stops the sender once the server has finished the stream
	sendCtx, stopSending := context.WithCancel(gctx)
	defer stopSending()

	g.Go(func() error {
		return y.send(sendCtx, session, RecognitionOptions(metadata), chunks)
	})

	var alternatives []string
	g.Go(func() error {
		defer stopSending()
		for {
			resp, err := session.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return speecherr.Wrap(err, speecherr.ReasonSTTRecv)
			}

			refinement := resp.GetFinalRefinement()
			if refinement == nil {
				continue
			}
			for _, alternative := range refinement.GetNormalizedText().GetAlternatives() {
				alternatives = append(alternatives, alternative.GetText())
			}
		}
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return alternatives, nil
}

// send pushes the options frame and then every chunk in arrival order.
// Send returning io.EOF means the server ended the call; the receiver reports why.
func (y *YandexSpeechToText) send(ctx context.Context, session repositories.RecognitionSession, options *sttpb.StreamingOptions, chunks <-chan []byte) error {
	y.logger.Debug("Sending the message with recognition params")
	if err := session.Send(&sttpb.StreamingRequest{
		Event: &sttpb.StreamingRequest_SessionOptions{SessionOptions: options},
	}); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return speecherr.Wrap(err, speecherr.ReasonSTTSend)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-chunks:
			if !ok {
				if err := session.CloseSend(); err != nil {
					return speecherr.Wrap(err, speecherr.ReasonSTTSend)
				}
				return nil
			}

			if err := session.Send(&sttpb.StreamingRequest{
				Event: &sttpb.StreamingRequest_Chunk{Chunk: &sttpb.AudioChunk{Data: data}},
			}); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return speecherr.Wrap(err, speecherr.ReasonSTTSend)
			}
			y.metrics.ChunkSent()
		}
	}
}

// RecognitionOptions builds the session options frame for metadata
func RecognitionOptions(metadata entities.SpeechMetadata) *sttpb.StreamingOptions {
	language := metadata.Language
	if language == "" {
		language = entities.AutoLanguage
	}

	return &sttpb.StreamingOptions{
		RecognitionModel: &sttpb.RecognitionModelOptions{
			AudioFormat: audioFormat(metadata),
			TextNormalization: &sttpb.TextNormalizationOptions{
				TextNormalization: sttpb.TextNormalizationOptions_TEXT_NORMALIZATION_ENABLED,
				ProfanityFilter:   false,
				LiteratureText:    true,
			},
			LanguageRestriction: &sttpb.LanguageRestrictionOptions{
				RestrictionType: sttpb.LanguageRestrictionOptions_WHITELIST,
				LanguageCode:    []string{language},
			},
			AudioProcessingType: sttpb.RecognitionModelOptions_REAL_TIME,
		},
	}
}

func audioFormat(metadata entities.SpeechMetadata) *sttpb.AudioFormatOptions {
	if metadata.Codec == entities.AudioCodecOpus {
		return &sttpb.AudioFormatOptions{
			AudioFormat: &sttpb.AudioFormatOptions_ContainerAudio{
				ContainerAudio: &sttpb.ContainerAudio{
					ContainerAudioType: sttpb.ContainerAudio_OGG_OPUS,
				},
			},
		}
	}

	return &sttpb.AudioFormatOptions{
		AudioFormat: &sttpb.AudioFormatOptions_RawAudio{
			RawAudio: &sttpb.RawAudio{
				AudioEncoding:     sttpb.RawAudio_LINEAR16_PCM,
				SampleRateHertz:   int64(metadata.SampleRate),
				AudioChannelCount: 1,
			},
		},
	}
}
