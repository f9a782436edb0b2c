package tts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	ttspb "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"
	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/metrics"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/speecherr"
)

// MaxSafeTextLength is the longest message sent without unsafe mode
const MaxSafeTextLength = 249

var containerTypes = map[string]ttspb.ContainerAudio_ContainerAudioType{
	"wav": ttspb.ContainerAudio_WAV,
	"mp3": ttspb.ContainerAudio_MP3,
	"ogg": ttspb.ContainerAudio_OGG_OPUS,
}

// ResolveContainer maps a symbolic container name to its wire type.
// Unknown names fall back to mp3.
func ResolveContainer(name string) (string, ttspb.ContainerAudio_ContainerAudioType) {
	if containerType, ok := containerTypes[name]; ok {
		return name, containerType
	}
	return entities.DefaultContainer, containerTypes[entities.DefaultContainer]
}

// base holds what the SpeechKit TTS and proxy providers share
type base struct {
	entry   repositories.EntryConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// DefaultLanguage implements repositories.TextToSpeech
func (b *base) DefaultLanguage() string {
	return entities.DefaultLanguage
}

// SupportedLanguages implements repositories.TextToSpeech
func (b *base) SupportedLanguages() []string {
	return []string{entities.DefaultLanguage}
}

// SupportedOptions implements repositories.TextToSpeech
func (b *base) SupportedOptions() []string {
	return []string{entities.OptionVoice}
}

func (b *base) resolve(language string, options map[string]interface{}) (string, entities.Options) {
	if language == "" {
		language = b.DefaultLanguage()
	}
	return language, entities.ResolveOptions(b.entry.StoredOptions(), options)
}

func (b *base) fail(adapter string, err error, started time.Time) entities.TTSAudio {
	b.logger.Error("Error occurred during Yandex SpeechKit TTS call",
		zap.String("adapter", adapter),
		zap.String("reason", string(speecherr.ReasonOf(err))),
		zap.Error(err))
	b.metrics.ObserveFailure(adapter, err, started)
	return entities.TTSAudio{}
}

// YandexTextToSpeech implements TextToSpeech using SpeechKit utterance synthesis
type YandexTextToSpeech struct {
	base
	kit repositories.SpeechKit
}

// Ensure YandexTextToSpeech implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*YandexTextToSpeech)(nil)

// NewYandexTextToSpeech creates a synthesizer bound to one config entry
func NewYandexTextToSpeech(kit repositories.SpeechKit, entry repositories.EntryConfig, m *metrics.Metrics, logger *zap.Logger) *YandexTextToSpeech {
	return &YandexTextToSpeech{
		base: base{entry: entry, metrics: m, logger: logger},
		kit:  kit,
	}
}

// GetTTSAudio synthesizes message and returns the concatenated audio
func (y *YandexTextToSpeech) GetTTSAudio(ctx context.Context, message, language string, options map[string]interface{}) entities.TTSAudio {
	started := time.Now()
	language, opts := y.resolve(language, options)

	if !containsString(y.SupportedLanguages(), language) || !entities.IsSupportedVoice(language, opts.Voice) {
		return y.fail(metrics.AdapterTTS, speecherr.New(speecherr.ReasonTTSUnsupported,
			"unsupported language "+language+" or voice "+opts.Voice), started)
	}

	y.logger.Debug("Starting TTS synthesis", zap.String("message", message), zap.String("voice", opts.Voice))

	text := message
	if !opts.Unsafe {
		var truncated bool
		text, truncated = entities.TruncateText(message, MaxSafeTextLength)
		if truncated {
			y.logger.Info("Message truncated to the safe synthesis length",
				zap.Int("limit", MaxSafeTextLength))
			y.metrics.Truncated()
		}
	}

	extension, request := SynthesisRequest(text, opts)

	audio, err := y.synthesize(ctx, request)
	if err != nil {
		return y.fail(metrics.AdapterTTS, err, started)
	}

	y.logger.Debug("TTS synthesis completed successfully",
		zap.String("extension", extension),
		zap.Int("audioSize", len(audio)))
	y.metrics.Synthesized(len(audio))
	y.metrics.ObserveSuccess(metrics.AdapterTTS, started)
	return entities.TTSAudio{Extension: extension, Data: audio}
}

func (y *YandexTextToSpeech) synthesize(ctx context.Context, request *ttspb.UtteranceSynthesisRequest) ([]byte, error) {
	session, err := y.kit.OpenSynthesis(ctx, y.entry.APIKey(), request)
	if err != nil {
		return nil, speecherr.Wrap(err, speecherr.ReasonTTSConnect)
	}
	defer session.Close()

	var audio bytes.Buffer
	for {
		resp, err := session.Recv()
		if errors.Is(err, io.EOF) {
			return audio.Bytes(), nil
		}
		if err != nil {
			return nil, speecherr.Wrap(err, speecherr.ReasonTTSRecv)
		}

		data := resp.GetAudioChunk().GetData()
		if len(data) == 0 {
			y.logger.Warn("Empty audio chunk received from Yandex SpeechKit")
			y.metrics.EmptyChunk()
			continue
		}
		audio.Write(data)
	}
}

// SynthesisRequest builds the utterance request for text and returns the
// container name the audio will be in.
func SynthesisRequest(text string, opts entities.Options) (string, *ttspb.UtteranceSynthesisRequest) {
	extension, containerType := ResolveContainer(opts.OutputContainer)

	return extension, &ttspb.UtteranceSynthesisRequest{
		Utterance: &ttspb.UtteranceSynthesisRequest_Text{Text: text},
		OutputAudioSpec: &ttspb.AudioFormatOptions{
			AudioFormat: &ttspb.AudioFormatOptions_ContainerAudio{
				ContainerAudio: &ttspb.ContainerAudio{
					ContainerAudioType: containerType,
				},
			},
		},
		Hints: []*ttspb.Hints{
			{Hint: &ttspb.Hints_Voice{Voice: opts.Voice}},
		},
		LoudnessNormalizationType: ttspb.UtteranceSynthesisRequest_LUFS,
		UnsafeMode:                opts.Unsafe,
	}
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
