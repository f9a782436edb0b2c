package entities

import (
	"fmt"
	"unicode/utf8"
)

// AudioFormat is the container of an inbound audio stream
type AudioFormat string

const (
	AudioFormatWAV AudioFormat = "wav"
	AudioFormatOGG AudioFormat = "ogg"
)

// AudioCodec is the encoding inside the container
type AudioCodec string

const (
	AudioCodecPCM  AudioCodec = "pcm"
	AudioCodecOpus AudioCodec = "opus"
)

// SpeechMetadata describes an audio stream sent for recognition
type SpeechMetadata struct {
	Language   string      `json:"language"`
	Format     AudioFormat `json:"format"`
	Codec      AudioCodec  `json:"codec"`
	BitRate    int         `json:"bit_rate"`
	SampleRate int         `json:"sample_rate"`
	Channel    int         `json:"channel"`
}

// SpeechResultState tells whether recognition produced text
type SpeechResultState string

const (
	SpeechResultSuccess SpeechResultState = "success"
	SpeechResultError   SpeechResultState = "error"
)

// SpeechResult is the outcome of one recognition call
type SpeechResult struct {
	Text  string            `json:"text,omitempty"`
	State SpeechResultState `json:"result"`
}

// SpeechSuccess builds a successful result
func SpeechSuccess(text string) SpeechResult {
	return SpeechResult{Text: text, State: SpeechResultSuccess}
}

// SpeechError builds a failed result with no text
func SpeechError() SpeechResult {
	return SpeechResult{State: SpeechResultError}
}

// OK reports whether the result carries a transcript
func (r SpeechResult) OK() bool {
	return r.State == SpeechResultSuccess
}

// TTSAudio is the outcome of one synthesis call. The zero value means no audio.
type TTSAudio struct {
	Extension string
	Data      []byte
}

// OK reports whether audio was produced
func (a TTSAudio) OK() bool {
	return a.Extension != ""
}

// STTCapabilities is the static list of what the recognizer accepts
type STTCapabilities struct {
	Languages   []string      `json:"languages"`
	Formats     []AudioFormat `json:"formats"`
	Codecs      []AudioCodec  `json:"codecs"`
	BitRates    []int         `json:"bit_rates"`
	SampleRates []int         `json:"sample_rates"`
	Channels    []int         `json:"channels"`
}

// DefaultSTTCapabilities returns what SpeechKit streaming recognition supports
func DefaultSTTCapabilities() STTCapabilities {
	return STTCapabilities{
		Languages: STTLanguages,
		Formats:   []AudioFormat{AudioFormatWAV, AudioFormatOGG},
		Codecs:    []AudioCodec{AudioCodecPCM, AudioCodecOpus},
		BitRates:  []int{16},
		SampleRates: []int{
			8000, 11000, 16000, 18900, 22000, 32000, 37800, 44100, 48000,
		},
		Channels: []int{1},
	}
}

// CheckMetadata rejects metadata outside the declared capabilities.
// An empty language is allowed and means auto detection.
func (c STTCapabilities) CheckMetadata(meta SpeechMetadata) error {
	if meta.Language != "" && !contains(c.Languages, meta.Language) {
		return fmt.Errorf("unsupported language: %s", meta.Language)
	}

	formatOK := false
	for _, f := range c.Formats {
		if f == meta.Format {
			formatOK = true
		}
	}
	if !formatOK {
		return fmt.Errorf("unsupported format: %s", meta.Format)
	}

	codecOK := false
	for _, codec := range c.Codecs {
		if codec == meta.Codec {
			codecOK = true
		}
	}
	if !codecOK {
		return fmt.Errorf("unsupported codec: %s", meta.Codec)
	}

	if !containsInt(c.BitRates, meta.BitRate) {
		return fmt.Errorf("unsupported bit rate: %d", meta.BitRate)
	}
	if !containsInt(c.SampleRates, meta.SampleRate) {
		return fmt.Errorf("unsupported sample rate: %d", meta.SampleRate)
	}
	if !containsInt(c.Channels, meta.Channel) {
		return fmt.Errorf("unsupported channel count: %d", meta.Channel)
	}
	return nil
}

// TruncateText cuts text to at most limit characters
func TruncateText(text string, limit int) (string, bool) {
	if utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:limit]), true
}

func containsInt(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
