package entities

import (
	"strings"
	"testing"
)

func validMetadata() SpeechMetadata {
	return SpeechMetadata{
		Language:   "ru-RU",
		Format:     AudioFormatWAV,
		Codec:      AudioCodecPCM,
		BitRate:    16,
		SampleRate: 16000,
		Channel:    1,
	}
}

func TestCheckMetadata(t *testing.T) {
	caps := DefaultSTTCapabilities()

	if err := caps.CheckMetadata(validMetadata()); err != nil {
		t.Fatalf("Expected metadata to be accepted: %v", err)
	}

	auto := validMetadata()
	auto.Language = ""
	if err := caps.CheckMetadata(auto); err != nil {
		t.Errorf("Expected empty language to be accepted: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SpeechMetadata)
	}{
		{"language", func(m *SpeechMetadata) { m.Language = "xx-XX" }},
		{"format", func(m *SpeechMetadata) { m.Format = "mp3" }},
		{"codec", func(m *SpeechMetadata) { m.Codec = "flac" }},
		{"bit rate", func(m *SpeechMetadata) { m.BitRate = 24 }},
		{"sample rate", func(m *SpeechMetadata) { m.SampleRate = 12345 }},
		{"stereo", func(m *SpeechMetadata) { m.Channel = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMetadata()
			tt.mutate(&meta)
			if err := caps.CheckMetadata(meta); err == nil {
				t.Errorf("Expected %s to be rejected", tt.name)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	short := strings.Repeat("a", 249)
	if got, cut := TruncateText(short, 249); cut || got != short {
		t.Errorf("Expected text of limit length unchanged")
	}

	long := strings.Repeat("я", 300)
	got, cut := TruncateText(long, 249)
	if !cut {
		t.Error("Expected long text to be truncated")
	}
	if got != strings.Repeat("я", 249) {
		t.Errorf("Expected 249 characters, got %d bytes", len(got))
	}
}

func TestIsSupportedVoice(t *testing.T) {
	if !IsSupportedVoice("ru-RU", "marina") {
		t.Error("Expected marina to speak ru-RU")
	}
	if IsSupportedVoice("ru-RU", "john") {
		t.Error("Expected john not to speak ru-RU")
	}
	if IsSupportedVoice("xx-XX", "marina") {
		t.Error("Expected unknown language to be rejected")
	}
}

func TestResultHelpers(t *testing.T) {
	if !SpeechSuccess("hi").OK() || SpeechError().OK() {
		t.Error("Unexpected SpeechResult.OK values")
	}
	if (TTSAudio{}).OK() {
		t.Error("Expected zero TTSAudio to mean no audio")
	}
	if !(TTSAudio{Extension: "wav"}).OK() {
		t.Error("Expected TTSAudio with extension to be OK")
	}
}
