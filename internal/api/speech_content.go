package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
)

// SpeechContentHeader describes the audio in an STT upload body
const SpeechContentHeader = "X-Speech-Content"

// ParseSpeechContent parses a header of the form
// "format=wav; codec=pcm; sample_rate=16000; bit_rate=16; channel=1; language=ru-RU".
// Language may be omitted; every other key is required.
func ParseSpeechContent(header string) (entities.SpeechMetadata, error) {
	var meta entities.SpeechMetadata
	if strings.TrimSpace(header) == "" {
		return meta, fmt.Errorf("%s header is required", SpeechContentHeader)
	}

	values := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return meta, fmt.Errorf("malformed %s parameter: %q", SpeechContentHeader, part)
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	for _, key := range []string{"format", "codec", "sample_rate", "bit_rate", "channel"} {
		if values[key] == "" {
			return meta, fmt.Errorf("%s is missing %s", SpeechContentHeader, key)
		}
	}

	meta.Language = values["language"]
	meta.Format = entities.AudioFormat(strings.ToLower(values["format"]))
	meta.Codec = entities.AudioCodec(strings.ToLower(values["codec"]))

	ints := map[string]*int{
		"sample_rate": &meta.SampleRate,
		"bit_rate":    &meta.BitRate,
		"channel":     &meta.Channel,
	}
	for key, target := range ints {
		n, err := strconv.Atoi(values[key])
		if err != nil {
			return meta, fmt.Errorf("%s must be an integer, got %q", key, values[key])
		}
		*target = n
	}

	return meta, nil
}

// ContentTypeFor returns the MIME type of a synthesized audio extension
func ContentTypeFor(extension string) string {
	switch extension {
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
