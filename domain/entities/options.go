package entities

import (
	"strconv"
	"strings"
)

// Option keys as stored on a config entry
const (
	ConfTTSVoice        = "tts_voice"
	ConfTTSUnsafe       = "tts_unsafe"
	ConfProxySpeaker    = "proxy_speaker"
	ConfProxyMediaType  = "proxy_media_type"
	ConfOutputContainer = "output_container"

	// OptionVoice is the per-call option name the host passes for a voice
	OptionVoice = "voice"
)

const (
	DefaultLanguage       = "ru-RU"
	DefaultVoice          = "marina"
	DefaultContainer      = "mp3"
	DefaultProxyMediaType = "tts"
)

// ProxyMediaTypes are the media content types a Yandex.Station accepts
var ProxyMediaTypes = []string{"tts", "text", "dialog"}

// OutputContainers are the symbolic container names a TTS call may request
var OutputContainers = []string{"wav", "mp3", "ogg"}

// Options is the per-call option set resolved from entry options and defaults
type Options struct {
	Voice           string `json:"tts_voice"`
	OutputContainer string `json:"output_container"`
	Unsafe          bool   `json:"tts_unsafe"`
	ProxySpeaker    string `json:"proxy_speaker,omitempty"`
	ProxyMediaType  string `json:"proxy_media_type"`
}

// DefaultOptions returns the option set used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Voice:           DefaultVoice,
		OutputContainer: DefaultContainer,
		ProxyMediaType:  DefaultProxyMediaType,
	}
}

// ResolveOptions applies option layers over the defaults. Later layers win.
func ResolveOptions(layers ...map[string]interface{}) Options {
	opts := DefaultOptions()
	for _, layer := range layers {
		for key, value := range layer {
			switch key {
			case ConfTTSVoice, OptionVoice:
				if s := stringValue(value); s != "" {
					opts.Voice = s
				}
			case ConfOutputContainer:
				if s := stringValue(value); s != "" {
					opts.OutputContainer = s
				}
			case ConfTTSUnsafe:
				if b, ok := boolValue(value); ok {
					opts.Unsafe = b
				}
			case ConfProxySpeaker:
				opts.ProxySpeaker = stringValue(value)
			case ConfProxyMediaType:
				if s := stringValue(value); s != "" {
					opts.ProxyMediaType = s
				}
			}
		}
	}
	return opts
}

// Map returns the options in their stored form
func (o Options) Map() map[string]interface{} {
	m := map[string]interface{}{
		ConfTTSVoice:        o.Voice,
		ConfTTSUnsafe:       o.Unsafe,
		ConfOutputContainer: o.OutputContainer,
		ConfProxyMediaType:  o.ProxyMediaType,
	}
	if o.ProxySpeaker != "" {
		m[ConfProxySpeaker] = o.ProxySpeaker
	}
	return m
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func boolValue(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
