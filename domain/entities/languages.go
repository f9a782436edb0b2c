package entities

// STTLanguages lists recognition languages.
// https://yandex.cloud/ru/docs/speechkit/stt/models
var STTLanguages = []string{
	"auto",
	"de-DE",
	"en-US",
	"es-ES",
	"fi-FI",
	"fr-FR",
	"he-HE",
	"it-IT",
	"kk-KZ",
	"nl-NL",
	"pl-PL",
	"pt-PT",
	"pt-BR",
	"ru-RU",
	"sv-SE",
	"tr-TR",
	"uz-UZ",
}

// AutoLanguage asks the recognizer to detect the language itself
const AutoLanguage = "auto"

// TTSLanguages lists synthesis languages.
// https://yandex.cloud/ru/docs/speechkit/tts/voices
var TTSLanguages = []string{
	"de-DE",
	"en-US",
	"he-IL",
	"kk-KK",
	"ru-RU",
	"uz-UZ",
}

// TTSVoices maps a synthesis language to the voices available for it
var TTSVoices = map[string][]string{
	"de-DE": {"lea"},
	"en-US": {"john"},
	"he-IL": {"naomi"},
	"kk-KK": {"amira", "madi"},
	"ru-RU": {
		"alena", "filipp", "ermil", "jane", "madirus", "omazh", "zahar",
		"dasha", "julia", "lera", "masha", "marina", "alexander", "kirill", "anton",
	},
	"uz-UZ": {"nigora"},
}

// IsSupportedVoice reports whether voice can speak language
func IsSupportedVoice(language, voice string) bool {
	voices, ok := TTSVoices[language]
	if !ok {
		return false
	}
	return contains(voices, voice)
}
