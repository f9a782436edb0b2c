package speecherr

// Reason is a short machine-readable failure reason.
type Reason string

const (
	ReasonUnknown Reason = "unknown"

	ReasonSTTConnect Reason = "stt_connect"
	ReasonSTTSend    Reason = "stt_send"
	ReasonSTTRecv    Reason = "stt_recv"
	ReasonSTTEmpty   Reason = "stt_empty"

	ReasonTTSUnsupported Reason = "tts_unsupported"
	ReasonTTSConnect     Reason = "tts_connect"
	ReasonTTSRecv        Reason = "tts_recv"

	ReasonProxyNoTarget    Reason = "proxy_no_target"
	ReasonProxyPlay        Reason = "proxy_play"
	ReasonProxyPlaceholder Reason = "proxy_placeholder"
)
