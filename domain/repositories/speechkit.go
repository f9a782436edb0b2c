package repositories

import (
	"context"

	sttpb "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
	ttspb "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"
)

// RecognitionSession is one open streaming recognition call
type RecognitionSession interface {
	Send(*sttpb.StreamingRequest) error
	CloseSend() error
	Recv() (*sttpb.StreamingResponse, error)
	// Close releases the channel the session was opened on
	Close() error
}

// SynthesisSession is one open server-streamed synthesis call
type SynthesisSession interface {
	Recv() (*ttspb.UtteranceSynthesisResponse, error)
	Close() error
}

// SpeechKit opens calls against the SpeechKit cloud service.
// Every call gets its own channel; implementations must not share them.
type SpeechKit interface {
	OpenRecognition(ctx context.Context, apiKey string) (RecognitionSession, error)
	OpenSynthesis(ctx context.Context, apiKey string, req *ttspb.UtteranceSynthesisRequest) (SynthesisSession, error)
}
