package factories

import (
	"context"
	"fmt"

	"voicekit/core"
	"voicekit/pipeline"
	deepgram "voicekit/services/deepgram/stt"
	google "voicekit/services/google/stt"
)

// NewTranscriber builds the configured transcription vendor.
func NewTranscriber(ctx context.Context, s Settings, logger *core.Logger) (pipeline.Transcriber, error) {
	switch s.STTVendor {
	case "", "deepgram":
		return deepgram.NewDeepgramSTT(deepgram.Config{
			APIKey:      s.DeepgramAPIKey,
			SmartFormat: true,
		}, logger), nil
	case "google":
		return google.NewGoogleSTT(ctx, google.Config{}, logger)
	default:
		return nil, fmt.Errorf("factories: unknown stt vendor %q", s.STTVendor)
	}
}
