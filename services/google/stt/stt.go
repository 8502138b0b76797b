package google

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"voicekit/core"
)

// Config holds configuration for the Google Cloud Speech recognizer.
// Authentication relies on Application Default Credentials.
type Config struct {
	LanguageCode    string `json:"language_code"`
	SampleRateHertz int32  `json:"sample_rate_hertz"`
}

// GoogleSTT transcribes recorded audio with the synchronous Recognize API.
// It is an alternate vendor behind the same contract as Deepgram.
type GoogleSTT struct {
	config Config
	logger *core.Logger
	client *speech.Client
}

// NewGoogleSTT creates a new Google Cloud Speech transcription service.
func NewGoogleSTT(ctx context.Context, config Config, logger *core.Logger) (*GoogleSTT, error) {
	if config.LanguageCode == "" {
		config.LanguageCode = "en-US"
	}
	if config.SampleRateHertz == 0 {
		config.SampleRateHertz = 48000
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("google stt: create client: %w", err)
	}
	return &GoogleSTT{config: config, logger: logger, client: client}, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleSTT) Close() error {
	return g.client.Close()
}

// Transcribe runs synchronous recognition and joins the result transcripts.
// An empty transcript is a valid outcome, not an error.
func (g *GoogleSTT) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encodingForMime(mimeType),
			SampleRateHertz: g.config.SampleRateHertz,
			LanguageCode:    g.config.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("google stt: recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	return strings.Join(parts, " "), nil
}

// encodingForMime maps an upload content type to a recognition encoding.
// Self-describing containers (WAV, FLAC) carry their own encoding, so
// unknown types fall through to ENCODING_UNSPECIFIED.
func encodingForMime(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(mimeType, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(mimeType, "ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(mimeType, "mulaw"), strings.Contains(mimeType, "basic"):
		return speechpb.RecognitionConfig_MULAW
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
