package elevenlabs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"voicekit/core"
	"voicekit/utils/audio"
)

// Config holds configuration for the ElevenLabs TTS service
type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	VoiceID string `json:"voice_id"`
	ModelID string `json:"model_id"`

	// Voice settings
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`

	// OutputFormat selects the raw encoding requested from ElevenLabs:
	// PCM at SampleRate, or µ-law 8000 Hz. Either way Synthesize returns
	// a playable 16-bit WAV container.
	OutputFormat core.AudioEncodingFormat `json:"output_format"`
	SampleRate   int                      `json:"sample_rate"`
}

// ElevenLabsTTS synthesizes reply text through the ElevenLabs HTTP API
type ElevenLabsTTS struct {
	config     Config
	logger     *core.Logger
	httpClient *http.Client
}

// NewElevenLabsTTS creates a new ElevenLabs TTS service with the provided config
func NewElevenLabsTTS(config Config, logger *core.Logger) *ElevenLabsTTS {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	}
	if config.VoiceID == "" {
		config.VoiceID = "21m00Tcm4TlvDq8ikWAM" // Default: Rachel
	}
	if config.ModelID == "" {
		config.ModelID = "eleven_monolingual_v1"
	}
	if config.Stability == 0 {
		config.Stability = 0.5
	}
	if config.SimilarityBoost == 0 {
		config.SimilarityBoost = 0.5
	}
	if config.SampleRate == 0 {
		config.SampleRate = 24000
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &ElevenLabsTTS{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Request body for the synthesis endpoint
type (
	elSynthesisRequest struct {
		Text          string          `json:"text"`
		ModelID       string          `json:"model_id"`
		VoiceSettings elVoiceSettings `json:"voice_settings"`
	}

	elVoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	}
)

// outputFormatString converts config encoding + sample rate to the
// output_format query parameter
func outputFormatString(encoding core.AudioEncodingFormat, sampleRate int) string {
	switch encoding {
	case core.ULAW:
		return "ulaw_8000"
	case core.PCM:
		switch sampleRate {
		case 16000:
			return "pcm_16000"
		case 22050:
			return "pcm_22050"
		case 44100:
			return "pcm_44100"
		default:
			return "pcm_24000"
		}
	default:
		return "pcm_24000"
	}
}

// Synthesize renders text to a WAV container ready for storage and playback.
func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if e.config.APIKey == "" {
		return nil, errors.New("ElevenLabs API key is required")
	}
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	payload, err := sonic.Marshal(elSynthesisRequest{
		Text:    text,
		ModelID: e.config.ModelID,
		VoiceSettings: elVoiceSettings{
			Stability:       e.config.Stability,
			SimilarityBoost: e.config.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?output_format=%s",
		e.config.BaseURL,
		e.config.VoiceID,
		outputFormatString(e.config.OutputFormat, e.config.SampleRate),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/*")
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("elevenlabs: unexpected status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	e.logger.Debugf("ElevenLabs TTS: synthesized %d chars into %d bytes", len(text), len(raw))
	return e.wrapPlayable(raw)
}

// wrapPlayable converts the raw vendor bytes into a 16-bit mono WAV.
func (e *ElevenLabsTTS) wrapPlayable(raw []byte) ([]byte, error) {
	pcm := raw
	sampleRate := e.config.SampleRate
	if e.config.OutputFormat == core.ULAW {
		pcm = audio.ULawBytesToPCM(raw)
		sampleRate = 8000
	}

	wav, err := audio.PCMBytesToWavBytes(pcm, 1, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: wrap wav: %w", err)
	}
	return wav, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
