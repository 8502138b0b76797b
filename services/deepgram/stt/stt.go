package deepgram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"

	"voicekit/core"
)

// Config holds configuration for the Deepgram prerecorded transcription service
type Config struct {
	APIKey      string `json:"api_key"`
	BaseURL     string `json:"base_url"`
	Model       string `json:"model"`
	SmartFormat bool   `json:"smart_format"`
}

// DeepgramSTT transcribes recorded audio through Deepgram's prerecorded
// listen API.
type DeepgramSTT struct {
	config     Config
	logger     *core.Logger
	httpClient *http.Client
}

// NewDeepgramSTT creates a new Deepgram transcription service with the provided config
func NewDeepgramSTT(config Config, logger *core.Logger) *DeepgramSTT {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.deepgram.com/v1/listen"
	}
	if config.Model == "" {
		config.Model = "nova-2"
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &DeepgramSTT{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Response shapes for the prerecorded listen API
type (
	dgListenResponse struct {
		Results dgResults `json:"results"`
	}

	dgResults struct {
		Channels []dgChannel `json:"channels"`
	}

	dgChannel struct {
		Alternatives []dgAlternative `json:"alternatives"`
	}

	dgAlternative struct {
		Transcript string  `json:"transcript"`
		Confidence float64 `json:"confidence"`
	}
)

// Transcribe submits the audio bytes and returns the first alternative's
// transcript. An empty transcript is a valid outcome, not an error.
func (d *DeepgramSTT) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if d.config.APIKey == "" {
		return "", errors.New("Deepgram API key is required")
	}
	if len(audio) == 0 {
		return "", errors.New("audio cannot be empty")
	}

	params := url.Values{}
	params.Set("model", d.config.Model)
	if d.config.SmartFormat {
		params.Set("smart_format", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.config.BaseURL+"?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("deepgram: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.config.APIKey)
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	started := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("deepgram: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("deepgram: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed dgListenResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("deepgram: parse response: %w", err)
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}

	alt := parsed.Results.Channels[0].Alternatives[0]
	d.logger.Debugf("Deepgram STT: transcribed %d bytes in %v (confidence %.2f)",
		len(audio), time.Since(started), alt.Confidence)
	return alt.Transcript, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
