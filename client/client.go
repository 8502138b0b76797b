// Package client implements the polling side of the system: a fixed-cadence
// reader of the conversation log and status register, plus a single-slot
// audio playback manager.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/bytedance/sonic"

	"voicekit/core"
	"voicekit/server"
)

// Snapshot is one observed state of the server's conversation and status.
type Snapshot struct {
	Conversation []string
	Status       string
}

// View renders the polled state. Every RenderConversation call is a
// wholesale replacement of whatever was shown before, with the cursor on
// the newest entry.
type View interface {
	RenderConversation(lines []string, selected int)
	RenderStatus(status string)
	Notify(message string)
}

// Outcome classifies a pipeline request for the caller: no-speech means
// silently do nothing, errors should be surfaced, and a text-only success
// displays the reply but skips playback.
type Outcome int

const (
	OutcomeNoSpeech Outcome = iota
	OutcomeText
	OutcomeAudio
)

// ProcessResult is the parsed response of one submitted recording.
type ProcessResult struct {
	Outcome    Outcome
	Message    string
	Transcript string
	Reply      string
	AudioURL   string
}

// Config for the sync client.
type Config struct {
	BaseURL      string
	PollInterval time.Duration
}

// SyncClient polls the server at a fixed cadence and re-renders the view
// when the observed snapshot changes. Polling never mutates server state.
type SyncClient struct {
	config   Config
	logger   *core.Logger
	http     *http.Client
	view     View
	playback *Playback

	last Snapshot
	seen bool
}

func New(config Config, view View, playback *Playback, logger *core.Logger) *SyncClient {
	if config.PollInterval <= 0 {
		config.PollInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &SyncClient{
		config:   config,
		logger:   logger,
		http:     &http.Client{Timeout: 10 * time.Second},
		view:     view,
		playback: playback,
	}
}

// Run polls until the context is cancelled.
func (c *SyncClient) Run(ctx context.Context) {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.PollOnce(ctx); err != nil {
				c.logger.Warnf("sync: poll: %v", err)
			}
		}
	}
}

// PollOnce fetches one snapshot and applies it to the view.
func (c *SyncClient) PollOnce(ctx context.Context) error {
	snap, err := c.fetchSnapshot(ctx)
	if err != nil {
		return err
	}
	c.apply(snap)
	return nil
}

// apply re-renders only what changed since the last snapshot. The
// conversation comparison is structural: same length and same lines.
func (c *SyncClient) apply(snap Snapshot) {
	if !c.seen || snap.Status != c.last.Status {
		c.view.RenderStatus(snap.Status)
	}
	if !c.seen || !equalLines(snap.Conversation, c.last.Conversation) {
		c.view.RenderConversation(snap.Conversation, len(snap.Conversation)-1)
	}
	c.last = snap
	c.seen = true
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *SyncClient) fetchSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := c.getJSON(ctx, "/conversation", &snap.Conversation); err != nil {
		return Snapshot{}, err
	}
	var status server.StatusResponse
	if err := c.getJSON(ctx, "/status", &status); err != nil {
		return Snapshot{}, err
	}
	snap.Status = status.Status
	return snap, nil
}

func (c *SyncClient) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("sync: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sync: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sync: read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sync: get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("sync: parse %s: %w", path, err)
	}
	return nil
}

// ProcessAudio submits a recording, notifies the view of failures, and
// starts playback when the response carries an audio reference.
func (c *SyncClient) ProcessAudio(ctx context.Context, audio []byte, mimeType string) (ProcessResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="audio"; filename="recording.wav"`)
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("sync: build upload: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return ProcessResult{}, fmt.Errorf("sync: build upload: %w", err)
	}
	mw.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/process-audio", &buf)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("sync: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("sync: process audio: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("sync: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr server.ErrorResponse
		if err := sonic.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			c.view.Notify(apiErr.Error)
			return ProcessResult{}, fmt.Errorf("sync: process audio: %s", apiErr.Error)
		}
		c.view.Notify(fmt.Sprintf("request failed with status %d", resp.StatusCode))
		return ProcessResult{}, fmt.Errorf("sync: process audio: unexpected status %d", resp.StatusCode)
	}

	var parsed server.ProcessedResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return ProcessResult{}, fmt.Errorf("sync: parse response: %w", err)
	}

	if !parsed.Success {
		var noSpeech server.NoSpeechResponse
		sonic.Unmarshal(body, &noSpeech)
		return ProcessResult{Outcome: OutcomeNoSpeech, Message: noSpeech.Message}, nil
	}

	result := ProcessResult{
		Outcome:    OutcomeText,
		Transcript: parsed.Transcription,
		Reply:      parsed.Response,
	}
	if parsed.AudioURL != nil && *parsed.AudioURL != "" {
		result.Outcome = OutcomeAudio
		result.AudioURL = c.config.BaseURL + *parsed.AudioURL
		if c.playback != nil {
			c.playback.Play(result.AudioURL)
		}
	}
	return result, nil
}

// Clear asks the server to truncate the conversation.
func (c *SyncClient) Clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/clear-conversation", nil)
	if err != nil {
		return fmt.Errorf("sync: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sync: clear: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sync: clear: unexpected status %d", resp.StatusCode)
	}
	return nil
}
