// Package pipeline drives one recorded utterance through transcription,
// reply generation and speech synthesis, publishing progress through the
// status register and the conversation log.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicekit/artifacts"
	"voicekit/core"
	"voicekit/store"
)

// Transcriber converts recorded audio into text. An empty transcript is a
// valid outcome, not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Responder produces a conversational reply for the latest user utterance.
type Responder interface {
	Reply(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Synthesizer renders reply text to playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Result is the outcome of one pipeline request. Success with an empty
// AudioRef means the reply text is available but synthesis failed.
type Result struct {
	Success    bool
	Message    string
	Transcript string
	Reply      string
	AudioRef   artifacts.Ref
}

// Config tunes the orchestrator.
type Config struct {
	SystemPrompt string
	UserRole     string
	AgentRole    string
	StageTimeout time.Duration // applied to each remote call separately
}

// DefaultConfig returns a config with sensible defaults; override only
// what you need.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: defaultSystemPrompt,
		UserRole:     "Alex",
		AgentRole:    "Jarvis",
		StageTimeout: 30 * time.Second,
	}
}

// Orchestrator runs the three-stage pipeline. At most one request mutates
// the shared log, register and session at a time; concurrent requests and
// clears are rejected with core.ErrBusy rather than queued.
type Orchestrator struct {
	config Config
	logger *core.Logger

	stt Transcriber
	llm Responder
	tts Synthesizer

	log       store.ConversationLog
	status    store.StatusRegister
	artifacts *artifacts.Store

	session *Session

	gate chan struct{} // capacity 1, held from Transcribing back to Idle

	now func() time.Time
}

func NewOrchestrator(
	stt Transcriber,
	llm Responder,
	tts Synthesizer,
	log store.ConversationLog,
	status store.StatusRegister,
	artifactStore *artifacts.Store,
	config Config,
	logger *core.Logger,
) *Orchestrator {
	if config.SystemPrompt == "" {
		config.SystemPrompt = defaultSystemPrompt
	}
	if config.UserRole == "" {
		config.UserRole = "Alex"
	}
	if config.AgentRole == "" {
		config.AgentRole = "Jarvis"
	}
	if config.StageTimeout <= 0 {
		config.StageTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Orchestrator{
		config:    config,
		logger:    logger,
		stt:       stt,
		llm:       llm,
		tts:       tts,
		log:       log,
		status:    status,
		artifacts: artifactStore,
		session:   NewSession(config.SystemPrompt, config.UserRole, config.AgentRole),
		gate:      make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Session exposes the accumulated conversation context.
func (o *Orchestrator) Session() *Session {
	return o.session
}

func (o *Orchestrator) tryAcquire() bool {
	select {
	case o.gate <- struct{}{}:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) release() {
	<-o.gate
}

// setStatus logs the label and overwrites the status register.
func (o *Orchestrator) setStatus(logger *core.Logger, label string) {
	logger.Info(label)
	if err := o.status.Set(label); err != nil {
		logger.Warnf("pipeline: set status: %v", err)
	}
}

// ProcessAudio runs the full pipeline for one recorded utterance. It
// returns core.ErrBusy when another request is already in flight.
//
// Stage failure semantics: a transcription or generation error aborts the
// request; a synthesis failure degrades it to a text-only success, since
// transcript and reply are already durable in the log; an artifact write
// failure aborts the request with a StorageError.
func (o *Orchestrator) ProcessAudio(ctx context.Context, audio []byte, mimeType string) (Result, error) {
	if !o.tryAcquire() {
		return Result{}, core.ErrBusy
	}
	defer o.release()

	logger := o.logger.With(map[string]interface{}{"request_id": uuid.NewString()})
	o.setStatus(logger, StatusProcessing)

	o.setStatus(logger, StatusTranscribing)
	transcript, err := o.transcribe(ctx, audio, mimeType)
	if err != nil {
		cerr := &core.CollaboratorError{Stage: core.StageTranscription, Err: err}
		o.setStatus(logger, statusError(cerr))
		return Result{}, cerr
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		o.setStatus(logger, StatusNoSpeech)
		return Result{Success: false, Message: "No speech detected in audio"}, nil
	}

	if err := o.log.Append(transcript); err != nil {
		o.setStatus(logger, statusError(err))
		return Result{}, err
	}
	o.session.BeginTurn(transcript)
	o.setStatus(logger, statusTranscribed(transcript))

	o.setStatus(logger, StatusGenerating)
	reply, err := o.generate(ctx, transcript)
	if err != nil {
		cerr := &core.CollaboratorError{Stage: core.StageGeneration, Err: err}
		o.setStatus(logger, statusError(cerr))
		return Result{}, cerr
	}

	if err := o.log.Append(reply); err != nil {
		o.setStatus(logger, statusError(err))
		return Result{}, err
	}
	o.session.CompleteTurn(reply)
	o.setStatus(logger, statusReplied(reply))

	o.setStatus(logger, StatusSynthesizing)
	clip, err := o.synthesize(ctx, reply)
	if err != nil {
		logger.Warnf("pipeline: %v", &core.CollaboratorError{Stage: core.StageSynthesis, Err: err})
		o.setStatus(logger, StatusTTSFailed)
		return Result{Success: true, Transcript: transcript, Reply: reply}, nil
	}

	ref, err := o.artifacts.Save(clip, o.now().UnixMilli())
	if err != nil {
		o.setStatus(logger, statusError(err))
		return Result{}, err
	}

	o.setStatus(logger, StatusAudioReady)
	return Result{Success: true, Transcript: transcript, Reply: reply, AudioRef: ref}, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()
	return o.stt.Transcribe(sctx, audio, mimeType)
}

// generate sends only the latest transcript. The accumulated session
// context is tracked but not transmitted (see Session).
func (o *Orchestrator) generate(ctx context.Context, transcript string) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()
	return o.llm.Reply(sctx, o.config.SystemPrompt, transcript)
}

func (o *Orchestrator) synthesize(ctx context.Context, reply string) ([]byte, error) {
	sctx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()
	return o.tts.Synthesize(sctx, reply)
}

// Clear truncates the conversation log and resets the session context and
// status register together. It is rejected while a request is in flight so
// an in-flight append never lands in a freshly truncated log.
func (o *Orchestrator) Clear() error {
	if !o.tryAcquire() {
		return core.ErrBusy
	}
	defer o.release()

	if err := o.log.Clear(); err != nil {
		return err
	}
	o.session.Reset()
	o.setStatus(o.logger, StatusReady)
	return nil
}

// SetListening flips the externally visible listening indicator. It only
// touches the status register, never the pipeline.
func (o *Orchestrator) SetListening(listening bool) string {
	label := StatusIdle
	if listening {
		label = StatusListening
	}
	o.setStatus(o.logger, label)
	return label
}
