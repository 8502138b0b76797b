package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voicekit/artifacts"
	"voicekit/core"
	"voicekit/store"
)

type stubTranscriber struct {
	transcript string
	err        error

	started chan struct{} // closed when a call enters, if set
	block   chan struct{} // the call waits for this to close, if set
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	if s.block != nil {
		<-s.block
	}
	return s.transcript, s.err
}

type stubResponder struct {
	reply string
	err   error

	gotSystem string
	gotUser   string
}

func (s *stubResponder) Reply(_ context.Context, systemPrompt, userText string) (string, error) {
	s.gotSystem = systemPrompt
	s.gotUser = userText
	return s.reply, s.err
}

type stubSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

func newTestOrchestrator(t *testing.T, stt Transcriber, llm Responder, tts Synthesizer) (*Orchestrator, *store.MemoryLog, *store.MemoryStatus) {
	t.Helper()
	convLog := store.NewMemoryLog()
	status := store.NewMemoryStatus()
	artifactStore, err := artifacts.NewStore(t.TempDir(), 10, nil)
	require.NoError(t, err)
	return NewOrchestrator(stt, llm, tts, convLog, status, artifactStore, DefaultConfig(), nil), convLog, status
}

func TestProcessAudioSuccess(t *testing.T) {
	stt := &stubTranscriber{transcript: "hello"}
	llm := &stubResponder{reply: "hi there"}
	tts := &stubSynthesizer{audio: []byte("synthesized-bytes")}
	orch, convLog, status := newTestOrchestrator(t, stt, llm, tts)

	result, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "hello", result.Transcript)
	require.Equal(t, "hi there", result.Reply)
	require.NotEmpty(t, result.AudioRef)

	lines, err := convLog.ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "hi there"}, lines)

	current, err := status.Get()
	require.NoError(t, err)
	require.Equal(t, StatusAudioReady, current)
}

func TestProcessAudioSavedArtifactMatchesSynthesizerOutput(t *testing.T) {
	audio := []byte("the-exact-clip")
	orch, _, _ := newTestOrchestrator(t,
		&stubTranscriber{transcript: "hello"},
		&stubResponder{reply: "hi"},
		&stubSynthesizer{audio: audio},
	)

	result, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	require.NoError(t, err)

	fetched, err := orch.artifacts.Fetch(result.AudioRef)
	require.NoError(t, err)
	require.Equal(t, audio, fetched)
}

func TestProcessAudioNoSpeech(t *testing.T) {
	for _, transcript := range []string{"", "   ", "\n\t "} {
		t.Run(fmt.Sprintf("transcript=%q", transcript), func(t *testing.T) {
			llm := &stubResponder{reply: "unused"}
			tts := &stubSynthesizer{}
			orch, convLog, status := newTestOrchestrator(t, &stubTranscriber{transcript: transcript}, llm, tts)

			result, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
			require.NoError(t, err)
			require.False(t, result.Success)
			require.Equal(t, "No speech detected in audio", result.Message)

			lines, err := convLog.ReadAll()
			require.NoError(t, err)
			require.Empty(t, lines)

			current, err := status.Get()
			require.NoError(t, err)
			require.Equal(t, StatusNoSpeech, current)
			require.Zero(t, tts.calls)
		})
	}
}

func TestProcessAudioTranscriptionError(t *testing.T) {
	orch, convLog, status := newTestOrchestrator(t,
		&stubTranscriber{err: errors.New("upstream unavailable")},
		&stubResponder{},
		&stubSynthesizer{},
	)

	_, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	var cerr *core.CollaboratorError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, core.StageTranscription, cerr.Stage)

	lines, readErr := convLog.ReadAll()
	require.NoError(t, readErr)
	require.Empty(t, lines)

	current, readErr := status.Get()
	require.NoError(t, readErr)
	require.True(t, strings.HasPrefix(current, "Error: "))
}

func TestProcessAudioGenerationErrorLeavesNoPartialReply(t *testing.T) {
	orch, convLog, _ := newTestOrchestrator(t,
		&stubTranscriber{transcript: "hello"},
		&stubResponder{err: errors.New("rate limited")},
		&stubSynthesizer{},
	)

	_, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	var cerr *core.CollaboratorError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, core.StageGeneration, cerr.Stage)

	lines, readErr := convLog.ReadAll()
	require.NoError(t, readErr)
	require.Equal(t, []string{"hello"}, lines)
}

func TestProcessAudioSynthesisFailureIsNonFatal(t *testing.T) {
	orch, convLog, status := newTestOrchestrator(t,
		&stubTranscriber{transcript: "hello"},
		&stubResponder{reply: "hi there"},
		&stubSynthesizer{err: errors.New("voice service down")},
	)

	result, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Empty(t, result.AudioRef)
	require.Equal(t, "hello", result.Transcript)
	require.Equal(t, "hi there", result.Reply)

	lines, readErr := convLog.ReadAll()
	require.NoError(t, readErr)
	require.Equal(t, []string{"hello", "hi there"}, lines)

	current, readErr := status.Get()
	require.NoError(t, readErr)
	require.Equal(t, StatusTTSFailed, current)
}

func TestConversationAlternatesAcrossRequests(t *testing.T) {
	stt := &stubTranscriber{}
	llm := &stubResponder{}
	orch, convLog, _ := newTestOrchestrator(t, stt, llm, &stubSynthesizer{audio: []byte("a")})

	const rounds = 5
	for i := 0; i < rounds; i++ {
		stt.transcript = fmt.Sprintf("question %d", i)
		llm.reply = fmt.Sprintf("answer %d", i)
		_, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
		require.NoError(t, err)
	}

	lines, err := convLog.ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2*rounds)
	for i := 0; i < rounds; i++ {
		require.Equal(t, fmt.Sprintf("question %d", i), lines[2*i])
		require.Equal(t, fmt.Sprintf("answer %d", i), lines[2*i+1])
	}
}

func TestGenerationReceivesOnlyLatestTranscript(t *testing.T) {
	stt := &stubTranscriber{transcript: "first"}
	llm := &stubResponder{reply: "one"}
	orch, _, _ := newTestOrchestrator(t, stt, llm, &stubSynthesizer{audio: []byte("a")})

	_, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	require.NoError(t, err)

	stt.transcript = "second"
	llm.reply = "two"
	_, err = orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	require.NoError(t, err)

	// The call carries the system prompt and the latest transcript only,
	// while the session context has accumulated both exchanges.
	require.Equal(t, orch.config.SystemPrompt, llm.gotSystem)
	require.Equal(t, "second", llm.gotUser)

	wantContext := orch.config.SystemPrompt +
		"\nAlex: first\nJarvis: one" +
		"\nAlex: second\nJarvis: two"
	require.Equal(t, wantContext, orch.Session().Context())
}

func TestProcessAudioRejectsConcurrentRequests(t *testing.T) {
	stt := &stubTranscriber{
		transcript: "hello",
		started:    make(chan struct{}),
		block:      make(chan struct{}),
	}
	started := stt.started
	blocked := stt.block
	orch, _, _ := newTestOrchestrator(t, stt, &stubResponder{reply: "hi"}, &stubSynthesizer{audio: []byte("a")})

	done := make(chan error, 1)
	go func() {
		_, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never started")
	}

	_, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	require.ErrorIs(t, err, core.ErrBusy)
	require.ErrorIs(t, orch.Clear(), core.ErrBusy)

	close(blocked)
	require.NoError(t, <-done)

	// The gate is released once the first request finishes.
	require.NoError(t, orch.Clear())
}

func TestClearResetsLogContextAndStatus(t *testing.T) {
	orch, convLog, status := newTestOrchestrator(t,
		&stubTranscriber{transcript: "hello"},
		&stubResponder{reply: "hi"},
		&stubSynthesizer{audio: []byte("a")},
	)

	_, err := orch.ProcessAudio(context.Background(), []byte("wav"), "audio/wav")
	require.NoError(t, err)
	require.NoError(t, orch.Clear())

	lines, err := convLog.ReadAll()
	require.NoError(t, err)
	require.Empty(t, lines)

	require.Equal(t, orch.config.SystemPrompt, orch.Session().Context())

	current, err := status.Get()
	require.NoError(t, err)
	require.Equal(t, StatusReady, current)
}

func TestSetListening(t *testing.T) {
	orch, _, status := newTestOrchestrator(t, &stubTranscriber{}, &stubResponder{}, &stubSynthesizer{})

	require.Equal(t, StatusListening, orch.SetListening(true))
	current, err := status.Get()
	require.NoError(t, err)
	require.Equal(t, StatusListening, current)

	require.Equal(t, StatusIdle, orch.SetListening(false))
	current, err = status.Get()
	require.NoError(t, err)
	require.Equal(t, StatusIdle, current)
}
