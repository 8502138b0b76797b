package factories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voicekit/store"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"VOICEKIT_ADDR", "VOICEKIT_STT_VENDOR", "VOICEKIT_STORE_BACKEND",
		"VOICEKIT_DATA_DIR", "VOICEKIT_AUDIO_DIR", "VOICEKIT_KEEP_ARTIFACTS",
		"VOICEKIT_REDIS_ADDR", "VOICEKIT_STAGE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	s := FromEnv()
	require.Equal(t, ":3001", s.Addr)
	require.Equal(t, "deepgram", s.STTVendor)
	require.Equal(t, "file", s.StoreBackend)
	require.Equal(t, ".", s.DataDir)
	require.Equal(t, "audio", s.AudioDir)
	require.Equal(t, 10, s.KeepArtifacts)
	require.Equal(t, "localhost:6379", s.RedisAddr)
	require.Equal(t, 30*time.Second, s.StageTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VOICEKIT_ADDR", ":8080")
	t.Setenv("VOICEKIT_STT_VENDOR", "google")
	t.Setenv("VOICEKIT_STORE_BACKEND", "redis")
	t.Setenv("VOICEKIT_KEEP_ARTIFACTS", "25")
	t.Setenv("VOICEKIT_STAGE_TIMEOUT", "10s")

	s := FromEnv()
	require.Equal(t, ":8080", s.Addr)
	require.Equal(t, "google", s.STTVendor)
	require.Equal(t, "redis", s.StoreBackend)
	require.Equal(t, 25, s.KeepArtifacts)
	require.Equal(t, 10*time.Second, s.StageTimeout)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("VOICEKIT_KEEP_ARTIFACTS", "lots")
	t.Setenv("VOICEKIT_STAGE_TIMEOUT", "soon")

	s := FromEnv()
	require.Equal(t, 10, s.KeepArtifacts)
	require.Equal(t, 30*time.Second, s.StageTimeout)
}

func TestNewTranscriberUnknownVendor(t *testing.T) {
	_, err := NewTranscriber(context.Background(), Settings{STTVendor: "whisperx"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "whisperx")
}

func TestNewStoresSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	convLog, status, err := NewStores(Settings{StoreBackend: "memory"}, nil)
	require.NoError(t, err)
	require.IsType(t, &store.MemoryLog{}, convLog)
	require.IsType(t, &store.MemoryStatus{}, status)

	convLog, status, err = NewStores(Settings{StoreBackend: "file", DataDir: dir}, nil)
	require.NoError(t, err)
	require.IsType(t, &store.FileLog{}, convLog)
	require.IsType(t, &store.FileStatus{}, status)

	_, _, err = NewStores(Settings{StoreBackend: "cassandra"}, nil)
	require.Error(t, err)
}
