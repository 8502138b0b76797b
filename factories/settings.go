// Package factories builds concrete services and stores from the process
// settings, keeping vendor selection out of the pipeline itself.
package factories

import (
	"os"
	"strconv"
	"time"
)

// Settings is the process configuration, loaded from the environment.
type Settings struct {
	Addr string

	// STTVendor selects the transcription vendor: "deepgram" or "google".
	STTVendor string
	// StoreBackend selects where the log and register live: "file",
	// "redis" or "memory".
	StoreBackend string

	DeepgramAPIKey   string
	OpenAIAPIKey     string
	ElevenLabsAPIKey string

	OpenAIModel string
	VoiceID     string

	DataDir       string
	AudioDir      string
	KeepArtifacts int

	RedisAddr string

	StageTimeout time.Duration
}

// FromEnv reads settings from the environment, applying the defaults of a
// standalone deployment.
func FromEnv() Settings {
	return Settings{
		Addr:         envOr("VOICEKIT_ADDR", ":3001"),
		STTVendor:    envOr("VOICEKIT_STT_VENDOR", "deepgram"),
		StoreBackend: envOr("VOICEKIT_STORE_BACKEND", "file"),

		DeepgramAPIKey:   os.Getenv("DEEPGRAM_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),

		OpenAIModel: os.Getenv("VOICEKIT_OPENAI_MODEL"),
		VoiceID:     os.Getenv("VOICEKIT_VOICE_ID"),

		DataDir:       envOr("VOICEKIT_DATA_DIR", "."),
		AudioDir:      envOr("VOICEKIT_AUDIO_DIR", "audio"),
		KeepArtifacts: envIntOr("VOICEKIT_KEEP_ARTIFACTS", 10),

		RedisAddr: envOr("VOICEKIT_REDIS_ADDR", "localhost:6379"),

		StageTimeout: envDurationOr("VOICEKIT_STAGE_TIMEOUT", 30*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
