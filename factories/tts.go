package factories

import (
	"voicekit/core"
	"voicekit/pipeline"
	elevenlabs "voicekit/services/elevenlabs/tts"
)

// NewSynthesizer builds the speech synthesis service.
func NewSynthesizer(s Settings, logger *core.Logger) pipeline.Synthesizer {
	return elevenlabs.NewElevenLabsTTS(elevenlabs.Config{
		APIKey:  s.ElevenLabsAPIKey,
		VoiceID: s.VoiceID,
	}, logger)
}
