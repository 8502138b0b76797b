package pipeline

import "fmt"

// Status labels written to the status register on every transition. They
// are the only externally observable progress signal, so pollers depend on
// their exact wording.
const (
	StatusReady        = "Server started - Ready for commands"
	StatusIdle         = "Idle"
	StatusListening    = "Listening..."
	StatusProcessing   = "Processing audio..."
	StatusTranscribing = "Transcribing audio..."
	StatusNoSpeech     = "No speech detected"
	StatusGenerating   = "Generating AI response..."
	StatusSynthesizing = "Converting to speech..."
	StatusAudioReady   = "Audio generated successfully"
	StatusTTSFailed    = "TTS failed, returning text response"
)

func statusTranscribed(transcript string) string {
	return fmt.Sprintf("Transcribed: %s", transcript)
}

func statusReplied(reply string) string {
	return fmt.Sprintf("AI Response: %s", reply)
}

func statusError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
