package core

// AudioEncodingFormat identifies the raw encoding a synthesis vendor emits.
type AudioEncodingFormat int

const (
	PCM  AudioEncodingFormat = iota // Pulse-code modulation format.
	ULAW                            // µ-law encoding format.
	ALAW                            // A-law encoding format.
)
