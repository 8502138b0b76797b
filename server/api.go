package server

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
)

// Response bodies for the pipeline API. The field names form the wire
// contract with existing pollers, so they stay in camelCase.
type (
	// ProcessedResponse is returned when a request produced a transcript
	// and reply. AudioURL is null when synthesis failed.
	ProcessedResponse struct {
		Success       bool    `json:"success"`
		Transcription string  `json:"transcription"`
		Response      string  `json:"response"`
		AudioURL      *string `json:"audioUrl"`
	}

	// NoSpeechResponse is returned when transcription found nothing to work
	// with. It is a non-error outcome.
	NoSpeechResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	// ErrorResponse carries a request-level failure.
	ErrorResponse struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	StatusResponse struct {
		Status string `json:"status"`
	}

	ToggleListeningRequest struct {
		IsListening bool `json:"isListening"`
	}

	ToggleListeningResponse struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
)

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, ErrorResponse{Success: false, Error: msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	return sonic.Unmarshal(body, v)
}
