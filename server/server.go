// Package server exposes the pipeline and its stores over HTTP: one
// mutating route for audio processing, read-only polling routes for the
// conversation log and status register, and artifact delivery.
package server

import (
	"errors"
	"io"
	"net/http"

	"voicekit/artifacts"
	"voicekit/core"
	"voicekit/pipeline"
	"voicekit/store"
)

// Config holds configuration for the HTTP surface.
type Config struct {
	// MaxUploadBytes caps the size of one multipart audio upload.
	MaxUploadBytes int64
}

// Server routes HTTP requests to the orchestrator and stores. Reads go
// straight to the stores; only process-audio, clear and toggle reach the
// pipeline.
type Server struct {
	config    Config
	logger    *core.Logger
	pipeline  *pipeline.Orchestrator
	log       store.ConversationLog
	status    store.StatusRegister
	artifacts *artifacts.Store
	mux       *http.ServeMux
}

func New(
	config Config,
	orch *pipeline.Orchestrator,
	convLog store.ConversationLog,
	status store.StatusRegister,
	artifactStore *artifacts.Store,
	hub *StatusHub,
	logger *core.Logger,
) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 50 << 20
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	s := &Server{
		config:    config,
		logger:    logger,
		pipeline:  orch,
		log:       convLog,
		status:    status,
		artifacts: artifactStore,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /process-audio", s.handleProcessAudio)
	s.mux.HandleFunc("GET /conversation", s.handleConversation)
	s.mux.HandleFunc("GET /conv.txt", s.handleConversationText)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /status.txt", s.handleStatusText)
	s.mux.HandleFunc("POST /clear-conversation", s.handleClear)
	s.mux.HandleFunc("POST /toggle-listening", s.handleToggleListening)
	s.mux.HandleFunc("GET /audio/{name}", s.handleAudio)
	if hub != nil {
		s.mux.HandleFunc("GET /ws/status", hub.ServeHTTP)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio upload")
		return
	}

	result, err := s.pipeline.ProcessAudio(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, core.ErrBusy) {
			writeError(w, http.StatusConflict, "another request is being processed")
			return
		}
		s.logger.Errorf("server: process audio: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusOK, NoSpeechResponse{Success: false, Message: result.Message})
		return
	}

	var audioURL *string
	if result.AudioRef != "" {
		u := "/audio/" + string(result.AudioRef)
		audioURL = &u
	}
	writeJSON(w, http.StatusOK, ProcessedResponse{
		Success:       true,
		Transcription: result.Transcript,
		Response:      result.Reply,
		AudioURL:      audioURL,
	})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	lines, err := s.log.ReadAll()
	if err != nil {
		s.logger.Errorf("server: read conversation: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read conversation")
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// handleConversationText serves the raw log for pollers that expect the
// plain text file.
func (s *Server) handleConversationText(w http.ResponseWriter, r *http.Request) {
	lines, err := s.log.ReadAll()
	if err != nil {
		http.Error(w, "Error reading conv.txt", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	for _, line := range lines {
		io.WriteString(w, line+"\n")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.status.Get()
	if err != nil {
		s.logger.Errorf("server: read status: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read status")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: status})
}

func (s *Server) handleStatusText(w http.ResponseWriter, r *http.Request) {
	status, err := s.status.Get()
	if err != nil {
		http.Error(w, "Error reading status.txt", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, status)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Clear(); err != nil {
		if errors.Is(err, core.ErrBusy) {
			writeError(w, http.StatusConflict, "cannot clear while a request is being processed")
			return
		}
		s.logger.Errorf("server: clear conversation: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to clear conversation")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, "Conversation cleared")
}

func (s *Server) handleToggleListening(w http.ResponseWriter, r *http.Request) {
	var req ToggleListeningRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	label := s.pipeline.SetListening(req.IsListening)
	writeJSON(w, http.StatusOK, ToggleListeningResponse{Success: true, Status: label})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	data, err := s.artifacts.Fetch(artifacts.Ref(r.PathValue("name")))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			http.Error(w, "Audio file not found", http.StatusNotFound)
			return
		}
		s.logger.Errorf("server: fetch artifact: %v", err)
		http.Error(w, "failed to read audio file", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Write(data)
}
