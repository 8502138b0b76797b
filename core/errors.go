package core

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline stage a collaborator error originated from.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageGeneration    Stage = "generation"
	StageSynthesis     Stage = "synthesis"
)

var (
	// ErrBusy is returned when a pipeline request or a conversation clear
	// arrives while another request holds the single-flight gate.
	ErrBusy = errors.New("pipeline busy")

	// ErrNotFound is returned when an artifact reference does not resolve,
	// either because it never existed or because retention evicted it.
	ErrNotFound = errors.New("artifact not found")
)

// CollaboratorError wraps a failure from one of the remote services.
type CollaboratorError struct {
	Stage Stage
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Stage, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// StorageError wraps a failed artifact store operation.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
