package pipeline

import (
	"fmt"
	"strings"
	"sync"
)

const defaultSystemPrompt = "You are Jarvis, Rudra's human assistant. " +
	"You are witty and full of personality. " +
	"Your answers should be limited to 1-2 short sentences."

// Session holds the accumulating conversation context for the lifetime of
// the process. One "User: ...\nAgent: ..." exchange is added per completed
// turn. The accumulation is deliberately not sent to the reply generator,
// which only sees the latest transcript; it is tracked for future use.
type Session struct {
	mu        sync.Mutex
	preamble  string
	userRole  string
	agentRole string
	context   strings.Builder
}

func NewSession(preamble, userRole, agentRole string) *Session {
	s := &Session{
		preamble:  preamble,
		userRole:  userRole,
		agentRole: agentRole,
	}
	s.context.WriteString(preamble)
	return s
}

// BeginTurn extends the context with the user utterance and an open agent
// line awaiting the reply.
func (s *Session) BeginTurn(transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(&s.context, "\n%s: %s\n%s: ", s.userRole, transcript, s.agentRole)
}

// CompleteTurn closes the open agent line with the generated reply.
func (s *Session) CompleteTurn(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context.WriteString(reply)
}

// Context returns the accumulated context text.
func (s *Session) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context.String()
}

// Reset truncates the context back to the system preamble.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context.Reset()
	s.context.WriteString(s.preamble)
}
