// Package chat maintains one linear assistant conversation and
// round-trips user turns through the remote chat endpoint. Failures are
// downgraded to an in-band apology so the transcript stays consistent
// and the session remains usable.
package chat

import (
	"context"
	"strings"

	"github.com/agrimitra/farmcal/internal/taskstore"
)

// Apology is appended in place of a reply whenever the remote call
// fails. Chat errors are never surfaced as fatal.
const Apology = "Sorry, I encountered an error."

// Session holds an append-only message history scoped to one
// conversation. An optional greeting seeds the transcript but is never
// sent as history.
type Session struct {
	svc      taskstore.Service
	history  []taskstore.ChatMessage
	greeting bool
}

// NewSession creates an empty session over the chat service.
func NewSession(svc taskstore.Service) *Session {
	return &Session{svc: svc}
}

// Greet seeds the transcript with an assistant greeting. Only effective
// on a fresh session.
func (s *Session) Greet(text string) {
	if len(s.history) > 0 {
		return
	}
	s.history = append(s.history, taskstore.ChatMessage{Role: taskstore.RoleAssistant, Content: text})
	s.greeting = true
}

// History returns a copy of the full transcript, greeting included.
func (s *Session) History() []taskstore.ChatMessage {
	out := make([]taskstore.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Send appends the user turn, calls the remote endpoint with the prior
// history and context payload, and appends the reply. Empty messages
// are a no-op. A remote failure appends Apology and returns nil.
func (s *Session) Send(ctx context.Context, message string, payload map[string]any) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	// The history sent excludes this turn and the seeded greeting.
	prior := s.outboundHistory()
	s.history = append(s.history, taskstore.ChatMessage{Role: taskstore.RoleUser, Content: message})

	reply, err := s.svc.Chat(ctx, message, payload, prior)
	if err != nil {
		s.history = append(s.history, taskstore.ChatMessage{Role: taskstore.RoleAssistant, Content: Apology})
		return nil
	}
	s.history = append(s.history, taskstore.ChatMessage{Role: taskstore.RoleAssistant, Content: reply})
	return nil
}

func (s *Session) outboundHistory() []taskstore.ChatMessage {
	msgs := s.history
	if s.greeting && len(msgs) > 0 {
		msgs = msgs[1:]
	}
	out := make([]taskstore.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
