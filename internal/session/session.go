// Package session holds the per-visitor conversation state.
package session

import (
	"time"

	"BukuBot/internal/order"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleError     = "error"
)

// Message represents a single chat message
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one visitor's append-only conversation log plus the running
// order counter. A session is owned by exactly one interactive visitor and
// is never shared.
type Session struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	Messages  []Message `json:"messages"`
	Orders    int       `json:"orders"`
}

// New creates an empty session.
func New(id string) *Session {
	return &Session{
		ID:        id,
		StartTime: time.Now(),
		Messages:  []Message{},
	}
}

// AppendUser appends a user message.
func (s *Session) AppendUser(content string) {
	s.append(RoleUser, content)
}

// AppendAssistant appends an assistant reply and bumps the order counter if
// the reply carries the order marker. The counter moves by at most one per
// reply, regardless of how many markers the reply contains.
func (s *Session) AppendAssistant(content string) {
	s.append(RoleAssistant, content)
	if order.ContainsMarker(content) {
		s.Orders++
	}
}

// AppendError appends a failure notice for the transcript. Notices are
// presentational; they are not part of the user/assistant exchange.
func (s *Session) AppendError(content string) {
	s.append(RoleError, content)
}

// Rollback removes the pending user message after a failed gateway call,
// restoring the strict user/assistant alternation.
func (s *Session) Rollback() {
	n := len(s.Messages)
	if n > 0 && s.Messages[n-1].Role == RoleUser {
		s.Messages = s.Messages[:n-1]
	}
}

// Clear resets the transcript. The order counter is unaffected.
func (s *Session) Clear() {
	s.Messages = []Message{}
}

// Len returns the number of messages in the transcript.
func (s *Session) Len() int {
	return len(s.Messages)
}

func (s *Session) append(role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}
