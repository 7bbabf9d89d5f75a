// Package history keeps a bounded per-session record of conversation
// turns. The routing stage includes recent turns as context so short
// follow-up queries ("yes", "budget", "that one") route correctly.
package history

import (
	"strings"
	"sync"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// maxContextRunes bounds how much of a turn is included in routing context.
const maxContextRunes = 300

// Store holds conversation turns per session, in memory, keeping at most
// maxTurns per session. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	maxTurns int
	sessions map[string][]Turn
}

// NewStore creates a store keeping up to maxTurns turns per session.
func NewStore(maxTurns int) *Store {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &Store{
		maxTurns: maxTurns,
		sessions: make(map[string][]Turn),
	}
}

// Append records a turn for the session, evicting the oldest turn when the
// session is at capacity.
func (s *Store) Append(sessionID string, role Role, content string) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.sessions[sessionID] = turns
}

// Recent returns up to n of the session's most recent turns, oldest first.
// The returned slice is a copy.
func (s *Store) Recent(sessionID string, n int) []Turn {
	if sessionID == "" || n <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear removes all turns for the session.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len returns the number of turns stored for the session.
func (s *Store) Len(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[sessionID])
}

// RoutingContext formats up to n recent turns as "User: ..."/"Assistant: ..."
// lines for inclusion in a routing prompt. Long turns are truncated. Returns
// an empty string when the session has no history.
func (s *Store) RoutingContext(sessionID string, n int) string {
	turns := s.Recent(sessionID, n)
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		label := "User"
		if turn.Role == RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, label+": "+truncate(turn.Content, maxContextRunes))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
