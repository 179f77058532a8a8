package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// charsPerToken is the rough character-to-token ratio used when the
// provider reports no usage metadata.
const charsPerToken = 4

// Session holds the shared conversation memory for one assistant run. All
// agents in the run append to and read from the same history.
type Session struct {
	ID        string
	StartTime time.Time

	history     []*genai.Content
	tokenCounts []int
	totalTokens int
	tokenLimit  int
	mu          sync.RWMutex
}

// NewSession creates a session whose history is bounded to tokenLimit
// estimated tokens. A limit of zero disables eviction.
func NewSession(tokenLimit int) *Session {
	return &Session{
		ID:         uuid.NewString(),
		StartTime:  time.Now(),
		history:    make([]*genai.Content, 0),
		tokenLimit: tokenLimit,
	}
}

// AddUserMessage appends a user message to the history.
func (s *Session) AddUserMessage(message string) {
	s.AddContent(genai.NewContentFromText(message, genai.RoleUser))
}

// AddModelMessage appends a model message to the history.
func (s *Session) AddModelMessage(message string) {
	s.AddContent(genai.NewContentFromText(message, genai.RoleModel))
}

// AddContent appends raw content to the history.
func (s *Session) AddContent(content *genai.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := estimateTokens(content)
	s.history = append(s.history, content)
	s.tokenCounts = append(s.tokenCounts, tokens)
	s.totalTokens += tokens
	s.evictLocked()
}

// History returns a copy of the current history slice.
func (s *Session) History() []*genai.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*genai.Content, len(s.history))
	copy(out, s.history)
	return out
}

// TokenCount returns the estimated token total of the retained history.
func (s *Session) TokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalTokens
}

// MessageCount returns the number of retained messages.
func (s *Session) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Clear empties the history.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = s.history[:0]
	s.tokenCounts = s.tokenCounts[:0]
	s.totalTokens = 0
}

// evictLocked drops the oldest messages until the estimated total fits
// the limit. The newest message is always kept even if it alone exceeds
// the limit.
func (s *Session) evictLocked() {
	if s.tokenLimit <= 0 {
		return
	}
	for s.totalTokens > s.tokenLimit && len(s.history) > 1 {
		s.totalTokens -= s.tokenCounts[0]
		s.history = s.history[1:]
		s.tokenCounts = s.tokenCounts[1:]
	}
}

// estimateTokens approximates the token cost of a content entry.
func estimateTokens(content *genai.Content) int {
	chars := 0
	for _, part := range content.Parts {
		chars += len(part.Text)
		if part.FunctionCall != nil {
			chars += len(part.FunctionCall.Name) + 32*len(part.FunctionCall.Args)
		}
		if part.FunctionResponse != nil {
			chars += len(part.FunctionResponse.Name) + 32*len(part.FunctionResponse.Response)
		}
	}
	tokens := chars / charsPerToken
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
