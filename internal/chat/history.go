package chat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/genai"
)

// TranscriptEntry is one saved exchange line.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TranscriptFile is the persisted form of a session transcript.
type TranscriptFile struct {
	SessionID string            `json:"session_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Entries   []TranscriptEntry `json:"entries"`
}

// TranscriptStore persists session transcripts under a data directory.
type TranscriptStore struct {
	dir string
}

// NewTranscriptStore creates a store rooted at dir/transcripts.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	path := filepath.Join(dir, "transcripts")
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &TranscriptStore{dir: path}, nil
}

// Save writes the session's history to disk.
func (s *TranscriptStore) Save(session *Session) error {
	file := TranscriptFile{
		SessionID: session.ID,
		StartTime: session.StartTime,
		EndTime:   time.Now(),
		Entries:   make([]TranscriptEntry, 0),
	}

	for _, content := range session.History() {
		var text string
		for _, part := range content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text == "" {
			continue
		}
		file.Entries = append(file.Entries, TranscriptEntry{
			Role:    string(content.Role),
			Content: text,
		})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, session.ID+".json"), data, 0644)
}

// Load reads a saved transcript.
func (s *TranscriptStore) Load(sessionID string) (*TranscriptFile, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionID+".json"))
	if err != nil {
		return nil, err
	}
	var file TranscriptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns the IDs of all saved transcripts.
func (s *TranscriptStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var sessions []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			sessions = append(sessions, entry.Name()[:len(entry.Name())-5])
		}
	}
	return sessions, nil
}

// RestoreHistory rebuilds session history from a transcript.
func RestoreHistory(file *TranscriptFile, tokenLimit int) *Session {
	session := NewSession(tokenLimit)
	session.ID = file.SessionID
	session.StartTime = file.StartTime
	for _, entry := range file.Entries {
		role := genai.Role(entry.Role)
		session.AddContent(genai.NewContentFromText(entry.Content, role))
	}
	return session
}
