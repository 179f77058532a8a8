package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mentor/internal/logging"
)

const (
	profileFile  = "profile.json"
	casesFile    = "cases.json"
	templateFile = "template.md"
)

// datePlaceholder is substituted when a journal entry is created from
// the template.
const datePlaceholder = "{DATE}"

// defaultTemplate seeds the journal template on first use. The three
// sections are the ones the advice stage may rewrite.
const defaultTemplate = `# Daily Journal - {DATE}

## Today's Reflection

## Key Learnings

## Tomorrow's Goals
`

// PersistenceError wraps a storage failure. It is fatal to the operation
// that triggered it; no rollback of earlier writes is attempted.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is the durable-state contract the orchestration layer consumes.
// It is the sole writer of profile, case, and journal files.
type Store interface {
	LoadProfile() (*Profile, error)
	PersistProfile(profile *Profile) error
	LoadCases() ([]ReflectionCase, error)
	PersistCase(c ReflectionCase) error
	LoadPrinciplesFromCases() ([]string, error)
	ReadJournalTemplate() (string, error)
	UpdateJournalTemplate(content string) error
	NewJournal(date time.Time) (string, error)
}

// FileStore persists state as flat files: a JSON object for the profile,
// a JSON array for cases, markdown for the journal. Writes are
// last-writer-wins with no inter-process locking; the deployment
// assumption is a single user in a single process.
type FileStore struct {
	notesDir   string
	journalDir string
	mu         sync.Mutex
}

// NewFileStore creates a store rooted at the given directories.
func NewFileStore(notesDir, journalDir string) *FileStore {
	return &FileStore{notesDir: notesDir, journalDir: journalDir}
}

// LoadProfile reads the persisted profile. A missing file yields an
// empty profile, not an error.
func (s *FileStore) LoadProfile() (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProfileLocked()
}

func (s *FileStore) loadProfileLocked() (*Profile, error) {
	data, err := os.ReadFile(filepath.Join(s.notesDir, profileFile))
	if os.IsNotExist(err) {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load profile", Err: err}
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, &PersistenceError{Op: "load profile", Err: err}
	}
	return &profile, nil
}

// PersistProfile merges the given profile's non-empty fields into the
// stored profile and writes the result. Existing fields are never
// deleted.
func (s *FileStore) PersistProfile(profile *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadProfileLocked()
	if err != nil {
		return err
	}
	existing.Merge(profile)

	if err := os.MkdirAll(s.notesDir, 0755); err != nil {
		return &PersistenceError{Op: "persist profile", Err: err}
	}
	data, err := json.MarshalIndent(existing, "", "    ")
	if err != nil {
		return &PersistenceError{Op: "persist profile", Err: err}
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(s.notesDir, profileFile), data, 0644); err != nil {
		return &PersistenceError{Op: "persist profile", Err: err}
	}
	logging.Debug("profile persisted", "fields", len(existing.ToMap()))
	return nil
}

// LoadCases reads all stored reflection cases. A missing file yields an
// empty slice.
func (s *FileStore) LoadCases() ([]ReflectionCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCasesLocked()
}

func (s *FileStore) loadCasesLocked() ([]ReflectionCase, error) {
	data, err := os.ReadFile(filepath.Join(s.notesDir, casesFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load cases", Err: err}
	}
	var cases []ReflectionCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, &PersistenceError{Op: "load cases", Err: err}
	}
	return cases, nil
}

// PersistCase appends a case to the case file.
func (s *FileStore) PersistCase(c ReflectionCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.loadCasesLocked()
	if err != nil {
		return err
	}
	cases = append(cases, c)

	if err := os.MkdirAll(s.notesDir, 0755); err != nil {
		return &PersistenceError{Op: "persist case", Err: err}
	}
	data, err := json.MarshalIndent(cases, "", "    ")
	if err != nil {
		return &PersistenceError{Op: "persist case", Err: err}
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(s.notesDir, casesFile), data, 0644); err != nil {
		return &PersistenceError{Op: "persist case", Err: err}
	}
	logging.Debug("case persisted", "case_id", c.CaseID, "session_id", c.SessionID)
	return nil
}

// LoadPrinciplesFromCases returns the new principle of every stored case.
func (s *FileStore) LoadPrinciplesFromCases() ([]string, error) {
	cases, err := s.LoadCases()
	if err != nil {
		return nil, err
	}
	principles := make([]string, 0, len(cases))
	for _, c := range cases {
		if c.NewPrinciple != "" {
			principles = append(principles, c.NewPrinciple)
		}
	}
	return principles, nil
}

// ReadJournalTemplate returns the current template, seeding the default
// on first use.
func (s *FileStore) ReadJournalTemplate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTemplateLocked()
}

func (s *FileStore) readTemplateLocked() (string, error) {
	path := filepath.Join(s.journalDir, templateFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(s.journalDir, 0755); err != nil {
			return "", &PersistenceError{Op: "read journal template", Err: err}
		}
		if err := os.WriteFile(path, []byte(defaultTemplate), 0644); err != nil {
			return "", &PersistenceError{Op: "read journal template", Err: err}
		}
		return defaultTemplate, nil
	}
	if err != nil {
		return "", &PersistenceError{Op: "read journal template", Err: err}
	}
	return string(data), nil
}

// UpdateJournalTemplate replaces the template wholesale. Callers are
// responsible for the user confirmation gate.
func (s *FileStore) UpdateJournalTemplate(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.journalDir, 0755); err != nil {
		return &PersistenceError{Op: "update journal template", Err: err}
	}
	if err := os.WriteFile(filepath.Join(s.journalDir, templateFile), []byte(content), 0644); err != nil {
		return &PersistenceError{Op: "update journal template", Err: err}
	}
	logging.Info("journal template updated", "bytes", len(content))
	return nil
}

// NewJournal creates the journal entry for the given date from the
// current template and returns its path. An existing entry for the date
// is left untouched.
func (s *FileStore) NewJournal(date time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := date.Format("2006-01-02")
	path := filepath.Join(s.journalDir, fmt.Sprintf("journal-%s.md", day))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	template, err := s.readTemplateLocked()
	if err != nil {
		return "", err
	}
	content := strings.ReplaceAll(template, datePlaceholder, day)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", &PersistenceError{Op: "new journal", Err: err}
	}
	return path, nil
}

// Registry hands out one store per session id. Sessions share the same
// underlying directories, so the per-session stores see each other's
// writes; the registry exists so the orchestration layer never
// constructs storage itself.
type Registry struct {
	notesDir   string
	journalDir string
	stores     map[string]*FileStore
	mu         sync.Mutex
}

// NewRegistry creates a registry rooted at the given directories.
func NewRegistry(notesDir, journalDir string) *Registry {
	return &Registry{
		notesDir:   notesDir,
		journalDir: journalDir,
		stores:     make(map[string]*FileStore),
	}
}

// ForSession returns the store for a session id, creating it on first use.
func (r *Registry) ForSession(sessionID string) *FileStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[sessionID]
	if !ok {
		store = NewFileStore(r.notesDir, r.journalDir)
		r.stores[sessionID] = store
	}
	return store
}
