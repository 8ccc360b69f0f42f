package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kobzarvs/treesheets/internal/document"
	"github.com/kobzarvs/treesheets/internal/logger"
)

const autosaveInterval = 15 * time.Second

// FileState is the view state of one document.
type FileState struct {
	Selection document.Path `json:"selection,omitempty"`
	Zoom      uint8         `json:"zoom,omitempty"`
	ScrollX   int           `json:"scroll_x"`
	ScrollY   int           `json:"scroll_y"`
}

// Capture reads the view state out of doc.
func Capture(doc *document.Document) FileState {
	return FileState{
		Selection: doc.Selection.Clone(),
		Zoom:      doc.Zoom,
		ScrollX:   doc.ScrollX,
		ScrollY:   doc.ScrollY,
	}
}

// Apply restores the state into doc, clamping the selection to the current
// tree. The returned error only reports that clamping happened.
func (s FileState) Apply(doc *document.Document) error {
	doc.Selection = s.Selection.Clone()
	doc.Zoom = s.Zoom
	doc.ScrollX, doc.ScrollY = s.ScrollX, s.ScrollY
	return doc.ClampSelection()
}

type Session struct {
	Files      map[string]FileState `json:"files"`
	ActiveFile string               `json:"active_file,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

// Manager handles session persistence
type Manager struct {
	mu       sync.RWMutex
	session  Session
	path     string
	dirty    bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewManager opens the session in the XDG state directory and starts the
// autosave loop.
func NewManager() (*Manager, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(path), nil
}

// NewManagerAt is NewManager with an explicit file location.
func NewManagerAt(path string) *Manager {
	m := &Manager{
		session: Session{
			Files: make(map[string]FileState),
		},
		path:     path,
		stopChan: make(chan struct{}),
	}
	m.load()
	go m.autosaveLoop()
	return m
}

func sessionPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "treesheets", "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return // No existing session, start fresh
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("ignoring unreadable session", "path", m.path, "err", err)
		return
	}
	if session.Files == nil {
		session.Files = make(map[string]FileState)
	}
	m.session = session
}

// Save persists the session to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// ForceSave saves even if not dirty
func (m *Manager) ForceSave() error {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
	return m.Save()
}

// GetFileState returns the saved state for a file
func (m *Manager) GetFileState(absPath string) (FileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.session.Files[absPath]
	return state, ok
}

// SetFileState updates the state for a file
func (m *Manager) SetFileState(absPath string, state FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Files[absPath] = state
	m.session.ActiveFile = absPath
	m.dirty = true
}

// Forget drops a file, e.g. one that no longer exists.
func (m *Manager) Forget(absPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.session.Files[absPath]; !ok {
		return
	}
	delete(m.session.Files, absPath)
	if m.session.ActiveFile == absPath {
		m.session.ActiveFile = ""
	}
	m.dirty = true
}

// GetActiveFile returns the last active file
func (m *Manager) GetActiveFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ActiveFile
}

func (m *Manager) autosaveLoop() {
	ticker := time.NewTicker(autosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(); err != nil {
				logger.Warn("session autosave failed", "err", err)
			}
		case <-m.stopChan:
			return
		}
	}
}

// Stop stops the autosave loop and saves final state
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	return m.ForceSave()
}
