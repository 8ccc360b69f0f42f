package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kobzarvs/treesheets/internal/document"
)

func TestRoundTripThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	m := NewManagerAt(path)
	state := FileState{Selection: document.Path{{X: 1, Y: 0}, {X: 0, Y: 2}}, Zoom: 1, ScrollY: 7}
	m.SetFileState("/docs/a.cts", state)
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	m2 := NewManagerAt(path)
	defer m2.Stop()
	got, ok := m2.GetFileState("/docs/a.cts")
	if !ok {
		t.Fatalf("state not restored")
	}
	if len(got.Selection) != 2 || got.Selection[1] != (document.Step{X: 0, Y: 2}) || got.Zoom != 1 || got.ScrollY != 7 {
		t.Fatalf("restored = %+v", got)
	}
	if m2.GetActiveFile() != "/docs/a.cts" {
		t.Fatalf("ActiveFile = %q", m2.GetActiveFile())
	}
}

func TestSaveSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m := NewManagerAt(path)
	defer m.Stop()
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("clean Save wrote a file: %v", err)
	}
}

func TestCorruptSessionIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := NewManagerAt(path)
	defer m.Stop()
	if _, ok := m.GetFileState("x"); ok {
		t.Fatalf("state from corrupt file")
	}
}

func TestForget(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "session.json"))
	defer m.Stop()
	m.SetFileState("/a", FileState{})
	m.Forget("/a")
	if _, ok := m.GetFileState("/a"); ok || m.GetActiveFile() != "" {
		t.Fatalf("Forget left state behind")
	}
}

func TestCaptureApplyClamps(t *testing.T) {
	doc := document.New()
	if err := doc.Root.Grid.InsertCols(1, 1); err != nil {
		t.Fatal(err)
	}
	doc.Select(document.Path{{X: 1, Y: 0}})
	doc.ScrollX = 4
	state := Capture(doc)

	other := document.New()
	err := state.Apply(other)
	if !errors.Is(err, document.ErrOutOfBoundsSelection) {
		t.Fatalf("Apply err = %v, want ErrOutOfBoundsSelection", err)
	}
	if len(other.Selection) != 0 || other.ScrollX != 4 {
		t.Fatalf("applied = sel %v scroll %d", other.Selection, other.ScrollX)
	}
}

func TestSessionPathUsesStateHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	p, err := sessionPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "treesheets", "session.json"); p != want {
		t.Fatalf("sessionPath = %q, want %q", p, want)
	}
}
