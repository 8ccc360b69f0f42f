package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/treesheets/internal/codec"
	"github.com/kobzarvs/treesheets/internal/config"
	"github.com/kobzarvs/treesheets/internal/document"
	"github.com/kobzarvs/treesheets/internal/session"
)

func newTestApp(t *testing.T, args ...string) *App {
	t.Helper()
	a := New(args)
	a.cfg = config.Default()
	if err := a.open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	return a
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(40, 12)
	return s
}

func writeDoc(t *testing.T, path string) {
	t.Helper()
	doc := document.New()
	if err := doc.Root.Grid.InsertCols(1, 1); err != nil {
		t.Fatal(err)
	}
	doc.Root.Grid.At(0, 0).SetText("first")
	doc.Root.Grid.At(1, 0).SetText("second")
	if err := codec.SaveFile(path, doc, codec.Options{}); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
}

func TestLoopSavesAndRemembersSelection(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	path := filepath.Join(t.TempDir(), "notes.cts")
	writeDoc(t, path)

	a := newTestApp(t, path)
	s := newScreen(t)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'l', tcell.ModNone)
	s.InjectKey(tcell.KeyCtrlS, 0, tcell.ModCtrl)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	if err := a.loop(s); err != nil {
		t.Fatalf("loop: %v", err)
	}

	loaded, err := codec.LoadFile(path, codec.Options{})
	if err != nil {
		t.Fatalf("LoadFile after save: %v", err)
	}
	if got := loaded.Root.Grid.At(1, 0).Text.Value; got != "second" {
		t.Fatalf("saved text = %q, want %q", got, "second")
	}

	m := session.NewManagerAt(filepath.Join(state, "treesheets", "session.json"))
	defer m.Stop()
	fs, ok := m.GetFileState(path)
	if !ok {
		t.Fatalf("no session state for %s", path)
	}
	if len(fs.Selection) != 1 || fs.Selection[0] != (document.Step{X: 1, Y: 0}) {
		t.Fatalf("remembered selection = %v, want [{1 0}]", fs.Selection)
	}
}

func TestOpenRestoresSelection(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	path := filepath.Join(t.TempDir(), "notes.cts")
	writeDoc(t, path)

	m := session.NewManagerAt(filepath.Join(state, "treesheets", "session.json"))
	m.SetFileState(path, session.FileState{Selection: document.Path{{X: 1, Y: 0}}})
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, path)
	defer a.close()
	if got := a.doc.Selected().Text.Value; got != "second" {
		t.Fatalf("selected = %q, want %q", got, "second")
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "fresh.cts")
	a := newTestApp(t, path)
	if a.title() != "fresh.cts" {
		t.Fatalf("title = %q", a.title())
	}
	a.save()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("save did not create the file: %v", err)
	}
	if err := a.close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenRejectsForeignFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.cts")
	if err := os.WriteFile(path, []byte("PK\x03\x04junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := New([]string{path})
	a.cfg = config.Default()
	err := a.open()
	if !errors.Is(err, codec.ErrNotATreeSheetsFile) {
		t.Fatalf("open err = %v, want ErrNotATreeSheetsFile", err)
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.cts")
	writeDoc(t, path)
	var buf bytes.Buffer
	if err := New([]string{path}).Export(&buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got, want := buf.String(), "first\nsecond\n"; got != want {
		t.Fatalf("Export = %q, want %q", got, want)
	}
}

func TestStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.cts")
	writeDoc(t, path)
	var buf bytes.Buffer
	if err := New([]string{path}).Stats(&buf, 72); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"version 24\n", "cells 3\n", "text bytes 11\n", "images 0\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Stats output %q lacks %q", out, want)
		}
	}
	if strings.Contains(out, "layout 0x") {
		t.Fatalf("Stats laid out nothing: %q", out)
	}
}
