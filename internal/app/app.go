package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/treesheets/internal/cell"
	"github.com/kobzarvs/treesheets/internal/codec"
	"github.com/kobzarvs/treesheets/internal/config"
	"github.com/kobzarvs/treesheets/internal/document"
	"github.com/kobzarvs/treesheets/internal/draw"
	"github.com/kobzarvs/treesheets/internal/logger"
	"github.com/kobzarvs/treesheets/internal/session"
	"github.com/kobzarvs/treesheets/internal/viewer"
)

// pageWidth is the width budget used when laying out for Stats.
const pageWidth = 1 << 16

// App is the top-level runtime for treesheets.
type App struct {
	args []string
	cfg  config.Config
	opts codec.Options

	path    string
	doc     *document.Document
	view    *viewer.Viewer
	session *session.Manager
}

func New(args []string) *App {
	return &App{args: args, cfg: config.Default()}
}

func (a *App) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := logger.Init(os.Getenv("TREESHEETS_DEBUG") != ""); err != nil {
		return err
	}
	defer logger.Close()

	if err := a.open(); err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	return a.loop(s)
}

// Export writes the outline of the file named by the first argument.
func (a *App) Export(w io.Writer) error {
	if len(a.args) == 0 {
		return errors.New("export needs a file")
	}
	doc, err := codec.LoadFile(a.args[0], a.opts)
	if err != nil {
		return err
	}
	return doc.ExportText(w)
}

// Stats prints counts for the file named by the first argument and the size
// of its root laid out with the Go fonts at the given DPI.
func (a *App) Stats(w io.Writer, dpi float64) error {
	if len(a.args) == 0 {
		return errors.New("stats needs a file")
	}
	doc, err := codec.LoadFile(a.args[0], a.opts)
	if err != nil {
		return err
	}
	m, err := draw.NewFaceMeasurer(dpi)
	if err != nil {
		return err
	}
	ctx := &cell.Context{Measure: m, Opts: cell.DefaultOptions(), Images: doc.ImageSizer(a.cfg.Images.DisplayScale)}
	pw, ph := doc.Root.Layout(ctx, pageWidth, false)
	cells, textBytes := doc.Stats()
	_, err = fmt.Fprintf(w, "version %d\ncells %d\ntext bytes %d\nimages %d\ntags %d\nlayout %dx%d\n",
		doc.Version, cells, textBytes, doc.Images.Len(), doc.Tags.Len(), pw, ph)
	return err
}

// open loads the document named on the command line, or starts an empty one
// when the file does not exist yet, and restores its view state.
func (a *App) open() error {
	a.doc = document.New()
	if len(a.args) > 0 {
		path, err := filepath.Abs(a.args[0])
		if err != nil {
			return err
		}
		a.path = path
		if _, err := os.Stat(path); err == nil {
			doc, err := codec.LoadFile(path, a.opts)
			if err != nil {
				return fmt.Errorf("%s: %w", a.args[0], err)
			}
			a.doc = doc
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if sm, err := session.NewManager(); err != nil {
		logger.Warn("session unavailable", "err", err)
	} else {
		a.session = sm
		if state, ok := sm.GetFileState(a.path); ok && a.path != "" {
			if err := state.Apply(a.doc); err != nil {
				logger.Debug("saved selection no longer fits", "path", a.path, "err", err)
			}
		}
	}

	if err := a.doc.Images.Rescale(a.cfg.Images.DisplayScale, a.cfg.Images.Workers); err != nil {
		logger.Warn("some images could not be decoded", "err", err)
	}

	a.view = viewer.New(a.doc, a.cfg)
	a.view.SetTitle(a.title())
	return nil
}

func (a *App) title() string {
	if a.path == "" {
		return "[new]"
	}
	return filepath.Base(a.path)
}

func (a *App) loop(s tcell.Screen) error {
	a.view.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch a.view.HandleKey(ev) {
			case viewer.ActionQuit:
				return a.close()
			case viewer.ActionSave:
				a.save()
			}
		case *tcell.EventResize:
			s.Sync()
		case nil:
			// Screen finalized.
			return a.close()
		}
		a.view.Render(s)
	}
}

func (a *App) save() {
	if a.path == "" {
		a.view.SetMessage("no file name")
		return
	}
	if err := codec.SaveFile(a.path, a.doc, a.opts); err != nil {
		logger.Error("save failed", "path", a.path, "err", err)
		a.view.SetMessage("save failed: " + err.Error())
		return
	}
	a.remember()
	a.view.SetMessage("saved " + a.title())
}

func (a *App) remember() {
	if a.session == nil || a.path == "" {
		return
	}
	a.session.SetFileState(a.path, session.Capture(a.doc))
}

func (a *App) close() error {
	if a.session == nil {
		return nil
	}
	a.remember()
	return a.session.Stop()
}
