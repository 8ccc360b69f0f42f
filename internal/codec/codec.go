// Package codec reads and writes the TreeSheets binary format: a short
// header, one block per image and a terminal zlib-compressed document block
// holding the cell tree and the tag table. Fields added over the years are
// described by per-record version gates; files of any version up to
// CurrentVersion load, and saving always writes CurrentVersion.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kobzarvs/treesheets/internal/document"
	"github.com/kobzarvs/treesheets/internal/images"
	"github.com/kobzarvs/treesheets/internal/logger"
)

const (
	Magic          = "TSFF"
	CurrentVersion = 24
)

// Block tags.
const (
	blockPNG      = images.TypePNG
	blockJPEG     = images.TypeJPEG
	blockDocument = 'D'
)

type Options struct {
	// Compressor defaults to Zlib{}.
	Compressor Compressor
}

func (o Options) compressor() Compressor {
	if o.Compressor == nil {
		return Zlib{}
	}
	return o.Compressor
}

type loadState uint8

const (
	stateHeader loadState = iota
	stateBlocks
	stateDone
	stateFailed
)

func (s loadState) String() string {
	switch s {
	case stateHeader:
		return "header"
	case stateBlocks:
		return "blocks"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("loadState(%d)", uint8(s))
	}
}

type loader struct {
	r       *reader
	opts    Options
	state   loadState
	err     error
	version uint8
	doc     *document.Document
	tree    treeReader
}

// Load decodes a whole document from r. It reads nothing past the end of the
// header when the magic or the version is rejected, and nothing past the
// document block on success. On failure no partial document is returned.
func Load(r io.Reader, opts Options) (*document.Document, error) {
	l := &loader{
		r:     &reader{r: r},
		opts:  opts,
		state: stateHeader,
		doc:   document.Empty(),
	}
	for l.state != stateDone && l.state != stateFailed {
		var err error
		switch l.state {
		case stateHeader:
			err = l.header()
		case stateBlocks:
			err = l.block()
		}
		if err != nil {
			l.state, l.err = stateFailed, err
		}
	}
	if l.state == stateFailed {
		logger.Warn("document load failed", "version", l.version, "err", l.err)
		return nil, l.err
	}
	logger.Info("document loaded",
		"version", l.version,
		"images", l.doc.Images.Len(),
		"cells", l.tree.cells,
		"textBytes", l.tree.textBytes,
		"tags", l.doc.Tags.Len(),
	)
	return l.doc, nil
}

func (l *loader) header() error {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(l.r.r, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return failf(ErrNotATreeSheetsFile, "file too short")
		}
		return classify(err, ErrNotATreeSheetsFile, "magic")
	}
	if string(magic) != Magic {
		return failf(ErrNotATreeSheetsFile, "bad magic %q", magic)
	}
	v, err := l.r.u8()
	if err != nil {
		return classify(err, ErrNotATreeSheetsFile, "version")
	}
	if v > CurrentVersion {
		return failf(ErrNewerVersion, "version %d, newest supported is %d", v, CurrentVersion)
	}
	l.version = v
	var h headerRecord
	if err := readGates(l.r, v, headerGates, &h); err != nil {
		return classify(err, ErrCorruptBlockHeader, "header")
	}
	l.doc.Version = v
	l.doc.SelWidth, l.doc.SelHeight, l.doc.Zoom = h.selWidth, h.selHeight, h.zoom
	l.state = stateBlocks
	return nil
}

func (l *loader) block() error {
	tag, err := l.r.u8()
	if err != nil {
		return classify(err, ErrCorruptBlockHeader, "block tag (no document block)")
	}
	switch tag {
	case blockPNG, blockJPEG:
		var rec imageRecord
		if err := readGates(l.r, l.version, imageGates, &rec); err != nil {
			return classify(err, ErrCorruptBlockHeader, fmt.Sprintf("image %d", l.doc.Images.Len()))
		}
		l.doc.Images.Append(&images.Image{Data: rec.data, Type: tag, Scale: rec.scale})
		return nil
	case blockDocument:
		if err := l.document(); err != nil {
			return err
		}
		l.state = stateDone
		return nil
	default:
		return failf(ErrCorruptBlockHeader, "unknown block tag %#02x", tag)
	}
}

func (l *loader) document() error {
	rc, err := l.opts.compressor().Inflate(l.r.r)
	if err != nil {
		return failf(ErrCannotDecompress, "%v", err)
	}
	defer rc.Close()
	l.tree = treeReader{r: &reader{r: rc}, version: l.version}
	root, err := l.tree.cell(0)
	if err != nil {
		return classifyInflated(err, "cell tree")
	}
	if l.version >= 11 {
		if err := l.tree.tags(l.doc.Tags); err != nil {
			return classifyInflated(err, "tags")
		}
	}
	l.doc.Root = root
	return nil
}

// LoadInto loads r and, only if that succeeds, replaces the contents of dst.
// On error dst is left exactly as it was.
func LoadInto(dst *document.Document, r io.Reader, opts Options) error {
	doc, err := Load(r, opts)
	if err != nil {
		return err
	}
	*dst = *doc
	return nil
}

// Save sweeps doc and writes it at CurrentVersion: header, images in list
// order, then the compressed document block.
func Save(w io.Writer, doc *document.Document, opts Options) error {
	doc.Sweep()
	bw := bufio.NewWriter(w)
	out := &writer{w: bw}
	out.write([]byte(Magic))
	out.u8(CurrentVersion)
	h := headerRecord{selWidth: doc.SelWidth, selHeight: doc.SelHeight, zoom: doc.Zoom}
	writeGates(out, headerGates, &h)
	for i := 0; i < doc.Images.Len(); i++ {
		img := doc.Images.At(i)
		out.u8(img.Type)
		writeGates(out, imageGates, &imageRecord{scale: img.Scale, data: img.Data})
	}
	out.u8(blockDocument)
	if out.err != nil {
		return fmt.Errorf("%w: %w", ErrStreamIO, out.err)
	}

	zw, err := opts.compressor().Deflate(bw)
	if err != nil {
		return fmt.Errorf("%w: compressor: %w", ErrStreamIO, err)
	}
	tree := &writer{w: zw}
	writeCell(tree, doc.Root)
	writeTags(tree, doc.Tags)
	if tree.err != nil {
		zw.Close()
		return fmt.Errorf("%w: %w", ErrStreamIO, tree.err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	doc.Version = CurrentVersion

	cells, textBytes := doc.Stats()
	logger.Info("document saved",
		"version", CurrentVersion,
		"images", doc.Images.Len(),
		"cells", cells,
		"textBytes", textBytes,
	)
	return nil
}

func LoadFile(path string, opts Options) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: ErrStreamIO, Msg: err.Error()}
	}
	defer f.Close()
	doc, err := Load(bufio.NewReader(f), opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded file", "path", path)
	return doc, nil
}

// SaveFile writes doc next to path and renames it into place, so a failed
// save never truncates an existing file.
func SaveFile(path string, doc *document.Document, opts Options) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}
	if err := Save(tmp, doc, opts); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrStreamIO, err)
	}
	logger.Debug("saved file", "path", path)
	return nil
}
