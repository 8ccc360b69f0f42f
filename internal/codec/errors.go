package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

var (
	ErrNotATreeSheetsFile = errors.New("not a TreeSheets file")
	ErrNewerVersion       = errors.New("file was written by a newer version")
	ErrCannotDecompress   = errors.New("cannot decompress document")
	ErrCorruptBlockHeader = errors.New("corrupt block header")
	ErrCorruptTree        = errors.New("corrupt cell tree")
	ErrUnsupportedLegacy  = errors.New("legacy format not supported")
	ErrStreamIO           = errors.New("stream i/o error")
)

// LoadError is returned by every failed load. Kind is one of the Err*
// sentinels; Error gives the reason shown to the user.
type LoadError struct {
	Kind error
	Msg  string
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *LoadError) Unwrap() error { return e.Kind }

func failf(kind error, format string, args ...any) error {
	return &LoadError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// classify maps an error from the raw stream to a load error of the given
// kind, keeping storage failures apart from a stream that simply ends early.
func classify(err error, truncated error, what string) error {
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return failf(truncated, "%s: unexpected end of data", what)
	}
	return failf(ErrStreamIO, "%s: %v", what, err)
}

// classifyInflated is classify for data read through the decompressor.
func classifyInflated(err error, what string) error {
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) || errors.Is(err, zlib.ErrChecksum) ||
		errors.Is(err, zlib.ErrHeader) || errors.Is(err, zlib.ErrDictionary) {
		return failf(ErrCannotDecompress, "%s: %v", what, err)
	}
	return classify(err, ErrCorruptTree, what)
}
