package codec

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compressor is the compressed-stream capability used for the document
// block.
type Compressor interface {
	Deflate(w io.Writer) (io.WriteCloser, error)
	Inflate(r io.Reader) (io.ReadCloser, error)
}

// Zlib is the default Compressor. The zero value uses the library's default
// level; set Level to a zlib level to override it.
type Zlib struct {
	Level int
}

func (z Zlib) Deflate(w io.Writer) (io.WriteCloser, error) {
	level := z.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	return zlib.NewWriterLevel(w, level)
}

func (z Zlib) Inflate(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}
