package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

const (
	maxStringLen  = 1 << 26
	maxImageBytes = 1 << 30
)

// reader decodes little-endian fixed-width values. It reads exactly the
// bytes asked for, so a caller that stops early leaves the rest unread.
type reader struct {
	r   io.Reader
	buf [8]byte
}

func (r *reader) fill(n int) ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		return nil, err
	}
	return r.buf[:n], nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) u64() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *reader) f64() (float64, error) {
	v, err := r.u64()
	return math.Float64frombits(v), err
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", failf(ErrCorruptTree, "string of %d bytes", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// blob reads n raw bytes without trusting n for the allocation.
func (r *reader) blob(n uint64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.r, int64(n)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// writer mirrors reader. The first failure sticks and later calls are
// no-ops, so callers check err once at the end of a record.
type writer struct {
	w   io.Writer
	buf [8]byte
	err error
}

func (w *writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *writer) u8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *writer) i32(v int32) { w.u32(uint32(v)) }

func (w *writer) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

func (w *writer) i64(v int64) { w.u64(uint64(v)) }

func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.write([]byte(s))
}
