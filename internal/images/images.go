// Package images keeps the document's image list. Cells refer to images by
// index; the list owns the bytes.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"

	"github.com/cespare/xxhash/v2"
)

// Type tags as stored in the file.
const (
	TypePNG  byte = 'I'
	TypeJPEG byte = 'J'
)

// Limits guarding decode against hostile payloads.
const (
	MaxImageWidth  = 8192
	MaxImageHeight = 8192
)

var (
	ErrCorruptImage = errors.New("corrupt image")
	ErrNoImage      = errors.New("no such image")
)

// Image is an immutable encoded picture. Pixel size and the display bitmap
// are derived lazily and may be recomputed at any time.
type Image struct {
	Data  []byte
	Type  byte
	Scale float64
	Hash  uint64

	refs    int
	decoded bool
	width   int
	height  int
	err     error

	display      image.Image
	displayScale float64
}

// Corrupt reports the recorded decode failure, if any.
func (img *Image) Corrupt() error {
	return img.err
}

// Display returns the cached scaled bitmap, nil until Rescale ran.
func (img *Image) Display() image.Image {
	return img.display
}

func (img *Image) decode() (int, int, error) {
	if img.decoded {
		return img.width, img.height, img.err
	}
	img.decoded = true
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		img.err = fmt.Errorf("%w: %v", ErrCorruptImage, err)
		return 0, 0, img.err
	}
	if cfg.Width > MaxImageWidth || cfg.Height > MaxImageHeight {
		img.err = fmt.Errorf("%w: too large: %dx%d (max %dx%d)",
			ErrCorruptImage, cfg.Width, cfg.Height, MaxImageWidth, MaxImageHeight)
		return 0, 0, img.err
	}
	img.width, img.height = cfg.Width, cfg.Height
	return img.width, img.height, nil
}

// List is the insertion-ordered image collection of a document.
type List struct {
	items []*Image
}

func NewList() *List {
	return &List{}
}

func (l *List) Len() int { return len(l.items) }

func (l *List) At(i int) *Image {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Hash is the content hash used for deduplication.
func Hash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Append adds img at the end without deduplication and returns its index.
// The codec uses it so file order becomes the index space.
func (l *List) Append(img *Image) int {
	if img.Scale <= 0 {
		img.Scale = 1
	}
	if img.Hash == 0 {
		img.Hash = Hash(img.Data)
	}
	l.items = append(l.items, img)
	return len(l.items) - 1
}

// Add inserts an image for a new reference. An existing image with the same
// hash and bytes is reused and its reference count incremented.
func (l *List) Add(data []byte, typ byte, scale float64, hash uint64) int {
	for i, img := range l.items {
		if img.Hash == hash && bytes.Equal(img.Data, data) {
			img.refs++
			return i
		}
	}
	i := l.Append(&Image{Data: data, Type: typ, Scale: scale, Hash: hash})
	l.items[i].refs = 1
	return i
}

// Decode returns the pixel size of image i, decoding on first access.
// A decode failure wraps ErrCorruptImage and only affects that image.
func (l *List) Decode(i int) (w, h int, err error) {
	img := l.At(i)
	if img == nil {
		return 0, 0, fmt.Errorf("%w: %d", ErrNoImage, i)
	}
	return img.decode()
}

// DisplaySize is the on-screen extent of image i at the given display scale.
func (l *List) DisplaySize(i int, displayScale float64) (w, h int, ok bool) {
	pw, ph, err := l.Decode(i)
	if err != nil {
		return 0, 0, false
	}
	s := l.items[i].Scale * displayScale
	if s <= 0 {
		s = 1
	}
	return int(math.Round(float64(pw) * s)), int(math.Round(float64(ph) * s)), true
}

func (l *List) Refs(i int) int {
	if img := l.At(i); img != nil {
		return img.refs
	}
	return 0
}

// Ref records one more cell reference to image i.
func (l *List) Ref(i int) {
	if img := l.At(i); img != nil {
		img.refs++
	}
}

func (l *List) ResetRefs() {
	for _, img := range l.items {
		img.refs = 0
	}
}

// Prune drops images nobody references and returns the old-to-new index map;
// dropped entries map to -1.
func (l *List) Prune() []int {
	remap := make([]int, len(l.items))
	kept := l.items[:0]
	for i, img := range l.items {
		if img.refs == 0 {
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, img)
	}
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = nil
	}
	l.items = kept
	return remap
}
