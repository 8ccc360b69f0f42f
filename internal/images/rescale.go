package images

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/kobzarvs/treesheets/internal/logger"
)

// Rescale rebuilds every image's display bitmap for a new display scale.
// Work is spread over at most workers goroutines (GOMAXPROCS when <= 0) and
// Rescale returns only after all of them finished. Each task touches a single
// image. Failures mark that image corrupt and are returned combined; they
// never stop the other tasks.
func (l *List) Rescale(displayScale float64, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if displayScale <= 0 {
		displayScale = 1
	}
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	g.SetLimit(workers)
	for i, img := range l.items {
		i, img := i, img
		g.Go(func() error {
			if err := img.rescale(displayScale); err != nil {
				logger.Warn("image rescale failed", "index", i, "err", err)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("image %d: %w", i, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (img *Image) rescale(displayScale float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during decode: %v", ErrCorruptImage, r)
			img.err = err
		}
	}()
	if _, _, err := img.decode(); err != nil {
		return err
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		img.err = fmt.Errorf("%w: %v", ErrCorruptImage, err)
		return img.err
	}
	s := img.Scale * displayScale
	w := int(math.Round(float64(img.width) * s))
	h := int(math.Round(float64(img.height) * s))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == img.width && h == img.height {
		img.display = src
	} else {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		img.display = dst
	}
	img.displayScale = displayScale
	return nil
}
