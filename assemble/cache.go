package assemble

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"finshorts-pipeline/types"
)

// Scaling modes. Fit preserves aspect ratio inside the target box;
// Stretch fills the target exactly (backgrounds only).
const (
	modeFit = iota
	modeStretch
)

// Cache owns every decoded pixel buffer for the lifetime of one
// assembly run. Each (file, target size, mode) key is decoded at most
// once, even under concurrent load; buffers are never mutated after
// load and are shared read-only by every layer that references them.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	decodes atomic.Int64
}

type cacheEntry struct {
	once sync.Once
	img  *image.RGBA
	err  error
}

// NewCache creates an empty per-run cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Fit decodes path and scales it to fit within maxW x maxH, keeping
// aspect ratio. maxW/maxH of 0 returns the image at native size.
func (c *Cache) Fit(path string, maxW, maxH int) (*image.RGBA, error) {
	return c.load(path, maxW, maxH, modeFit)
}

// Stretch decodes path and scales it to exactly w x h.
func (c *Cache) Stretch(path string, w, h int) (*image.RGBA, error) {
	return c.load(path, w, h, modeStretch)
}

func (c *Cache) load(path string, w, h, mode int) (*image.RGBA, error) {
	key := fmt.Sprintf("%s|%dx%d|%d", path, w, h, mode)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.img, e.err = c.decode(path, w, h, mode)
	})
	return e.img, e.err
}

func (c *Cache) decode(path string, w, h, mode int) (*image.RGBA, error) {
	c.decodes.Add(1)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: asset file %s", types.ErrMissingInput, path)
		}
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedInput, path, err)
	}

	b := src.Bounds()
	dstW, dstH := b.Dx(), b.Dy()
	switch {
	case mode == modeStretch && w > 0 && h > 0:
		dstW, dstH = w, h
	case mode == modeFit && w > 0 && h > 0:
		dstW, dstH = FitSize(b.Dx(), b.Dy(), w, h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	if dstW == b.Dx() && dstH == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}
	return dst, nil
}

// Decodes reports how many real decode operations have run; repeated
// loads of the same key do not increase it.
func (c *Cache) Decodes() int64 { return c.decodes.Load() }

// Release drops every buffer. The cache is per-run: nothing survives
// one assembly invocation.
func (c *Cache) Release() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Request names one asset the prefetch pool should warm.
type Request struct {
	Path    string
	W, H    int
	Stretch bool
}

// Prefetch decodes all requested assets with a bounded worker pool.
// Workers share nothing beyond the cache's write-once-per-key keys, so
// duplicate requests cost one decode. The first failure aborts the
// group: a missing required file must fail assembly before any frame
// is produced.
func (c *Cache) Prefetch(ctx context.Context, reqs []Request, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, r := range reqs {
		r := r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			if r.Stretch {
				_, err = c.Stretch(r.Path, r.W, r.H)
			} else {
				_, err = c.Fit(r.Path, r.W, r.H)
			}
			return err
		})
	}
	return g.Wait()
}

// FitSize scales (w, h) to fit within (maxW, maxH) preserving aspect.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := int(float64(w) * scale)
	fh := int(float64(h) * scale)
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}
