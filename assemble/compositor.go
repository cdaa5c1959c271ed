package assemble

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
)

// Compositor evaluates the full layer stack at discrete frame times
// and streams raw RGBA frames. Rendering frame N never depends on
// frame N-1: every layer is a pure function of t, which is what makes
// the output reproducible and the layers testable in isolation.
type Compositor struct {
	Width  int
	Height int
	FPS    int
	Total  float64
	Layers []Layer
}

// FrameCount is the number of frames for the configured duration.
func (c *Compositor) FrameCount() int {
	n := int(math.Round(c.Total * float64(c.FPS)))
	if n < 1 {
		n = 1
	}
	return n
}

// RenderFrame draws all layers for frame idx into dst, bottom-to-top.
// The bottom layer covers the full frame, so dst is never cleared.
func (c *Compositor) RenderFrame(dst *image.RGBA, idx int) {
	t := float64(idx) / float64(c.FPS)
	for _, l := range c.Layers {
		l.Draw(dst, t)
	}
}

// Stream writes every frame as raw RGBA bytes to w, reusing a single
// frame buffer. It checks ctx between frames so a render timeout can
// stop a long encode mid-stream.
func (c *Compositor) Stream(ctx context.Context, w io.Writer) error {
	frame := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	n := c.FrameCount()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.RenderFrame(frame, i)
		if _, err := w.Write(frame.Pix); err != nil {
			return fmt.Errorf("write frame %d/%d: %w", i+1, n, err)
		}
	}
	return nil
}
