package assemble

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"finshorts-pipeline/types"
)

// Layer is one timed visual track. Layers are drawn bottom-to-top in
// the exact order the assembler stacks them; z-order is a hard
// contract, not a suggestion.
type Layer interface {
	Draw(dst *image.RGBA, t float64)
}

// ── Background ──

// backgroundLayer holds one static image, pre-stretched to the full
// frame, for the entire duration. It is always the bottom layer and
// resets every pixel, so the compositor never needs to clear.
type backgroundLayer struct {
	img *image.RGBA
}

func (l *backgroundLayer) Draw(dst *image.RGBA, t float64) {
	draw.Draw(dst, dst.Bounds(), l.img, l.img.Bounds().Min, draw.Src)
}

// ── Illustrations ──

// illustrationClip is one scene's foreground image with its motion
// effect and crossfade envelope.
type illustrationClip struct {
	img    *image.RGBA // pre-fitted to the placement rect
	start  float64
	end    float64 // visual end; the fade-out tail extends past it
	effect string
	rect   types.Rect
	first  bool
	last   bool
}

// illustrationLayer renders one clip per scene. Each clip starts at
// its scene's start and lasts its scene's duration, except the last
// clip which extends to total duration so trailing silence stays
// covered. Consecutive clips crossfade over fadeSec.
type illustrationLayer struct {
	clips     []illustrationClip
	fadeSec   float64
	intensity float64
}

func (l *illustrationLayer) Draw(dst *image.RGBA, t float64) {
	for i := range l.clips {
		c := &l.clips[i]
		a := clipAlpha(t, c.start, c.end, l.fadeSec, c.first, c.last)
		if a <= 0 {
			continue
		}
		p := 0.0
		if c.end > c.start {
			p = (t - c.start) / (c.end - c.start)
		}
		drawZoomed(dst, c.img, c.rect, zoomScale(c.effect, l.intensity, p), a)
	}
}

// drawZoomed draws img centered in rect at the given scale factor,
// cropping around the image midpoint (never a corner) so the zoom
// reads as a Ken-Burns push, then blends it at alpha a.
func drawZoomed(dst *image.RGBA, img *image.RGBA, rect types.Rect, scale, a float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	cropW := int(float64(w) / scale)
	cropH := int(float64(h) / scale)
	if cropW < 1 || cropH < 1 {
		return
	}
	crop := image.Rect(0, 0, cropW, cropH).Add(image.Pt(
		b.Min.X+(w-cropW)/2,
		b.Min.Y+(h-cropH)/2,
	))

	// Center the fitted image within its placement rect.
	x := rect.X + (rect.Width-w)/2
	y := rect.Y + (rect.Height-h)/2
	target := image.Rect(x, y, x+w, y+h)

	var opts *xdraw.Options
	if a < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(alpha8(a))}
	}
	xdraw.ApproxBiLinear.Scale(dst, target, img, crop, xdraw.Over, opts)
}

// ── Tweet/chart alternator ──

// alternatorLayer swaps between two same-sized panels on a fixed
// interval with a fade at each swap. It is scene-agnostic: the cycle
// repeats for the whole video regardless of scene boundaries.
type alternatorLayer struct {
	tweet    *image.RGBA
	chart    *image.RGBA
	interval float64
	fade     float64
	x, y     int
}

func (l *alternatorLayer) Draw(dst *image.RGBA, t float64) {
	showTweet, blend := alternatorPhase(t, l.interval, l.fade)

	cur, prev := l.tweet, l.chart
	if !showTweet {
		cur, prev = l.chart, l.tweet
	}

	pos := image.Pt(l.x, l.y)
	if blend < 1 {
		drawAt(dst, prev, pos, 1)
	}
	drawAt(dst, cur, pos, blend)
}

// alternatorPhase reports which panel is current at time t and how far
// its fade-in has progressed (1.0 once fully swapped). The tweet holds
// the first half of each 2*interval cycle.
func alternatorPhase(t, interval, fade float64) (showTweet bool, blend float64) {
	cycle := math.Mod(t, 2*interval)
	local := cycle
	showTweet = true
	if cycle >= interval {
		showTweet = false
		local = cycle - interval
	}
	if fade <= 0 || local >= fade {
		return showTweet, 1
	}
	return showTweet, local / fade
}

// ── Scrolling ticker ──

// tickerLayer scrolls one long pre-rendered strip horizontally at a
// constant pixel-per-second rate. The strip is wide enough that the
// modulo wrap never shows a seam; the layer owns only the scroll
// transform.
type tickerLayer struct {
	strip *image.RGBA
	speed int
	rect  types.Rect
}

func (l *tickerLayer) Draw(dst *image.RGBA, t float64) {
	stripW := l.strip.Bounds().Dx()
	if stripW == 0 {
		return
	}
	offset := tickerOffset(l.speed, t, stripW)

	// Visible window [offset, offset+width) of the strip, wrapping
	// around the end when it runs past the edge.
	remaining := l.rect.Width
	dstX := l.rect.X
	srcX := offset
	for remaining > 0 {
		n := min(remaining, stripW-srcX)
		sp := image.Pt(l.strip.Bounds().Min.X+srcX, l.strip.Bounds().Min.Y)
		r := image.Rect(dstX, l.rect.Y, dstX+n, l.rect.Y+l.strip.Bounds().Dy())
		draw.Draw(dst, r, l.strip, sp, draw.Over)
		dstX += n
		remaining -= n
		srcX = 0
	}
}

// tickerOffset computes the horizontal scroll offset at time t.
func tickerOffset(speed int, t float64, stripW int) int {
	return int(float64(speed)*t) % stripW
}

// ── Drawing helpers ──

func alpha8(a float64) color.Alpha {
	v := int(a*255 + 0.5)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Alpha{A: uint8(v)}
}

// drawAt blends img onto dst at pos with a uniform alpha.
func drawAt(dst *image.RGBA, img *image.RGBA, pos image.Point, a float64) {
	if a <= 0 {
		return
	}
	r := img.Bounds().Sub(img.Bounds().Min).Add(pos)
	if a >= 1 {
		draw.Draw(dst, r, img, img.Bounds().Min, draw.Over)
		return
	}
	draw.DrawMask(dst, r, img, img.Bounds().Min, image.NewUniform(alpha8(a)), image.Point{}, draw.Over)
}

// padToBox centers img on a white boxW x boxH panel so the two
// alternator panels share one size and can be blended pixel-for-pixel.
func padToBox(img *image.RGBA, boxW, boxH int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, boxW, boxH))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	x := (boxW - img.Bounds().Dx()) / 2
	y := (boxH - img.Bounds().Dy()) / 2
	drawAt(out, img, image.Pt(x, y), 1)
	return out
}
