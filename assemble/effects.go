package assemble

import "finshorts-pipeline/types"

// easeInOutCubic maps linear progress [0,1] onto a curve that
// decelerates at both ends, so zoom motion never starts or stops
// abruptly.
func easeInOutCubic(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := -2*p + 2
	return 1 - q*q*q/2
}

// zoomScale returns the scale factor (>= 1.0) for an effect at
// progress p in [0,1]. All zooms are centered on the image midpoint.
//
//	zoom_in:     1.0 -> 1.0+intensity
//	zoom_out:    1.0+intensity -> 1.0
//	zoom_center: breathes in to 1.0+intensity at the midpoint and back
//	static:      1.0
func zoomScale(effect string, intensity, p float64) float64 {
	switch effect {
	case types.EffectZoomIn:
		return 1.0 + intensity*easeInOutCubic(p)
	case types.EffectZoomOut:
		return 1.0 + intensity*(1.0-easeInOutCubic(p))
	case types.EffectZoomCenter:
		if p < 0.5 {
			return 1.0 + intensity*easeInOutCubic(p*2)
		}
		return 1.0 + intensity*easeInOutCubic((1.0-p)*2)
	default:
		return 1.0
	}
}

// clipAlpha is the crossfade envelope for an illustration clip visible
// over [start, end+fade]. The incoming clip ramps up over its first
// fade seconds while the outgoing clip ramps down past its end, so
// consecutive clips overlap instead of hard-cutting. The first clip
// skips the fade-in and the last skips the fade-out.
func clipAlpha(t, start, end, fade float64, first, last bool) float64 {
	if t < start || t >= end+fade {
		return 0
	}
	a := 1.0
	if !first && fade > 0 && t < start+fade {
		a = (t - start) / fade
	}
	if !last && fade > 0 && t >= end {
		a = min(a, 1.0-(t-end)/fade)
	}
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
