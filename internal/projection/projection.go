// Package projection provides invertible map projections: a raw
// spherical transform composed with a three-axis rotation, scale/translate
// into screen space, adaptive resampling, and pixel clipping. Instances are
// created through a Registry of named zero-argument factories and configured
// by Build.
package projection

import "math"

// Family identifies a projection family. The family governs which
// parameters a projection instance accepts.
type Family string

const (
	Cylindrical       Family = "CYLINDRICAL"
	Conic             Family = "CONIC"
	Azimuthal         Family = "AZIMUTHAL"
	Pseudocylindrical Family = "PSEUDOCYLINDRICAL"
)

// Stream is the geometry event protocol. Producers emit coordinates in
// degrees at the head of a projection pipeline; past the projection stage
// coordinates are screen pixels.
type Stream interface {
	Point(x, y float64)
	LineStart()
	LineEnd()
	PolygonStart()
	PolygonEnd()
}

// defaultPrecision is the adaptive resampling threshold in screen units
// (√0.5 px).
const defaultPrecision = 0.70710678

// Projection is one configured projection instance: raw spherical math plus
// rotation, centering, scale, translation, precision, and clipping. Not safe
// for mutation concurrent with use; callers serialize setters against
// Forward/Invert/Stream.
type Projection struct {
	id     string
	family Family
	raw    rawProjection

	// makeRaw rebuilds the raw transform when standard parallels change;
	// nil for non-conic instances.
	makeRaw func(phi0, phi1 float64) rawProjection

	scaleK     float64
	translate  [2]float64
	center     [2]float64 // degrees
	rotateDeg  [3]float64 // degrees
	parallels  [2]float64 // degrees, conic only
	clipAngle  float64    // degrees, azimuthal only; 0 disables
	precision  float64    // screen units; 0 disables resampling
	clipExtent *[4]float64

	rot    rotation
	dx, dy float64
}

func newProjection(id string, family Family, raw rawProjection) *Projection {
	p := &Projection{
		id:        id,
		family:    family,
		raw:       raw,
		scaleK:    150,
		translate: [2]float64{480, 250},
		precision: defaultPrecision,
	}
	p.recenter()
	return p
}

// recenter recomputes the derived transform so that the projected center
// lands on the translate point. Called after every parameter change.
func (p *Projection) recenter() {
	p.rot = newRotation(
		p.rotateDeg[0]*radians,
		p.rotateDeg[1]*radians,
		p.rotateDeg[2]*radians,
	)
	cx, cy := p.raw.project(p.center[0]*radians, p.center[1]*radians)
	p.dx = p.translate[0] - cx*p.scaleK
	p.dy = p.translate[1] + cy*p.scaleK
}

// ID returns the registered identifier this instance was created under, or
// "" for anonymous instances.
func (p *Projection) ID() string { return p.id }

// Family returns the projection family.
func (p *Projection) Family() Family { return p.family }

// Scale returns the absolute scale factor.
func (p *Projection) Scale() float64 { return p.scaleK }

// SetScale sets the absolute scale factor.
func (p *Projection) SetScale(k float64) *Projection {
	p.scaleK = k
	p.recenter()
	return p
}

// Translate returns the screen translation in pixels.
func (p *Projection) Translate() [2]float64 { return p.translate }

// SetTranslate sets the screen translation in pixels.
func (p *Projection) SetTranslate(t [2]float64) *Projection {
	p.translate = t
	p.recenter()
	return p
}

// Center returns the geographic center in degrees.
func (p *Projection) Center() [2]float64 { return p.center }

// SetCenter sets the geographic center in degrees.
func (p *Projection) SetCenter(c [2]float64) *Projection {
	p.center = c
	p.recenter()
	return p
}

// Rotate returns the three rotation angles in degrees.
func (p *Projection) Rotate() [3]float64 { return p.rotateDeg }

// SetRotate sets the three rotation angles in degrees.
func (p *Projection) SetRotate(r [3]float64) *Projection {
	p.rotateDeg = r
	p.recenter()
	return p
}

// SupportsParallels reports whether the instance has configurable standard
// parallels (conic family only).
func (p *Projection) SupportsParallels() bool { return p.makeRaw != nil }

// Parallels returns the standard parallels in degrees. Meaningful only when
// SupportsParallels.
func (p *Projection) Parallels() [2]float64 { return p.parallels }

// SetParallels sets the standard parallels (degrees) and rebuilds the raw
// transform. No-op for instances without parallels.
func (p *Projection) SetParallels(par [2]float64) *Projection {
	if p.makeRaw == nil {
		return p
	}
	p.parallels = par
	p.raw = p.makeRaw(par[0]*radians, par[1]*radians)
	p.recenter()
	return p
}

// SupportsClipAngle reports whether the instance accepts a small-circle clip
// angle (azimuthal family only).
func (p *Projection) SupportsClipAngle() bool { return p.family == Azimuthal }

// ClipAngle returns the clip angle in degrees; 0 means none.
func (p *Projection) ClipAngle() float64 { return p.clipAngle }

// SetClipAngle sets the clip angle in degrees. No-op for non-azimuthal
// instances.
func (p *Projection) SetClipAngle(a float64) *Projection {
	if p.family != Azimuthal {
		return p
	}
	p.clipAngle = a
	return p
}

// Precision returns the resampling threshold in screen units.
func (p *Projection) Precision() float64 { return p.precision }

// SetPrecision sets the resampling threshold in screen units; 0 disables
// adaptive resampling.
func (p *Projection) SetPrecision(v float64) *Projection {
	p.precision = v
	return p
}

// ClipExtent returns the pixel clip rectangle [x0,y0,x1,y1], or nil.
func (p *Projection) ClipExtent() *[4]float64 {
	if p.clipExtent == nil {
		return nil
	}
	e := *p.clipExtent
	return &e
}

// SetClipExtent sets the pixel clip rectangle; nil removes it.
func (p *Projection) SetClipExtent(extent *[4]float64) *Projection {
	if extent == nil {
		p.clipExtent = nil
	} else {
		e := *extent
		p.clipExtent = &e
	}
	return p
}

// Forward projects a longitude/latitude pair (degrees) to screen pixels.
// Clipping does not apply to single-point projection; ok is false only when
// the point has no finite image.
func (p *Projection) Forward(lon, lat float64) (x, y float64, ok bool) {
	lambda, phi := p.rot.forward(lon*radians, lat*radians)
	px, py := p.raw.project(lambda, phi)
	x = p.dx + px*p.scaleK
	y = p.dy - py*p.scaleK
	return x, y, finite(x) && finite(y)
}

// Invert maps a screen pixel back to longitude/latitude in degrees.
func (p *Projection) Invert(x, y float64) (lon, lat float64, ok bool) {
	px := (x - p.dx) / p.scaleK
	py := (p.dy - y) / p.scaleK
	lambda, phi, ok := p.raw.invert(px, py)
	if !ok {
		return 0, 0, false
	}
	lambda, phi = p.rot.inverse(lambda, phi)
	lon, lat = lambda*degrees, phi*degrees
	return lon, lat, finite(lon) && finite(lat)
}

// projectRotated maps rotated radians to screen pixels; the resampling stage
// subdivides against this transform.
func (p *Projection) projectRotated(lambda, phi float64) (float64, float64) {
	px, py := p.raw.project(lambda, phi)
	return p.dx + px*p.scaleK, p.dy - py*p.scaleK
}

// Stream returns a geometry stream that projects incoming degree coordinates
// and emits screen pixels into sink, applying rotation, adaptive resampling,
// the clip angle, and the pixel clip extent in order.
func (p *Projection) Stream(sink Stream) Stream {
	s := sink
	if p.clipExtent != nil {
		s = newClipRectangle(*p.clipExtent, s)
	}
	s = newResample(p.projectRotated, p.precision*p.precision, s)
	if p.clipAngle > 0 {
		s = newClipCircle(p.clipAngle*radians, s)
	}
	return &rotateStream{rot: p.rot, next: s}
}

// rotateStream converts degrees to radians and applies the rotation at the
// head of the pipeline.
type rotateStream struct {
	rot  rotation
	next Stream
}

func (r *rotateStream) Point(lon, lat float64) {
	lambda, phi := r.rot.forward(lon*radians, lat*radians)
	r.next.Point(lambda, phi)
}

func (r *rotateStream) LineStart()    { r.next.LineStart() }
func (r *rotateStream) LineEnd()      { r.next.LineEnd() }
func (r *rotateStream) PolygonStart() { r.next.PolygonStart() }
func (r *rotateStream) PolygonEnd()   { r.next.PolygonEnd() }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
