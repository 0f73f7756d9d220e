package projection

import "math"

const (
	resampleMaxDepth = 16
	// cosMinDistance breaks resampling across points more than 30° apart.
	cosMinDistance = 0.8660254037844387 // cos(30°)
)

// newResample wraps sink with adaptive midpoint resampling: segments whose
// projected midpoint deviates from the chord by more than √delta2 screen
// units are subdivided recursively. delta2 == 0 degrades to a plain
// point-by-point projection.
func newResample(project func(lambda, phi float64) (float64, float64), delta2 float64, sink Stream) Stream {
	if delta2 <= 0 {
		return &projectStream{project: project, sink: sink}
	}
	return &resampleStream{project: project, delta2: delta2, sink: sink}
}

// projectStream projects each point without subdivision.
type projectStream struct {
	project func(lambda, phi float64) (float64, float64)
	sink    Stream
}

func (p *projectStream) Point(lambda, phi float64) {
	x, y := p.project(lambda, phi)
	p.sink.Point(x, y)
}

func (p *projectStream) LineStart()    { p.sink.LineStart() }
func (p *projectStream) LineEnd()      { p.sink.LineEnd() }
func (p *projectStream) PolygonStart() { p.sink.PolygonStart() }
func (p *projectStream) PolygonEnd()   { p.sink.PolygonEnd() }

type resampleStream struct {
	project func(lambda, phi float64) (float64, float64)
	delta2  float64
	sink    Stream

	inLine  bool
	hasPrev bool
	// previous sampled point: screen position, rotated longitude, and unit
	// cartesian coordinates.
	x0, y0, lambda0, a0, b0, c0 float64
}

func (r *resampleStream) Point(lambda, phi float64) {
	if !r.inLine {
		x, y := r.project(lambda, phi)
		r.sink.Point(x, y)
		return
	}

	x1, y1 := r.project(lambda, phi)
	cosPhi := math.Cos(phi)
	a1 := math.Cos(lambda) * cosPhi
	b1 := math.Sin(lambda) * cosPhi
	c1 := math.Sin(phi)

	if r.hasPrev {
		r.lineTo(r.x0, r.y0, r.lambda0, r.a0, r.b0, r.c0, x1, y1, lambda, a1, b1, c1, resampleMaxDepth)
	}
	r.sink.Point(x1, y1)

	r.x0, r.y0, r.lambda0 = x1, y1, lambda
	r.a0, r.b0, r.c0 = a1, b1, c1
	r.hasPrev = true
}

// lineTo emits intermediate points between the previous sample and the
// current one (exclusive on both ends) wherever the great-circle midpoint
// strays from the projected chord.
func (r *resampleStream) lineTo(x0, y0, lambda0, a0, b0, c0, x1, y1, lambda1, a1, b1, c1 float64, depth int) {
	dx := x1 - x0
	dy := y1 - y0
	d2 := dx*dx + dy*dy
	if d2 <= 4*r.delta2 || depth == 0 {
		return
	}

	a := a0 + a1
	b := b0 + b1
	c := c0 + c1
	m := math.Sqrt(a*a + b*b + c*c)
	c /= m
	phi2 := math.Asin(clamp1(c))
	var lambda2 float64
	if math.Abs(math.Abs(c)-1) < epsilon || math.Abs(lambda0-lambda1) < epsilon {
		lambda2 = (lambda0 + lambda1) / 2
	} else {
		lambda2 = math.Atan2(b, a)
	}
	x2, y2 := r.project(lambda2, phi2)
	dx2 := x2 - x0
	dy2 := y2 - y0
	dz := dy*dx2 - dx*dy2

	if dz*dz/d2 > r.delta2 ||
		math.Abs((dx*dx2+dy*dy2)/d2-0.5) > 0.3 ||
		a0*a1+b0*b1+c0*c1 < cosMinDistance {
		a /= m
		b /= m
		r.lineTo(x0, y0, lambda0, a0, b0, c0, x2, y2, lambda2, a, b, c, depth-1)
		r.sink.Point(x2, y2)
		r.lineTo(x2, y2, lambda2, a, b, c, x1, y1, lambda1, a1, b1, c1, depth-1)
	}
}

func (r *resampleStream) LineStart() {
	r.inLine = true
	r.hasPrev = false
	r.sink.LineStart()
}

func (r *resampleStream) LineEnd() {
	r.inLine = false
	r.sink.LineEnd()
}

func (r *resampleStream) PolygonStart() { r.sink.PolygonStart() }
func (r *resampleStream) PolygonEnd()   { r.sink.PolygonEnd() }
