package projection

import "math"

// clipRectangle clips streamed screen-space geometry to a pixel rectangle
// using Liang–Barsky segment clipping. Lines are broken where they leave the
// rectangle; polygon rings are clipped segment-wise without re-joining along
// the rectangle edge, which is sufficient for outline output.
type clipRectangle struct {
	x0, y0, x1, y1 float64
	sink           Stream

	inLine  bool
	hasPrev bool
	px, py  float64
	runOpen bool
}

func newClipRectangle(extent [4]float64, sink Stream) Stream {
	x0, y0, x1, y1 := extent[0], extent[1], extent[2], extent[3]
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return &clipRectangle{x0: x0, y0: y0, x1: x1, y1: y1, sink: sink}
}

func (c *clipRectangle) contains(x, y float64) bool {
	return x >= c.x0 && x <= c.x1 && y >= c.y0 && y <= c.y1
}

func (c *clipRectangle) Point(x, y float64) {
	if !c.inLine {
		if c.contains(x, y) {
			c.sink.Point(x, y)
		}
		return
	}

	if !c.hasPrev {
		c.hasPrev = true
		c.px, c.py = x, y
		if c.contains(x, y) {
			c.sink.LineStart()
			c.sink.Point(x, y)
			c.runOpen = true
		}
		return
	}

	t0, t1, ok := liangBarsky(c.x0, c.y0, c.x1, c.y1, c.px, c.py, x, y)
	switch {
	case !ok:
		c.closeRun()
	default:
		ax := c.px + t0*(x-c.px)
		ay := c.py + t0*(y-c.py)
		bx := c.px + t1*(x-c.px)
		by := c.py + t1*(y-c.py)
		if t0 > 0 {
			// Segment enters the rectangle at a fresh point.
			c.closeRun()
		}
		if !c.runOpen {
			c.sink.LineStart()
			c.sink.Point(ax, ay)
			c.runOpen = true
		}
		c.sink.Point(bx, by)
		if t1 < 1 {
			c.closeRun()
		}
	}
	c.px, c.py = x, y
}

func (c *clipRectangle) closeRun() {
	if c.runOpen {
		c.sink.LineEnd()
		c.runOpen = false
	}
}

func (c *clipRectangle) LineStart() {
	c.inLine = true
	c.hasPrev = false
	c.runOpen = false
}

func (c *clipRectangle) LineEnd() {
	c.closeRun()
	c.inLine = false
}

func (c *clipRectangle) PolygonStart() { c.sink.PolygonStart() }
func (c *clipRectangle) PolygonEnd()   { c.sink.PolygonEnd() }

// liangBarsky returns the parametric sub-interval [t0,t1] of the segment
// (ax,ay)→(bx,by) inside the rectangle, or ok=false when the segment misses
// it entirely.
func liangBarsky(x0, y0, x1, y1, ax, ay, bx, by float64) (t0, t1 float64, ok bool) {
	dx := bx - ax
	dy := by - ay
	t0, t1 = 0, 1

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	if clip(-dx, ax-x0) && clip(dx, x1-ax) && clip(-dy, ay-y0) && clip(dy, y1-ay) {
		return t0, t1, true
	}
	return 0, 0, false
}

// clipCircle drops streamed geometry beyond an angular radius from the
// projection center. Operates in rotated radian space ahead of resampling.
// Visibility-based: lines are broken at the boundary, with no edge
// interpolation.
type clipCircle struct {
	cosRadius float64
	sink      Stream

	inLine  bool
	runOpen bool
}

func newClipCircle(radius float64, sink Stream) Stream {
	return &clipCircle{cosRadius: math.Cos(radius), sink: sink}
}

func (c *clipCircle) visible(lambda, phi float64) bool {
	return math.Cos(lambda)*math.Cos(phi) >= c.cosRadius
}

func (c *clipCircle) Point(lambda, phi float64) {
	if !c.inLine {
		if c.visible(lambda, phi) {
			c.sink.Point(lambda, phi)
		}
		return
	}
	if c.visible(lambda, phi) {
		if !c.runOpen {
			c.sink.LineStart()
			c.runOpen = true
		}
		c.sink.Point(lambda, phi)
	} else if c.runOpen {
		c.sink.LineEnd()
		c.runOpen = false
	}
}

func (c *clipCircle) LineStart() {
	c.inLine = true
	c.runOpen = false
}

func (c *clipCircle) LineEnd() {
	if c.runOpen {
		c.sink.LineEnd()
		c.runOpen = false
	}
	c.inLine = false
}

func (c *clipCircle) PolygonStart() { c.sink.PolygonStart() }
func (c *clipCircle) PolygonEnd()   { c.sink.PolygonEnd() }
