package projection

import (
	"math"
	"testing"
)

func TestLiangBarsky(t *testing.T) {
	tests := []struct {
		name           string
		ax, ay, bx, by float64
		wantOK         bool
		wantT0, wantT1 float64
	}{
		{"fully inside", 2, 2, 8, 8, true, 0, 1},
		{"crossing left edge", -5, 5, 5, 5, true, 0.5, 1},
		{"crossing both x edges", -10, 5, 20, 5, true, 1.0 / 3, 2.0 / 3},
		{"fully outside above", 2, 20, 8, 20, false, 0, 0},
		{"diagonal miss", -5, -1, -1, -5, false, 0, 0},
		{"exits right", 5, 5, 15, 5, true, 0, 0.5},
	}
	for _, tt := range tests {
		t0, t1, ok := liangBarsky(0, 0, 10, 10, tt.ax, tt.ay, tt.bx, tt.by)
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if math.Abs(t0-tt.wantT0) > 1e-9 || math.Abs(t1-tt.wantT1) > 1e-9 {
			t.Errorf("%s: (t0,t1) = (%v, %v), want (%v, %v)", tt.name, t0, t1, tt.wantT0, tt.wantT1)
		}
	}
}

func TestClipRectangleLineCrossing(t *testing.T) {
	rec := &recorder{}
	c := newClipRectangle([4]float64{0, 0, 10, 10}, rec)

	// A horizontal line entering from the left and exiting right: one run
	// with both endpoints snapped to the rectangle edge.
	c.LineStart()
	c.Point(-5, 5)
	c.Point(15, 5)
	c.LineEnd()

	if rec.trace() != "lineStart point point lineEnd" {
		t.Fatalf("trace = %q", rec.trace())
	}
	if rec.points[0] != [2]float64{0, 5} || rec.points[1] != [2]float64{10, 5} {
		t.Errorf("clipped endpoints = %v, want [[0 5] [10 5]]", rec.points)
	}
}

func TestClipRectangleSplitsLine(t *testing.T) {
	rec := &recorder{}
	c := newClipRectangle([4]float64{0, 0, 10, 10}, rec)

	// In → out → back in: the line must split into two runs.
	c.LineStart()
	c.Point(5, 5)
	c.Point(5, 20)
	c.Point(8, 20)
	c.Point(8, 5)
	c.LineEnd()

	want := "lineStart point point lineEnd lineStart point point lineEnd"
	if rec.trace() != want {
		t.Errorf("trace = %q, want %q", rec.trace(), want)
	}
}

func TestClipRectangleFullyOutside(t *testing.T) {
	rec := &recorder{}
	c := newClipRectangle([4]float64{0, 0, 10, 10}, rec)

	c.LineStart()
	c.Point(20, 20)
	c.Point(30, 30)
	c.LineEnd()

	if len(rec.events) != 0 {
		t.Errorf("fully-outside line emitted events: %q", rec.trace())
	}
}

func TestClipRectanglePolygonPassThrough(t *testing.T) {
	rec := &recorder{}
	c := newClipRectangle([4]float64{0, 0, 10, 10}, rec)

	c.PolygonStart()
	c.LineStart()
	c.Point(2, 2)
	c.Point(8, 2)
	c.Point(8, 8)
	c.LineEnd()
	c.PolygonEnd()

	want := "polygonStart lineStart point point point lineEnd polygonEnd"
	if rec.trace() != want {
		t.Errorf("trace = %q, want %q", rec.trace(), want)
	}
}

func TestClipRectangleLonePoints(t *testing.T) {
	rec := &recorder{}
	c := newClipRectangle([4]float64{0, 0, 10, 10}, rec)

	c.Point(5, 5)   // inside: forwarded
	c.Point(50, 50) // outside: dropped

	if len(rec.points) != 1 || rec.points[0] != [2]float64{5, 5} {
		t.Errorf("points = %v, want [[5 5]]", rec.points)
	}
}

func TestClipCircleBreaksLine(t *testing.T) {
	rec := &recorder{}
	c := newClipCircle(30*radians, rec)

	c.LineStart()
	c.Point(0, 0)            // visible
	c.Point(10*radians, 0)   // visible
	c.Point(100*radians, 0)  // beyond 30°: run closed
	c.Point(-10*radians, 0)  // visible again: new run
	c.LineEnd()

	want := "lineStart point point lineEnd lineStart point lineEnd"
	if rec.trace() != want {
		t.Errorf("trace = %q, want %q", rec.trace(), want)
	}
}
