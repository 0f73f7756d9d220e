package composite

import (
	"math"
	"strings"
	"testing"

	"github.com/pspoerri/atlas-composer/internal/projection"
)

func franceMetropole() Territory {
	bounds := [2][2]float64{{-5.5, 41.2}, {9.9, 51.3}}
	rotate := [3]float64{-3, -46.2, 0}
	parallels := [2]float64{0, 60}
	return Territory{
		Code:         "FR-MET",
		Name:         "France métropolitaine",
		Bounds:       &bounds,
		ProjectionID: "conic-conformal",
		Family:       projection.Conic,
		Parameters:   projection.Parameters{Rotate: &rotate, Parallels: &parallels},
	}
}

func guadeloupe() Territory {
	bounds := [2][2]float64{{-61.9, 15.8}, {-61.0, 16.6}}
	center := [2]float64{-61.46, 16.14}
	return Territory{
		Code:         "FR-GP",
		Name:         "Guadeloupe",
		Bounds:       &bounds,
		ProjectionID: "mercator",
		Family:       projection.Cylindrical,
		Parameters:   projection.Parameters{Center: &center, ScaleMultiplier: 1.4},
		Layout:       projection.Layout{TranslateOffset: [2]float64{-300, 100}},
	}
}

func newTestComposite(t *testing.T, territories ...Territory) *Composite {
	t.Helper()
	c := New(projection.NewDefaultRegistry(), 800, 600, 0)
	for _, terr := range territories {
		if err := c.Add(terr); err != nil {
			t.Fatalf("Add(%s): %v", terr.Code, err)
		}
	}
	return c
}

func TestForwardRoutesByBounds(t *testing.T) {
	c := newTestComposite(t, franceMetropole(), guadeloupe())

	// Paris routes through FR-MET's sub-projection only.
	x, y, ok := c.Forward(2.35, 48.85)
	if !ok {
		t.Fatal("Forward(Paris) not ok")
	}
	met, _ := c.Projection("FR-MET")
	wx, wy, _ := met.Forward(2.35, 48.85)
	if x != wx || y != wy {
		t.Errorf("Paris projected (%v, %v), want FR-MET's (%v, %v)", x, y, wx, wy)
	}

	// Pointe-à-Pitre routes through FR-GP's.
	x, y, ok = c.Forward(-61.46, 16.14)
	if !ok {
		t.Fatal("Forward(Guadeloupe center) not ok")
	}
	gp, _ := c.Projection("FR-GP")
	wx, wy, _ = gp.Forward(-61.46, 16.14)
	if x != wx || y != wy {
		t.Errorf("Guadeloupe projected (%v, %v), want FR-GP's (%v, %v)", x, y, wx, wy)
	}
}

func TestForwardMissReturnsNotOK(t *testing.T) {
	c := newTestComposite(t, franceMetropole(), guadeloupe())

	if _, _, ok := c.Forward(10000, 10000); ok {
		t.Error("nonsense coordinates matched a territory")
	}
	if _, _, ok := c.Forward(139.7, 35.7); ok { // Tokyo: outside both bounds
		t.Error("point outside all bounds matched a territory")
	}
}

func TestForwardBoundsEdgesInclusive(t *testing.T) {
	c := newTestComposite(t, franceMetropole())

	for _, pt := range [][2]float64{{-5.5, 41.2}, {9.9, 51.3}, {-5.5, 51.3}} {
		if _, _, ok := c.Forward(pt[0], pt[1]); !ok {
			t.Errorf("bounds corner %v did not route", pt)
		}
	}
}

func TestOverlapFirstRegisteredWins(t *testing.T) {
	a := franceMetropole()
	b := franceMetropole()
	b.Code = "FR-MET-2"
	b.ProjectionID = "mercator"
	b.Parameters = projection.Parameters{}
	c := newTestComposite(t, a, b)

	x, y, _ := c.Forward(2.35, 48.85)
	first, _ := c.Projection("FR-MET")
	wx, wy, _ := first.Forward(2.35, 48.85)
	if x != wx || y != wy {
		t.Error("overlapping bounds did not resolve to the first-registered territory")
	}
}

func TestInvertBoundsGate(t *testing.T) {
	c := newTestComposite(t, franceMetropole(), guadeloupe())

	// A screen point whose FR-MET inverse lands far outside FR-MET's
	// bounds: the candidate must be rejected even though the math
	// succeeds, and FR-GP rejects it too, so the router returns no result.
	met, _ := c.Projection("FR-MET")
	x, y, ok := met.Forward(30, 30) // inverts fine against FR-MET's math
	if !ok {
		t.Fatal("setup: Forward(30, 30) failed")
	}
	if lon, lat, ok := c.Invert(x, y); ok {
		t.Errorf("bounds gate accepted (%v, %v) from outside FR-MET's bounds", lon, lat)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	c := newTestComposite(t, franceMetropole(), guadeloupe())

	for _, pt := range [][2]float64{{2.35, 48.85}, {-61.46, 16.14}, {5.4, 43.3}} {
		x, y, ok := c.Forward(pt[0], pt[1])
		if !ok {
			t.Fatalf("Forward(%v) not ok", pt)
		}
		lon, lat, ok := c.Invert(x, y)
		if !ok {
			t.Fatalf("Invert of projected %v not ok", pt)
		}
		if math.Abs(lon-pt[0]) > 1e-6 || math.Abs(lat-pt[1]) > 1e-6 {
			t.Errorf("roundtrip %v → (%v, %v)", pt, lon, lat)
		}
	}

	if _, _, ok := c.Invert(10000, 10000); ok {
		t.Error("Invert far off-canvas produced a bounds-valid result")
	}
}

// Territories without bounds keep the legacy permissive inversion: the first
// successful inverse is accepted unconditionally.
func TestInvertWithoutBoundsPermissive(t *testing.T) {
	terr := guadeloupe()
	terr.Bounds = nil
	c := newTestComposite(t, terr)

	if _, _, ok := c.Invert(123, 456); !ok {
		t.Error("boundless territory rejected an invertible screen point")
	}
	// Without bounds there is no forward routing either.
	if _, _, ok := c.Forward(-61.46, 16.14); ok {
		t.Error("boundless territory matched forward routing")
	}
}

// One territory's malformed bounds must not break the others.
func TestMalformedBoundsIsolated(t *testing.T) {
	bad := guadeloupe()
	bad.Bounds = &[2][2]float64{{-61.0, 16.6}, {-61.9, 15.8}} // min > max
	c := newTestComposite(t, franceMetropole(), bad)

	if _, _, ok := c.Forward(2.35, 48.85); !ok {
		t.Error("healthy territory stopped routing")
	}
	if _, _, ok := c.Forward(-61.46, 16.14); ok {
		t.Error("territory with degenerate bounds matched forward routing")
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	c := newTestComposite(t, franceMetropole())
	err := c.Add(franceMetropole())
	if err == nil || !strings.Contains(err.Error(), "FR-MET") {
		t.Errorf("duplicate Add error = %v", err)
	}
}

func TestAddUnknownProjectionID(t *testing.T) {
	terr := guadeloupe()
	terr.ProjectionID = "bogus"
	c := New(projection.NewDefaultRegistry(), 800, 600, 0)
	err := c.Add(terr)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("Add with unknown projection id: err = %v", err)
	}
}

func TestAggregateAccessors(t *testing.T) {
	c := newTestComposite(t, franceMetropole(), guadeloupe())

	met, _ := c.Projection("FR-MET")
	if c.Scale() != met.Scale() {
		t.Errorf("Scale() = %v, want first sub-projection's %v", c.Scale(), met.Scale())
	}
	if c.Translate() != met.Translate() {
		t.Errorf("Translate() = %v, want %v", c.Translate(), met.Translate())
	}

	// Setters are fluent no-ops.
	if c.SetScale(1).SetTranslate([2]float64{1, 2}) != c {
		t.Error("setters are not fluent")
	}
	if c.Scale() != met.Scale() {
		t.Error("SetScale mutated the composite")
	}
}

func TestUpdateOperations(t *testing.T) {
	c := newTestComposite(t, franceMetropole(), guadeloupe())

	if err := c.UpdateScale("FR-GP", 2.0); err != nil {
		t.Fatal(err)
	}
	gp, _ := c.Projection("FR-GP")
	if got := gp.Scale(); math.Abs(got-2*projection.DefaultReferenceScale) > 1e-9 {
		t.Errorf("scale after UpdateScale = %v, want %v", got, 2*projection.DefaultReferenceScale)
	}

	if err := c.UpdateTranslate("FR-GP", [2]float64{50, 60}); err != nil {
		t.Fatal(err)
	}
	gp, _ = c.Projection("FR-GP")
	if gp.Translate() != [2]float64{450, 360} {
		t.Errorf("translate after UpdateTranslate = %v, want [450 360]", gp.Translate())
	}

	if err := c.UpdateProjection("FR-GP", "equirectangular"); err != nil {
		t.Fatal(err)
	}
	gp, _ = c.Projection("FR-GP")
	if gp.ID() != "equirectangular" {
		t.Errorf("projection id after UpdateProjection = %q", gp.ID())
	}

	// Failed updates leave the entry untouched.
	if err := c.UpdateProjection("FR-GP", "bogus"); err == nil {
		t.Fatal("UpdateProjection with unknown id succeeded")
	}
	gp, _ = c.Projection("FR-GP")
	if gp.ID() != "equirectangular" {
		t.Error("failed update replaced the sub-projection")
	}

	if err := c.UpdateScale("NOPE", 1); err == nil {
		t.Error("update on unknown code succeeded")
	}
}
