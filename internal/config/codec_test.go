package config

import (
	"math"
	"strings"
	"testing"

	"github.com/pspoerri/atlas-composer/internal/param"
	"github.com/pspoerri/atlas-composer/internal/projection"
)

const franceDoc = `{
  "version": "1.0",
  "metadata": {
    "atlasId": "france",
    "atlasName": "France",
    "exportDate": "2026-01-15T12:00:00Z",
    "createdWith": "atlas-composer"
  },
  "referenceScale": 2700,
  "canvasDimensions": {"width": 800, "height": 600},
  "territories": [
    {
      "code": "FR-MET",
      "name": "France métropolitaine",
      "projection": {
        "id": "conic-conformal",
        "family": "CONIC",
        "parameters": {"rotate": [-3, -46.2, 0], "parallels": [0, 60]}
      },
      "layout": {"translateOffset": [0, 0], "pixelClipExtent": null},
      "bounds": [[-5.5, 41.2], [9.9, 51.3]]
    },
    {
      "code": "FR-GP",
      "name": "Guadeloupe",
      "projection": {
        "id": "mercator",
        "family": "CYLINDRICAL",
        "parameters": {"center": [-61.46, 16.14], "scaleMultiplier": 1.4}
      },
      "layout": {"translateOffset": [-300, 100], "pixelClipExtent": [-40, -40, 40, 40]},
      "bounds": [[-61.9, 15.8], [-61.0, 16.6]]
    }
  ]
}`

func newTestCodec() *Codec {
	return NewCodec(param.NewDefaultRegistry(), projection.NewDefaultRegistry())
}

func TestDecodeValidDocument(t *testing.T) {
	c := newTestCodec()
	res := c.Decode([]byte(franceDoc))
	if !res.OK {
		t.Fatalf("decode failed: %v", res.Errors)
	}
	if len(res.Territories) != 2 {
		t.Fatalf("got %d territories, want 2", len(res.Territories))
	}
	if res.ReferenceScale != 2700 {
		t.Errorf("ReferenceScale = %v, want 2700", res.ReferenceScale)
	}

	met := res.Territories[0]
	if met.Code != "FR-MET" || met.ProjectionID != "conic-conformal" {
		t.Errorf("unexpected first territory: %+v", met)
	}
	if met.Parameters.Parallels == nil || *met.Parameters.Parallels != [2]float64{0, 60} {
		t.Errorf("parallels not decoded: %v", met.Parameters.Parallels)
	}
	if met.Parameters.Rotate == nil || *met.Parameters.Rotate != [3]float64{-3, -46.2, 0} {
		t.Errorf("rotate not decoded: %v", met.Parameters.Rotate)
	}
	if met.Bounds == nil {
		t.Fatal("bounds not decoded")
	}

	gp := res.Territories[1]
	if gp.Parameters.ScaleMultiplier != 1.4 {
		t.Errorf("scaleMultiplier = %v, want 1.4", gp.Parameters.ScaleMultiplier)
	}
	if gp.Layout.PixelClipExtent == nil || *gp.Layout.PixelClipExtent != [4]float64{-40, -40, 40, 40} {
		t.Errorf("pixelClipExtent not decoded: %v", gp.Layout.PixelClipExtent)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	c := newTestCodec()
	doc := strings.Replace(franceDoc, `"version": "1.0"`, `"version": "2.0"`, 1)
	res := c.Decode([]byte(doc))
	if res.OK {
		t.Fatal("unknown version accepted")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "2.0") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestDecodeStructuralErrors(t *testing.T) {
	tests := []struct {
		name, old, new, wantErr string
	}{
		{"unregistered projection id", `"id": "mercator"`, `"id": "utm"`, "not registered"},
		{"unknown family", `"family": "CYLINDRICAL"`, `"family": "HYPERBOLIC"`, "family"},
		{"degenerate bounds", `"bounds": [[-61.9, 15.8], [-61.0, 16.6]]`, `"bounds": [[-61.0, 15.8], [-61.9, 16.6]]`, "degenerate"},
		{"missing bounds", `"bounds": [[-61.9, 15.8], [-61.0, 16.6]]`, `"bounds": []`, "bounds are missing"},
		{"missing code", `"code": "FR-GP"`, `"code": ""`, "code is missing"},
	}
	for _, tt := range tests {
		c := newTestCodec()
		doc := strings.Replace(franceDoc, tt.old, tt.new, 1)
		if doc == franceDoc {
			t.Fatalf("%s: replacement %q not found", tt.name, tt.old)
		}
		res := c.Decode([]byte(doc))
		if res.OK {
			t.Errorf("%s: decode succeeded", tt.name)
			continue
		}
		found := false
		for _, e := range res.Errors {
			if strings.Contains(e, tt.wantErr) {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: errors %v do not mention %q", tt.name, res.Errors, tt.wantErr)
		}
		// The healthy territory still decodes: errors are aggregated, not
		// fail-fast.
		if len(res.Territories) != 1 {
			t.Errorf("%s: got %d decoded territories, want the 1 healthy one", tt.name, len(res.Territories))
		}
	}
}

func TestDecodeMissingRequiredParameterIsHard(t *testing.T) {
	c := newTestCodec()
	doc := strings.Replace(franceDoc, `"parameters": {"rotate": [-3, -46.2, 0], "parallels": [0, 60]}`,
		`"parameters": {"rotate": [-3, -46.2, 0]}`, 1)
	res := c.Decode([]byte(doc))
	if res.OK {
		t.Fatal("document missing required parallels loaded")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "parallels") && strings.Contains(e, "required") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want required-parallels error", res.Errors)
	}
}

func TestDecodeOutOfConstraintIsSoft(t *testing.T) {
	c := newTestCodec()
	doc := strings.Replace(franceDoc, `"scaleMultiplier": 1.4`, `"scaleMultiplier": 50`, 1)
	res := c.Decode([]byte(doc))
	if !res.OK {
		t.Fatalf("out-of-constraint value blocked loading: %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "scaleMultiplier") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want scaleMultiplier warning", res.Warnings)
	}
	// The out-of-range value still takes effect.
	if res.Territories[1].Parameters.ScaleMultiplier != 50 {
		t.Error("soft-failed value was dropped")
	}
}

func TestDecodeAggregatesAcrossTerritories(t *testing.T) {
	c := newTestCodec()
	doc := strings.Replace(franceDoc, `"id": "conic-conformal"`, `"id": "nope1"`, 1)
	doc = strings.Replace(doc, `"id": "mercator"`, `"id": "nope2"`, 1)
	res := c.Decode([]byte(doc))
	if res.OK {
		t.Fatal("decode succeeded")
	}
	if len(res.Errors) < 2 {
		t.Errorf("errors = %v, want one per broken territory", res.Errors)
	}
}

// Spec scenario: decode, route Paris through FR-MET, a Guadeloupe point
// through FR-GP, and miss cleanly on nonsense input in both directions.
func TestEndToEndScenario(t *testing.T) {
	c := newTestCodec()
	res := c.Decode([]byte(franceDoc))
	if !res.OK {
		t.Fatalf("decode failed: %v", res.Errors)
	}
	comp, err := c.BuildComposite(res, 800, 600)
	if err != nil {
		t.Fatal(err)
	}

	x, y, ok := comp.Forward(2.35, 48.85)
	if !ok || math.IsNaN(x) || math.IsNaN(y) {
		t.Fatalf("Paris did not project: (%v, %v, %v)", x, y, ok)
	}
	met, _ := comp.Projection("FR-MET")
	if wx, wy, _ := met.Forward(2.35, 48.85); x != wx || y != wy {
		t.Error("Paris did not route through FR-MET")
	}

	x, y, ok = comp.Forward(-61.46, 16.14)
	if !ok {
		t.Fatal("Guadeloupe center did not project")
	}
	gp, _ := comp.Projection("FR-GP")
	if wx, wy, _ := gp.Forward(-61.46, 16.14); x != wx || y != wy {
		t.Error("Guadeloupe point did not route through FR-GP")
	}

	if _, _, ok := comp.Forward(10000, 10000); ok {
		t.Error("nonsense coordinates projected")
	}
	if _, _, ok := comp.Invert(10000, 10000); ok {
		t.Error("off-canvas screen point inverted")
	}
}

// Encoding a router and decoding the result must reconstruct
// sub-projections whose forward output matches the original within the
// 6-decimal rounding tolerance.
func TestRoundTripProperty(t *testing.T) {
	c := newTestCodec()
	res := c.Decode([]byte(franceDoc))
	if !res.OK {
		t.Fatalf("decode failed: %v", res.Errors)
	}
	original, err := c.BuildComposite(res, 800, 600)
	if err != nil {
		t.Fatal(err)
	}

	data, err := c.EncodeJSON(original, Metadata{AtlasID: "france", AtlasName: "France"})
	if err != nil {
		t.Fatal(err)
	}

	res2 := c.Decode(data)
	if !res2.OK {
		t.Fatalf("re-decode failed: %v\ndocument:\n%s", res2.Errors, data)
	}
	rebuilt, err := c.BuildComposite(res2, 800, 600)
	if err != nil {
		t.Fatal(err)
	}

	// Sample points inside each territory's bounds.
	for _, terr := range res.Territories {
		b := *terr.Bounds
		for _, f := range []float64{0.25, 0.5, 0.75} {
			lon := b[0][0] + f*(b[1][0]-b[0][0])
			lat := b[0][1] + f*(b[1][1]-b[0][1])

			x1, y1, ok1 := original.Forward(lon, lat)
			x2, y2, ok2 := rebuilt.Forward(lon, lat)
			if !ok1 || !ok2 {
				t.Fatalf("forward failed for (%v, %v): %v %v", lon, lat, ok1, ok2)
			}
			if math.Abs(x1-x2) > 1e-4 || math.Abs(y1-y2) > 1e-4 {
				t.Errorf("round-trip drift at (%v, %v): (%v, %v) vs (%v, %v)", lon, lat, x1, y1, x2, y2)
			}
		}
	}
}

func TestEncodeCapturesLiveEdits(t *testing.T) {
	c := newTestCodec()
	res := c.Decode([]byte(franceDoc))
	comp, err := c.BuildComposite(res, 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	if err := comp.UpdateScale("FR-GP", 2.0); err != nil {
		t.Fatal(err)
	}

	doc, err := c.Encode(comp, Metadata{AtlasID: "france"})
	if err != nil {
		t.Fatal(err)
	}
	var gp *TerritoryDoc
	for i := range doc.Territories {
		if doc.Territories[i].Code == "FR-GP" {
			gp = &doc.Territories[i]
		}
	}
	if gp == nil {
		t.Fatal("FR-GP missing from export")
	}
	if gp.Projection.Parameters.ScaleMultiplier == nil || *gp.Projection.Parameters.ScaleMultiplier != 2.0 {
		t.Errorf("exported scaleMultiplier = %v, want 2 (live value)", gp.Projection.Parameters.ScaleMultiplier)
	}
}

func TestNormalizeProjectionID(t *testing.T) {
	reg := projection.NewDefaultRegistry()
	tests := []struct{ in, want string }{
		{"geoConicConformal", "conic-conformal"},
		{"geoMercator", "mercator"},
		{"geoAzimuthalEqualArea", "azimuthal-equal-area"},
		{"geoNaturalEarth1", "natural-earth1"}, // no exact match: kebab guess
		{"CustomThing", "custom-thing"},
	}
	for _, tt := range tests {
		if got := NormalizeProjectionID(tt.in, reg); got != tt.want {
			t.Errorf("NormalizeProjectionID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
