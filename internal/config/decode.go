package config

import (
	"encoding/json"
	"fmt"

	"github.com/pspoerri/atlas-composer/internal/composite"
	"github.com/pspoerri/atlas-composer/internal/param"
	"github.com/pspoerri/atlas-composer/internal/projection"
)

// Codec converts between routers and documents. The registries are explicit
// collaborators supplied by the host at startup.
type Codec struct {
	Params      *param.Registry
	Projections *projection.Registry
}

// NewCodec returns a codec over the given registries.
func NewCodec(params *param.Registry, projections *projection.Registry) *Codec {
	return &Codec{Params: params, Projections: projections}
}

// DecodeResult aggregates everything found while decoding. OK is false when
// any hard error was recorded; warnings alone never block loading.
type DecodeResult struct {
	OK       bool
	Errors   []string
	Warnings []string

	Document       *Document
	Territories    []composite.Territory
	ReferenceScale float64 // 0 when the document carries none
	Canvas         *Canvas
}

func (r *DecodeResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *DecodeResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Decode validates a document and converts it to the territory list the
// composite router consumes. Structural problems (unsupported version,
// missing territories, missing required fields, unregistered projection ids,
// malformed bounds) are hard errors; parameter values outside their
// registry constraints are warnings and the document still loads. All
// problems across all territories are aggregated before returning, never
// fail-fast, so a host can show the complete list in one pass.
func (c *Codec) Decode(data []byte) DecodeResult {
	res := DecodeResult{}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		res.errorf("invalid JSON: %v", err)
		return res
	}
	res.Document = &doc

	if doc.Version != Version {
		res.errorf("unsupported configuration version %q (supported: %q)", doc.Version, Version)
		return res
	}
	if doc.Metadata.AtlasID == "" {
		res.errorf("metadata.atlasId is missing")
	}
	if len(doc.Territories) == 0 {
		res.errorf("document contains no territories")
	}
	if doc.ReferenceScale != nil {
		if *doc.ReferenceScale <= 0 {
			res.errorf("referenceScale must be positive, got %g", *doc.ReferenceScale)
		} else {
			res.ReferenceScale = *doc.ReferenceScale
		}
	}
	res.Canvas = doc.CanvasDimensions

	seen := make(map[string]bool)
	for i, td := range doc.Territories {
		terr, ok := c.decodeTerritory(i, td, &res)
		if !ok {
			continue
		}
		if seen[terr.Code] {
			res.errorf("territory %s: duplicate code", terr.Code)
			continue
		}
		seen[terr.Code] = true
		res.Territories = append(res.Territories, terr)
	}

	res.OK = len(res.Errors) == 0
	return res
}

func (c *Codec) decodeTerritory(i int, td TerritoryDoc, res *DecodeResult) (composite.Territory, bool) {
	label := td.Code
	if label == "" {
		label = fmt.Sprintf("#%d", i)
	}

	structuralErrors := len(res.Errors)

	if td.Code == "" {
		res.errorf("territory %s: code is missing", label)
	}
	if td.Projection.ID == "" {
		res.errorf("territory %s: projection.id is missing", label)
	} else if !c.Projections.Has(td.Projection.ID) {
		res.errorf("territory %s: projection id %q is not registered", label, td.Projection.ID)
	}

	family := projection.Family(td.Projection.Family)
	if !param.ValidFamily(td.Projection.Family) {
		res.errorf("territory %s: unknown projection family %q", label, td.Projection.Family)
	}

	bounds, err := decodeBounds(td.Bounds)
	if err != nil {
		res.errorf("territory %s: %v", label, err)
	}

	params, err := decodeParameters(td.Projection.Parameters)
	if err != nil {
		res.errorf("territory %s: %v", label, err)
	}

	layout, err := decodeLayout(td.Layout)
	if err != nil {
		res.errorf("territory %s: %v", label, err)
	}

	if len(res.Errors) > structuralErrors {
		return composite.Territory{}, false
	}

	// Registry-driven constraint validation: missing required parameters
	// block loading; out-of-constraint values are advisory tuning guidance
	// and only warn.
	bag := parameterBag(td)
	pfam := param.Family(td.Projection.Family)
	for _, key := range c.Params.MissingRequired(bag, pfam) {
		res.errorf("territory %s: required parameter %q is missing for family %s", label, key, pfam)
	}
	for _, vr := range c.Params.ValidateParameters(bag, pfam) {
		if !vr.IsValid {
			res.warnf("territory %s: %s", label, vr.Error)
		} else if vr.Warning != "" {
			res.warnf("territory %s: %s", label, vr.Warning)
		}
	}

	return composite.Territory{
		Code:         td.Code,
		Name:         td.Name,
		Bounds:       bounds,
		ProjectionID: td.Projection.ID,
		Family:       family,
		Parameters:   params,
		Layout:       layout,
	}, len(res.Errors) == structuralErrors
}

// parameterBag flattens the declared parameters for registry validation.
func parameterBag(td TerritoryDoc) map[string]any {
	bag := make(map[string]any)
	p := td.Projection.Parameters
	if p.Center != nil {
		bag["center"] = p.Center
	}
	if p.Rotate != nil {
		bag["rotate"] = p.Rotate
	}
	if p.Parallels != nil {
		bag["parallels"] = p.Parallels
	}
	if p.ScaleMultiplier != nil {
		bag["scaleMultiplier"] = *p.ScaleMultiplier
	}
	if p.ClipAngle != nil {
		bag["clipAngle"] = *p.ClipAngle
	}
	if p.Precision != nil {
		bag["precision"] = *p.Precision
	}
	if td.Layout.TranslateOffset != nil {
		bag["translateOffset"] = td.Layout.TranslateOffset
	}
	if td.Projection.ID != "" {
		bag["projectionId"] = td.Projection.ID
	}
	return bag
}

// decodeBounds requires the full [[minLon,minLat],[maxLon,maxLat]] shape
// with min < max on both axes. Unlike programmatic router construction,
// decoded documents treat missing or degenerate bounds as a hard error:
// without bounds a territory neither routes nor gates inversion, which for
// an interchange document can only be a mistake.
func decodeBounds(raw [][]float64) (*[2][2]float64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("bounds are missing")
	}
	if len(raw) != 2 || len(raw[0]) != 2 || len(raw[1]) != 2 {
		return nil, fmt.Errorf("bounds must be [[minLon,minLat],[maxLon,maxLat]]")
	}
	b := [2][2]float64{{raw[0][0], raw[0][1]}, {raw[1][0], raw[1][1]}}
	if b[0][0] >= b[1][0] || b[0][1] >= b[1][1] {
		return nil, fmt.Errorf("bounds are degenerate (min must be < max on each axis)")
	}
	return &b, nil
}

func decodeParameters(p ParametersDoc) (projection.Parameters, error) {
	var out projection.Parameters
	if p.Center != nil {
		v, err := tuple2("center", p.Center)
		if err != nil {
			return out, err
		}
		out.Center = &v
	}
	if p.Rotate != nil {
		v, err := tuple3("rotate", p.Rotate)
		if err != nil {
			return out, err
		}
		out.Rotate = &v
	}
	if p.Parallels != nil {
		v, err := tuple2("parallels", p.Parallels)
		if err != nil {
			return out, err
		}
		out.Parallels = &v
	}
	if p.ScaleMultiplier != nil {
		out.ScaleMultiplier = *p.ScaleMultiplier
	}
	if p.ClipAngle != nil {
		out.ClipAngle = p.ClipAngle
	}
	if p.Precision != nil {
		out.Precision = p.Precision
	}
	return out, nil
}

func decodeLayout(l LayoutDoc) (projection.Layout, error) {
	var out projection.Layout
	if l.TranslateOffset != nil {
		v, err := tuple2("layout.translateOffset", l.TranslateOffset)
		if err != nil {
			return out, err
		}
		out.TranslateOffset = v
	}
	if l.PixelClipExtent != nil {
		if len(l.PixelClipExtent) != 4 {
			return out, fmt.Errorf("layout.pixelClipExtent must have 4 elements, got %d", len(l.PixelClipExtent))
		}
		e := [4]float64{l.PixelClipExtent[0], l.PixelClipExtent[1], l.PixelClipExtent[2], l.PixelClipExtent[3]}
		out.PixelClipExtent = &e
	}
	return out, nil
}

func tuple2(name string, v []float64) ([2]float64, error) {
	if len(v) != 2 {
		return [2]float64{}, fmt.Errorf("%s must have 2 elements, got %d", name, len(v))
	}
	return [2]float64{v[0], v[1]}, nil
}

// tuple3 accepts 2 or 3 elements; the third angle defaults to 0.
func tuple3(name string, v []float64) ([3]float64, error) {
	switch len(v) {
	case 2:
		return [3]float64{v[0], v[1], 0}, nil
	case 3:
		return [3]float64{v[0], v[1], v[2]}, nil
	default:
		return [3]float64{}, fmt.Errorf("%s must have 2 or 3 elements, got %d", name, len(v))
	}
}

// BuildComposite constructs a router from a successful decode.
func (c *Codec) BuildComposite(res DecodeResult, width, height float64) (*composite.Composite, error) {
	if !res.OK {
		return nil, fmt.Errorf("cannot build from a failed decode (%d errors)", len(res.Errors))
	}
	if res.Canvas != nil {
		width, height = res.Canvas.Width, res.Canvas.Height
	}
	comp := composite.New(c.Projections, width, height, res.ReferenceScale)
	for _, t := range res.Territories {
		if err := comp.Add(t); err != nil {
			return nil, err
		}
	}
	return comp, nil
}
