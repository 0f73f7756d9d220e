// Package composite presents N independently-projected territories as one
// projection-like object. Forward projection routes each point to the first
// territory whose geographic bounds contain it; streaming broadcasts
// geometry to every sub-projection and relies on each one's clip extent to
// discard what does not belong; inversion tries each sub-projection and
// gates the candidate result on the territory's declared bounds.
package composite

import (
	"fmt"

	"github.com/pspoerri/atlas-composer/internal/projection"
)

// InvertTolerance absorbs floating-point and clip-boundary noise when
// gating an inverse result against a territory's bounds, in degrees.
const InvertTolerance = 0.01

// Territory is one geographic unit to be independently projected.
type Territory struct {
	Code string
	Name string

	// Bounds is [[minLon,minLat],[maxLon,maxLat]]. nil means the territory
	// carries no bounds: it never matches forward routing, and its inverse
	// results are accepted without a gate (see Composite.Invert).
	Bounds *[2][2]float64

	ProjectionID string
	Family       projection.Family
	Parameters   projection.Parameters
	Layout       projection.Layout
}

type entry struct {
	territory Territory
	proj      *projection.Projection

	// bounds is the validated routing box; nil when the territory's bounds
	// are absent or degenerate, which disables forward routing and the
	// inversion gate for this entry without affecting the others.
	bounds *[2][2]float64
}

// Composite is the router. Effectively immutable after construction except
// through the Update* operations, which replace one sub-projection
// wholesale; callers must serialize those against in-flight Forward/Stream/
// Invert calls on the same instance.
type Composite struct {
	registry       *projection.Registry
	width, height  float64
	referenceScale float64

	entries []*entry
	byCode  map[string]int
}

// New returns an empty router over the given canvas. A referenceScale of 0
// selects projection.DefaultReferenceScale.
func New(reg *projection.Registry, width, height, referenceScale float64) *Composite {
	if referenceScale == 0 {
		referenceScale = projection.DefaultReferenceScale
	}
	return &Composite{
		registry:       reg,
		width:          width,
		height:         height,
		referenceScale: referenceScale,
		byCode:         make(map[string]int),
	}
}

// Add builds the territory's sub-projection and appends it to the router.
// Registration order is the routing order: when bounds overlap, the first
// registered territory wins. Duplicate codes are rejected; overlapping
// bounds are a caller configuration error the router does not resolve.
func (c *Composite) Add(t Territory) error {
	if t.Code == "" {
		return fmt.Errorf("territory without code")
	}
	if _, ok := c.byCode[t.Code]; ok {
		return fmt.Errorf("duplicate territory code %q", t.Code)
	}

	p, err := c.build(t)
	if err != nil {
		return fmt.Errorf("territory %s: %w", t.Code, err)
	}

	c.byCode[t.Code] = len(c.entries)
	c.entries = append(c.entries, &entry{
		territory: t,
		proj:      p,
		bounds:    validBounds(t.Bounds),
	})
	return nil
}

func (c *Composite) build(t Territory) (*projection.Projection, error) {
	return projection.Build(c.registry, projection.BuildSpec{
		ProjectionID:   t.ProjectionID,
		Parameters:     t.Parameters,
		Layout:         t.Layout,
		CanvasWidth:    c.width,
		CanvasHeight:   c.height,
		ReferenceScale: c.referenceScale,
	})
}

// validBounds returns bounds only when they are usable for routing:
// non-degenerate (min < max on each axis). Malformed bounds degrade this
// territory to unroutable rather than breaking the composite.
func validBounds(b *[2][2]float64) *[2][2]float64 {
	if b == nil {
		return nil
	}
	if b[0][0] >= b[1][0] || b[0][1] >= b[1][1] {
		return nil
	}
	bb := *b
	return &bb
}

func contains(b *[2][2]float64, lon, lat, tol float64) bool {
	return lon >= b[0][0]-tol && lon <= b[1][0]+tol &&
		lat >= b[0][1]-tol && lat <= b[1][1]+tol
}

// Forward projects a geographic point through the first territory whose
// bounds contain it (inclusive on all edges). A miss is not an error: the
// point is simply undrawable and ok is false.
func (c *Composite) Forward(lon, lat float64) (x, y float64, ok bool) {
	for _, e := range c.entries {
		if e.bounds == nil {
			continue
		}
		if contains(e.bounds, lon, lat, 0) {
			return e.proj.Forward(lon, lat)
		}
	}
	return 0, 0, false
}

// Invert maps a screen point back to geographic coordinates. Each
// sub-projection's inverse is tried in registration order and a candidate is
// accepted only if it falls inside that territory's bounds (within
// InvertTolerance); each sub-projection is mathematically defined over the
// whole globe, so without the gate a point near a clip boundary could invert
// against the wrong territory.
//
// Territories without usable bounds keep the legacy permissive behavior:
// their first successful inverse is accepted unconditionally. Documents
// decoded by the config codec always carry bounds and never reach this path.
func (c *Composite) Invert(x, y float64) (lon, lat float64, ok bool) {
	for _, e := range c.entries {
		lon, lat, ok := e.proj.Invert(x, y)
		if !ok {
			continue
		}
		if e.bounds == nil {
			return lon, lat, true
		}
		if contains(e.bounds, lon, lat, InvertTolerance) {
			return lon, lat, true
		}
	}
	return 0, 0, false
}

// Scale returns the first sub-projection's scale, or 0 for an empty router.
func (c *Composite) Scale() float64 {
	if len(c.entries) == 0 {
		return 0
	}
	return c.entries[0].proj.Scale()
}

// SetScale is a fluent no-op: per-territory scales are independently
// meaningful and a single aggregate setter would be ambiguous. Use
// UpdateScale to retune one territory.
func (c *Composite) SetScale(float64) *Composite { return c }

// Translate returns the first sub-projection's translate, or zero.
func (c *Composite) Translate() [2]float64 {
	if len(c.entries) == 0 {
		return [2]float64{}
	}
	return c.entries[0].proj.Translate()
}

// SetTranslate is a fluent no-op, as SetScale.
func (c *Composite) SetTranslate([2]float64) *Composite { return c }

// Width returns the canvas width in pixels.
func (c *Composite) Width() float64 { return c.width }

// Height returns the canvas height in pixels.
func (c *Composite) Height() float64 { return c.height }

// ReferenceScale returns the composition's reference scale.
func (c *Composite) ReferenceScale() float64 { return c.referenceScale }

// Territories returns the territories in registration order.
func (c *Composite) Territories() []Territory {
	out := make([]Territory, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.territory
	}
	return out
}

// Projection returns the live sub-projection for a territory code.
func (c *Composite) Projection(code string) (*projection.Projection, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return nil, false
	}
	return c.entries[i].proj, true
}

// UpdateProjection swaps one territory onto a different projection id,
// rebuilding its sub-projection in place.
func (c *Composite) UpdateProjection(code, projectionID string) error {
	return c.update(code, func(t *Territory) { t.ProjectionID = projectionID })
}

// UpdateTranslate moves one territory's screen placement, rebuilding its
// sub-projection in place.
func (c *Composite) UpdateTranslate(code string, offset [2]float64) error {
	return c.update(code, func(t *Territory) { t.Layout.TranslateOffset = offset })
}

// UpdateScale retunes one territory's scale multiplier, rebuilding its
// sub-projection in place.
func (c *Composite) UpdateScale(code string, multiplier float64) error {
	return c.update(code, func(t *Territory) { t.Parameters.ScaleMultiplier = multiplier })
}

func (c *Composite) update(code string, mutate func(*Territory)) error {
	i, ok := c.byCode[code]
	if !ok {
		return fmt.Errorf("unknown territory code %q", code)
	}
	t := c.entries[i].territory
	mutate(&t)
	p, err := c.build(t)
	if err != nil {
		return fmt.Errorf("territory %s: %w", code, err)
	}
	c.entries[i].territory = t
	c.entries[i].proj = p
	return nil
}
