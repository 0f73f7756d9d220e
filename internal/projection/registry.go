package projection

import (
	"fmt"
	"sort"
	"strings"
)

// Factory creates a fresh, unconfigured projection instance.
type Factory func() *Projection

// Registry maps projection ids to factories. An explicit context object:
// hosts construct one at startup, register any custom factories, and pass it
// by reference into the builder and codec. Registration is single-writer at
// startup; concurrent reads afterwards are safe without locking.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty factory registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for id.
func (r *Registry) Register(id string, f Factory) {
	r.factories[id] = f
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve constructs a fresh instance for id. Unknown ids are a hard error
// naming the id and listing what is registered; this is the most common
// integration mistake and the message is written for it.
func (r *Registry) Resolve(id string) (*Projection, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("unknown projection id %q (registered: %s)",
			id, strings.Join(r.IDs(), ", "))
	}
	return f(), nil
}

// NewDefaultRegistry returns a registry pre-populated with the built-in
// projections across all four families.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("mercator", NewMercator)
	r.Register("equirectangular", NewEquirectangular)
	r.Register("conic-conformal", NewConicConformal)
	r.Register("conic-equal-area", NewConicEqualArea)
	r.Register("albers", NewAlbers)
	r.Register("azimuthal-equal-area", NewAzimuthalEqualArea)
	r.Register("azimuthal-equidistant", NewAzimuthalEquidistant)
	r.Register("stereographic", NewStereographic)
	r.Register("sinusoidal", NewSinusoidal)
	r.Register("natural-earth", NewNaturalEarth)
	return r
}

// NewMercator returns a Mercator projection (CYLINDRICAL).
func NewMercator() *Projection {
	return newProjection("mercator", Cylindrical, mercatorRaw{})
}

// NewEquirectangular returns a plate carrée projection (CYLINDRICAL).
func NewEquirectangular() *Projection {
	return newProjection("equirectangular", Cylindrical, equirectangularRaw{})
}

func newConic(id string, make func(phi0, phi1 float64) rawProjection, parallels [2]float64) *Projection {
	p := newProjection(id, Conic, make(parallels[0]*radians, parallels[1]*radians))
	p.makeRaw = make
	p.parallels = parallels
	return p
}

// NewConicConformal returns a Lambert conformal conic projection (CONIC)
// with standard parallels 30°/60°.
func NewConicConformal() *Projection {
	return newConic("conic-conformal", newConicConformalRaw, [2]float64{30, 60})
}

// NewConicEqualArea returns an equal-area conic projection (CONIC) with
// standard parallels 30°/60°.
func NewConicEqualArea() *Projection {
	return newConic("conic-equal-area", newConicEqualAreaRaw, [2]float64{30, 60})
}

// NewAlbers returns the Albers equal-area conic preset (CONIC): standard
// parallels 29.5°/45.5°, rotated for the contiguous United States.
func NewAlbers() *Projection {
	p := newConic("albers", newConicEqualAreaRaw, [2]float64{29.5, 45.5})
	p.rotateDeg = [3]float64{96, 0, 0}
	p.recenter()
	return p
}

// NewAzimuthalEqualArea returns a Lambert azimuthal equal-area projection
// (AZIMUTHAL).
func NewAzimuthalEqualArea() *Projection {
	return newProjection("azimuthal-equal-area", Azimuthal, newAzimuthalEqualAreaRaw())
}

// NewAzimuthalEquidistant returns an azimuthal equidistant projection
// (AZIMUTHAL).
func NewAzimuthalEquidistant() *Projection {
	return newProjection("azimuthal-equidistant", Azimuthal, newAzimuthalEquidistantRaw())
}

// NewStereographic returns a stereographic projection (AZIMUTHAL).
func NewStereographic() *Projection {
	return newProjection("stereographic", Azimuthal, stereographicRaw{})
}

// NewSinusoidal returns a sinusoidal projection (PSEUDOCYLINDRICAL).
func NewSinusoidal() *Projection {
	return newProjection("sinusoidal", Pseudocylindrical, sinusoidalRaw{})
}

// NewNaturalEarth returns the Natural Earth projection (PSEUDOCYLINDRICAL).
func NewNaturalEarth() *Projection {
	return newProjection("natural-earth", Pseudocylindrical, naturalEarthRaw{})
}
