// Package param holds the declarative registry of projection parameter
// definitions: which parameters exist, which projection families they apply
// to, their constraints, and their defaults.
//
// A Registry is an explicit context object, not a package-level singleton.
// Registration is expected to happen once at startup (single writer); after
// that the registry is safe for concurrent read-only use. Mutation after
// startup is the caller's responsibility to serialize.
package param

// Family identifies a projection family. The family governs which
// parameters are relevant and required.
type Family string

const (
	Cylindrical       Family = "CYLINDRICAL"
	Conic             Family = "CONIC"
	Azimuthal         Family = "AZIMUTHAL"
	Pseudocylindrical Family = "PSEUDOCYLINDRICAL"
)

// Families lists all known projection families.
var Families = []Family{Cylindrical, Conic, Azimuthal, Pseudocylindrical}

// ValidFamily reports whether s names a known projection family.
func ValidFamily(s string) bool {
	for _, f := range Families {
		if string(f) == s {
			return true
		}
	}
	return false
}

// Type is the semantic type of a parameter value.
type Type int

const (
	TypeNumber Type = iota
	TypeTuple2
	TypeTuple3 // third element optional: a length-2 value is accepted
	TypeBool
	TypeCustom
)

// TerritoryInfo carries the territory fields computed defaults may consult.
type TerritoryInfo struct {
	Code   string
	Bounds *[2][2]float64 // [[minLon,minLat],[maxLon,maxLat]], nil if unknown
}

// Constraint is the per-family constraint block of a definition.
// Min/Max are inclusive; for tuple types they are per-element (a length-1
// slice applies the same bound to every element).
type Constraint struct {
	Relevant bool
	Required bool
	Min      []float64
	Max      []float64
	Step     float64
	Default  any
}

// Constraints is the resolved constraint view returned by
// ConstraintsForFamily. Unknown keys or families without an entry resolve to
// the zero value (not relevant, not required).
type Constraints struct {
	Relevant bool
	Required bool
	Min      []float64
	Max      []float64
	Step     float64
}

// Definition describes one projection parameter.
type Definition struct {
	Key      string
	Type     Type
	Families map[Family]Constraint

	// Default is the global fallback used by Defaults when neither a
	// computed default nor a per-family default applies.
	Default any

	// ComputeDefault, when set, takes priority over static defaults.
	ComputeDefault func(t TerritoryInfo) any

	// Validate is consulted for TypeCustom parameters.
	Validate func(value any) Result

	// Export marks parameters that appear in exported configuration
	// documents; Mutable marks parameters that may change after the
	// sub-projection is built.
	Export  bool
	Mutable bool
}

// Registry maps parameter keys to their definitions.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register upserts a definition keyed by def.Key. Registering the same key
// twice replaces the earlier definition.
func (r *Registry) Register(def Definition) {
	r.defs[def.Key] = def
}

// Get returns the definition for key, if any.
func (r *Registry) Get(key string) (Definition, bool) {
	def, ok := r.defs[key]
	return def, ok
}

// Keys returns all registered parameter keys in unspecified order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.defs))
	for k := range r.defs {
		keys = append(keys, k)
	}
	return keys
}

// ConstraintsForFamily resolves the constraint block for key under family.
// Unknown keys and families without an entry resolve to the zero value
// (relevant=false, required=false); this never fails.
func (r *Registry) ConstraintsForFamily(key string, family Family) Constraints {
	def, ok := r.defs[key]
	if !ok {
		return Constraints{}
	}
	c, ok := def.Families[family]
	if !ok {
		return Constraints{}
	}
	return Constraints{
		Relevant: c.Relevant,
		Required: c.Required,
		Min:      c.Min,
		Max:      c.Max,
		Step:     c.Step,
	}
}

// Defaults returns a parameter map for family with every applicable key
// filled in. Priority per key: computed default over the territory, then the
// per-family static default, then the global default. Keys with none are
// omitted.
func (r *Registry) Defaults(t TerritoryInfo, family Family) map[string]any {
	out := make(map[string]any)
	for key, def := range r.defs {
		c, ok := def.Families[family]
		if !ok || !c.Relevant {
			continue
		}
		if def.ComputeDefault != nil {
			if v := def.ComputeDefault(t); v != nil {
				out[key] = v
				continue
			}
		}
		if c.Default != nil {
			out[key] = c.Default
			continue
		}
		if def.Default != nil {
			out[key] = def.Default
		}
	}
	return out
}

// CanonicalKeys is the parameter set every complete registry must define.
var CanonicalKeys = []string{
	"center", "rotate", "parallels", "translateOffset",
	"clipAngle", "precision", "scaleMultiplier", "projectionId",
}

// ValidateCompleteness checks that every canonical parameter key has a
// registry entry. Intended as a startup self-check.
func (r *Registry) ValidateCompleteness() []string {
	var errs []string
	for _, key := range CanonicalKeys {
		if _, ok := r.defs[key]; !ok {
			errs = append(errs, "missing parameter definition: "+key)
		}
	}
	return errs
}
