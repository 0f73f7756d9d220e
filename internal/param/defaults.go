package param

// DefaultPrecision is the adaptive resampling threshold, in projected screen
// units, applied when a territory declares none (√0.5 px).
const DefaultPrecision = 0.70710678

// allFamilies builds a family map with the same constraint for every family.
func allFamilies(c Constraint) map[Family]Constraint {
	m := make(map[Family]Constraint, len(Families))
	for _, f := range Families {
		m[f] = c
	}
	return m
}

// NewDefaultRegistry returns a registry populated with the canonical
// parameter set. ValidateCompleteness on the result returns no errors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Definition{
		Key:      "center",
		Type:     TypeTuple2,
		Families: allFamilies(Constraint{Relevant: true, Min: []float64{-180, -90}, Max: []float64{180, 90}, Step: 0.1}),
		Default:  []float64{0, 0},
		// Territories with known bounds center on their own centroid.
		ComputeDefault: func(t TerritoryInfo) any {
			if t.Bounds == nil {
				return nil
			}
			b := *t.Bounds
			return []float64{(b[0][0] + b[1][0]) / 2, (b[0][1] + b[1][1]) / 2}
		},
		Export:  true,
		Mutable: true,
	})

	r.Register(Definition{
		Key:      "rotate",
		Type:     TypeTuple3,
		Families: allFamilies(Constraint{Relevant: true, Min: []float64{-180, -90, -180}, Max: []float64{180, 90, 180}, Step: 0.1}),
		Default:  []float64{0, 0, 0},
		Export:   true,
		Mutable:  true,
	})

	r.Register(Definition{
		Key:  "parallels",
		Type: TypeTuple2,
		Families: map[Family]Constraint{
			Conic: {Relevant: true, Required: true, Min: []float64{-90, -90}, Max: []float64{90, 90}, Step: 0.1, Default: []float64{30, 60}},
		},
		Export:  true,
		Mutable: true,
	})

	r.Register(Definition{
		Key:      "scaleMultiplier",
		Type:     TypeNumber,
		Families: allFamilies(Constraint{Relevant: true, Min: []float64{0.1}, Max: []float64{10}, Step: 0.05}),
		Default:  1.0,
		Export:   true,
		Mutable:  true,
	})

	r.Register(Definition{
		Key:  "clipAngle",
		Type: TypeNumber,
		Families: map[Family]Constraint{
			Azimuthal: {Relevant: true, Min: []float64{0}, Max: []float64{180}, Step: 1, Default: 90.0},
		},
		Export:  true,
		Mutable: true,
	})

	r.Register(Definition{
		Key:      "precision",
		Type:     TypeNumber,
		Families: allFamilies(Constraint{Relevant: true, Min: []float64{0}, Max: []float64{10}, Step: 0.01}),
		Default:  DefaultPrecision,
		Export:   true,
		Mutable:  true,
	})

	r.Register(Definition{
		Key:      "translateOffset",
		Type:     TypeTuple2,
		Families: allFamilies(Constraint{Relevant: true, Min: []float64{-10000, -10000}, Max: []float64{10000, 10000}, Step: 1}),
		Default:  []float64{0, 0},
		Export:   true,
		Mutable:  true,
	})

	r.Register(Definition{
		Key:      "projectionId",
		Type:     TypeCustom,
		Families: allFamilies(Constraint{Relevant: true, Required: true}),
		Validate: func(v any) Result {
			s, ok := v.(string)
			if !ok || s == "" {
				return Result{IsValid: false, Error: "projectionId must be a non-empty string"}
			}
			return Result{IsValid: true}
		},
		Export: true,
	})

	return r
}

// MissingRequired returns the keys that are required for family but absent
// from params.
func (r *Registry) MissingRequired(params map[string]any, family Family) []string {
	var missing []string
	for key := range r.defs {
		c := r.ConstraintsForFamily(key, family)
		if !c.Relevant || !c.Required {
			continue
		}
		if _, ok := params[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// RelevantKeys lists the parameter keys relevant for a family.
func (r *Registry) RelevantKeys(family Family) []string {
	var keys []string
	for key := range r.defs {
		if r.ConstraintsForFamily(key, family).Relevant {
			keys = append(keys, key)
		}
	}
	return keys
}
