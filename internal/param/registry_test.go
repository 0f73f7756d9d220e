package param

import "testing"

func TestValidateCompleteness(t *testing.T) {
	r := NewDefaultRegistry()
	if errs := r.ValidateCompleteness(); len(errs) != 0 {
		t.Errorf("default registry incomplete: %v", errs)
	}

	empty := NewRegistry()
	errs := empty.ValidateCompleteness()
	if len(errs) != len(CanonicalKeys) {
		t.Errorf("empty registry: got %d errors, want %d", len(errs), len(CanonicalKeys))
	}
}

func TestConstraintsForFamily(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		key          string
		family       Family
		wantRelevant bool
		wantRequired bool
	}{
		{"parallels", Conic, true, true},
		{"parallels", Cylindrical, false, false},
		{"clipAngle", Azimuthal, true, false},
		{"clipAngle", Conic, false, false},
		{"center", Cylindrical, true, false},
		{"projectionId", Pseudocylindrical, true, true},
		{"nonexistent", Conic, false, false},
		{"center", Family("BOGUS"), false, false},
	}
	for _, tt := range tests {
		c := r.ConstraintsForFamily(tt.key, tt.family)
		if c.Relevant != tt.wantRelevant || c.Required != tt.wantRequired {
			t.Errorf("ConstraintsForFamily(%q, %s) = {Relevant:%v Required:%v}, want {%v %v}",
				tt.key, tt.family, c.Relevant, c.Required, tt.wantRelevant, tt.wantRequired)
		}
	}
}

func TestValidateNumber(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name      string
		value     any
		wantValid bool
	}{
		{"in range", 1.5, true},
		{"int accepted", 2, true},
		{"at min", 0.1, true},
		{"at max", 10.0, true},
		{"below min", 0.01, false},
		{"above max", 11.0, false},
		{"wrong type", "big", false},
	}
	for _, tt := range tests {
		res := r.Validate("scaleMultiplier", tt.value, Cylindrical)
		if res.IsValid != tt.wantValid {
			t.Errorf("%s: Validate(scaleMultiplier, %v) valid=%v (err %q), want %v",
				tt.name, tt.value, res.IsValid, res.Error, tt.wantValid)
		}
	}
}

func TestValidateTuples(t *testing.T) {
	r := NewDefaultRegistry()

	// rotate is a tuple3 but accepts length 2 (optional gamma).
	if res := r.Validate("rotate", []float64{-3, -46.2}, Conic); !res.IsValid {
		t.Errorf("length-2 rotate rejected: %s", res.Error)
	}
	if res := r.Validate("rotate", []float64{-3, -46.2, 0}, Conic); !res.IsValid {
		t.Errorf("length-3 rotate rejected: %s", res.Error)
	}
	if res := r.Validate("rotate", []float64{-3}, Conic); res.IsValid {
		t.Error("length-1 rotate accepted")
	}
	if res := r.Validate("rotate", []float64{-3, -100, 0}, Conic); res.IsValid {
		t.Error("rotate with latitude angle beyond -90 accepted")
	}

	// center is a strict tuple2 with per-element bounds.
	if res := r.Validate("center", []float64{-61.46, 16.14}, Cylindrical); !res.IsValid {
		t.Errorf("valid center rejected: %s", res.Error)
	}
	if res := r.Validate("center", []float64{-181, 0}, Cylindrical); res.IsValid {
		t.Error("center longitude below -180 accepted")
	}
	if res := r.Validate("center", []float64{0, 0, 0}, Cylindrical); res.IsValid {
		t.Error("length-3 center accepted")
	}
	if res := r.Validate("center", []any{"a", "b"}, Cylindrical); res.IsValid {
		t.Error("non-numeric center accepted")
	}
}

// Irrelevant parameters warn through Validate but are silently skipped by
// ValidateParameters; both behaviors must hold at once.
func TestRelevanceAsymmetry(t *testing.T) {
	r := NewDefaultRegistry()

	res := r.Validate("clipAngle", 90.0, Cylindrical)
	if !res.IsValid {
		t.Fatalf("irrelevant clipAngle hard-failed: %s", res.Error)
	}
	if res.Warning == "" {
		t.Error("Validate(clipAngle, CYLINDRICAL) produced no relevance warning")
	}

	results := r.ValidateParameters(map[string]any{"clipAngle": 90.0}, Cylindrical)
	if len(results) != 0 {
		t.Errorf("ValidateParameters surfaced %d results for an irrelevant key, want 0: %v", len(results), results)
	}
}

func TestValidateParameters(t *testing.T) {
	r := NewDefaultRegistry()

	params := map[string]any{
		"rotate":          []float64{-3, -46.2, 0},
		"parallels":       []float64{0, 60},
		"scaleMultiplier": 50.0, // out of range
		"clipAngle":       90.0, // irrelevant for CONIC: skipped
		"unknownKey":      1.0,  // unknown: skipped
	}
	results := r.ValidateParameters(params, Conic)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %v", len(results), results)
	}
	invalid := 0
	for _, res := range results {
		if !res.IsValid {
			invalid++
			if res.Key != "scaleMultiplier" {
				t.Errorf("unexpected invalid key %q: %s", res.Key, res.Error)
			}
		}
	}
	if invalid != 1 {
		t.Errorf("got %d invalid results, want 1", invalid)
	}
}

func TestMissingRequired(t *testing.T) {
	r := NewDefaultRegistry()

	missing := r.MissingRequired(map[string]any{"projectionId": "conic-conformal"}, Conic)
	if len(missing) != 1 || missing[0] != "parallels" {
		t.Errorf("MissingRequired = %v, want [parallels]", missing)
	}

	missing = r.MissingRequired(map[string]any{
		"projectionId": "conic-conformal",
		"parallels":    []float64{0, 60},
	}, Conic)
	if len(missing) != 0 {
		t.Errorf("MissingRequired = %v, want none", missing)
	}
}

func TestDefaults(t *testing.T) {
	r := NewDefaultRegistry()

	bounds := [2][2]float64{{-5.5, 41.2}, {9.9, 51.3}}
	d := r.Defaults(TerritoryInfo{Code: "FR-MET", Bounds: &bounds}, Conic)

	center, ok := d["center"].([]float64)
	if !ok {
		t.Fatalf("center default missing or wrong type: %v", d["center"])
	}
	if center[0] != (bounds[0][0]+bounds[1][0])/2 || center[1] != (bounds[0][1]+bounds[1][1])/2 {
		t.Errorf("center default = %v, want bounds centroid", center)
	}

	if _, ok := d["parallels"]; !ok {
		t.Error("parallels default missing for CONIC")
	}
	if _, ok := d["clipAngle"]; ok {
		t.Error("clipAngle default present for CONIC")
	}

	// Without bounds the computed default is skipped and the global
	// fallback applies.
	d = r.Defaults(TerritoryInfo{Code: "X"}, Cylindrical)
	center, ok = d["center"].([]float64)
	if !ok || center[0] != 0 || center[1] != 0 {
		t.Errorf("center fallback default = %v, want [0 0]", d["center"])
	}
}

func TestRegisterIdempotentUpsert(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Key: "k", Type: TypeNumber, Families: allFamilies(Constraint{Relevant: true, Max: []float64{1}})})
	r.Register(Definition{Key: "k", Type: TypeNumber, Families: allFamilies(Constraint{Relevant: true, Max: []float64{5}})})

	if res := r.Validate("k", 3.0, Conic); !res.IsValid {
		t.Errorf("upserted definition not in effect: %s", res.Error)
	}
	if len(r.Keys()) != 1 {
		t.Errorf("got %d keys after upsert, want 1", len(r.Keys()))
	}
}
