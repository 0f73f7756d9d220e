package param

import "fmt"

// Result is the outcome of validating one parameter value. Validation never
// panics or returns Go errors across this boundary; callers aggregate
// results before deciding to reject input.
type Result struct {
	Key     string
	IsValid bool
	Error   string
	Warning string
}

func valid(key string) Result        { return Result{Key: key, IsValid: true} }
func invalid(key, msg string) Result { return Result{Key: key, IsValid: false, Error: msg} }

// Validate checks a single value against the definition for key under the
// given family. An irrelevant parameter still validates but carries a
// warning; it never hard-fails. Unknown keys are invalid (nothing to
// validate against).
func (r *Registry) Validate(key string, value any, family Family) Result {
	def, ok := r.defs[key]
	if !ok {
		return invalid(key, fmt.Sprintf("unknown parameter %q", key))
	}

	c := r.ConstraintsForFamily(key, family)

	res := r.validateTyped(def, value, c)
	if res.IsValid && !c.Relevant {
		if res.Warning == "" {
			res.Warning = fmt.Sprintf("%s is not relevant for family %s", key, family)
		}
	}
	return res
}

// ValidateParameters validates every supplied key for the family. Keys whose
// constraint resolves to relevant=false are silently skipped: no error, no
// warning. This deliberately differs from Validate, which surfaces a
// relevance warning for the same input; callers filtering a full parameter
// bag for one family depend on the skip to avoid noise.
func (r *Registry) ValidateParameters(params map[string]any, family Family) []Result {
	var results []Result
	for key, value := range params {
		if !r.ConstraintsForFamily(key, family).Relevant {
			continue
		}
		results = append(results, r.Validate(key, value, family))
	}
	return results
}

func (r *Registry) validateTyped(def Definition, value any, c Constraints) Result {
	switch def.Type {
	case TypeNumber:
		n, ok := toFloat(value)
		if !ok {
			return invalid(def.Key, fmt.Sprintf("%s must be a number", def.Key))
		}
		return checkBound(def.Key, n, 0, c)
	case TypeTuple2:
		return r.validateTuple(def, value, 2, 2, c)
	case TypeTuple3:
		// The third angle is optional; a length-2 tuple is accepted.
		return r.validateTuple(def, value, 2, 3, c)
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return invalid(def.Key, fmt.Sprintf("%s must be a boolean", def.Key))
		}
		return valid(def.Key)
	case TypeCustom:
		if def.Validate == nil {
			return valid(def.Key)
		}
		res := def.Validate(value)
		res.Key = def.Key
		return res
	default:
		return invalid(def.Key, fmt.Sprintf("%s has an unknown type", def.Key))
	}
}

func (r *Registry) validateTuple(def Definition, value any, minLen, maxLen int, c Constraints) Result {
	elems, ok := toFloatSlice(value)
	if !ok {
		return invalid(def.Key, fmt.Sprintf("%s must be an array of numbers", def.Key))
	}
	if len(elems) < minLen || len(elems) > maxLen {
		if minLen == maxLen {
			return invalid(def.Key, fmt.Sprintf("%s must have %d elements, got %d", def.Key, minLen, len(elems)))
		}
		return invalid(def.Key, fmt.Sprintf("%s must have %d or %d elements, got %d", def.Key, minLen, maxLen, len(elems)))
	}
	for i, n := range elems {
		if res := checkBound(def.Key, n, i, c); !res.IsValid {
			return res
		}
	}
	return valid(def.Key)
}

// checkBound applies the inclusive min/max for element i. Length-1 bound
// slices apply to every element.
func checkBound(key string, n float64, i int, c Constraints) Result {
	if lo, ok := boundAt(c.Min, i); ok && n < lo {
		return invalid(key, fmt.Sprintf("%s[%d] = %g is below minimum %g", key, i, n, lo))
	}
	if hi, ok := boundAt(c.Max, i); ok && n > hi {
		return invalid(key, fmt.Sprintf("%s[%d] = %g is above maximum %g", key, i, n, hi))
	}
	return valid(key)
}

func boundAt(bounds []float64, i int) (float64, bool) {
	switch {
	case len(bounds) == 0:
		return 0, false
	case len(bounds) == 1:
		return bounds[0], true
	case i < len(bounds):
		return bounds[i], true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toFloatSlice(v any) ([]float64, bool) {
	switch s := v.(type) {
	case []float64:
		return s, true
	case [2]float64:
		return s[:], true
	case [3]float64:
		return s[:], true
	case []any:
		out := make([]float64, len(s))
		for i, e := range s {
			n, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}
