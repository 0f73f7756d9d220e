package projection

import "fmt"

// DefaultReferenceScale is the global reference scale applied when a
// configuration carries none. Absolute per-territory scale is always
// referenceScale × scaleMultiplier, never set directly, so the whole
// composition can be retuned through one number.
const DefaultReferenceScale = 2700

// clipInset shrinks explicit clip rectangles by a fraction of a pixel so
// that adjacent territories' clip edges never exactly touch; coincident
// edges produce seam artifacts at certain zoom levels.
const clipInset = 0.1

// Parameters is the family-appropriate parameter subset for one territory.
// Nil pointer fields are absent and leave the instance default untouched.
type Parameters struct {
	Center          *[2]float64
	Rotate          *[3]float64
	Parallels       *[2]float64
	ScaleMultiplier float64 // 0 means 1
	ClipAngle       *float64
	Precision       *float64
}

// Layout is a territory's screen-space placement, independent of its
// geographic parameters.
type Layout struct {
	// TranslateOffset is the territory center in pixels relative to the
	// canvas center.
	TranslateOffset [2]float64
	// PixelClipExtent is [x0,y0,x1,y1] relative to the territory's own
	// screen center; nil requests the default padding rectangle.
	PixelClipExtent *[4]float64
}

// BuildSpec is the input to Build.
type BuildSpec struct {
	ProjectionID string
	Parameters   Parameters
	Layout       Layout
	CanvasWidth  float64
	CanvasHeight float64
	// ReferenceScale of 0 selects DefaultReferenceScale.
	ReferenceScale float64
}

// Build constructs and configures one projection instance for a territory.
//
// Parameters are applied per family: the switch below is exhaustive over the
// families a registry can produce, and each arm applies only the setters
// meaningful to that family. Parameters absent from the input are skipped
// silently; supplying a parameter the family lacks is equally silent (the
// registry layer is where relevance warnings live).
func Build(reg *Registry, spec BuildSpec) (*Projection, error) {
	p, err := reg.Resolve(spec.ProjectionID)
	if err != nil {
		return nil, err
	}

	params := spec.Parameters
	switch p.Family() {
	case Conic:
		applyCommon(p, params)
		if params.Parallels != nil {
			p.SetParallels(*params.Parallels)
		}
	case Azimuthal:
		applyCommon(p, params)
		if params.ClipAngle != nil {
			p.SetClipAngle(*params.ClipAngle)
		}
	case Cylindrical, Pseudocylindrical:
		applyCommon(p, params)
	default:
		return nil, fmt.Errorf("projection %q has unknown family %q", spec.ProjectionID, p.Family())
	}

	// Scale is derived, never passed directly.
	referenceScale := spec.ReferenceScale
	if referenceScale == 0 {
		referenceScale = DefaultReferenceScale
	}
	multiplier := params.ScaleMultiplier
	if multiplier == 0 {
		multiplier = 1
	}
	p.SetScale(referenceScale * multiplier)

	// Absolute translation must be resolved before the clip extent: pixel
	// clip rectangles are expressed relative to the territory's own screen
	// center.
	tx := spec.CanvasWidth/2 + spec.Layout.TranslateOffset[0]
	ty := spec.CanvasHeight/2 + spec.Layout.TranslateOffset[1]
	p.SetTranslate([2]float64{tx, ty})

	p.SetClipExtent(resolveClipExtent(spec.Layout.PixelClipExtent, tx, ty, p.Scale()))

	return p, nil
}

// resolveClipExtent translates a relative clip rectangle into absolute
// screen coordinates, or synthesizes the default padding rectangle. An
// instance without any clip extent would bleed into neighboring territories'
// screen space, so the fallback is unconditional.
func resolveClipExtent(relative *[4]float64, tx, ty, scale float64) *[4]float64 {
	if relative != nil {
		e := *relative
		return &[4]float64{
			tx + e[0] + clipInset,
			ty + e[1] + clipInset,
			tx + e[2] - clipInset,
			ty + e[3] - clipInset,
		}
	}
	pad := scale * 0.10
	return &[4]float64{tx - pad, ty - pad, tx + pad, ty + pad}
}

func applyCommon(p *Projection, params Parameters) {
	if params.Center != nil {
		p.SetCenter(*params.Center)
	}
	if params.Rotate != nil {
		p.SetRotate(*params.Rotate)
	}
	if params.Precision != nil {
		p.SetPrecision(*params.Precision)
	}
}
