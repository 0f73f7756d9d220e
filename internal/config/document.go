// Package config converts between a live composite router and the versioned
// JSON configuration document that is the sole persistence and interchange
// format. Decoding validates structure hard and parameter constraints soft,
// aggregating every problem across every territory before returning.
package config

// Version is the single supported document version. Unknown or future
// versions are rejected outright: producer and consumer evolve in lockstep,
// so there is no forward-compatible best-effort parsing.
const Version = "1.0"

// CreatedWith identifies this producer in exported metadata.
const CreatedWith = "atlas-composer"

// Document is the exported configuration document, version "1.0".
type Document struct {
	Version          string         `json:"version"`
	Metadata         Metadata       `json:"metadata"`
	ReferenceScale   *float64       `json:"referenceScale,omitempty"`
	CanvasDimensions *Canvas        `json:"canvasDimensions,omitempty"`
	Territories      []TerritoryDoc `json:"territories"`
}

// Metadata describes the document's provenance.
type Metadata struct {
	AtlasID     string `json:"atlasId"`
	AtlasName   string `json:"atlasName"`
	ExportDate  string `json:"exportDate"`
	CreatedWith string `json:"createdWith"`
	Notes       string `json:"notes,omitempty"`
}

// Canvas is the pixel size of the composition canvas.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TerritoryDoc is one territory in serializable form: plain numbers, no
// opaque instances.
type TerritoryDoc struct {
	Code       string        `json:"code"`
	Name       string        `json:"name"`
	Projection ProjectionDoc `json:"projection"`
	Layout     LayoutDoc     `json:"layout"`
	Bounds     [][]float64   `json:"bounds"`
}

// ProjectionDoc carries the projection id, family, and parameter set.
type ProjectionDoc struct {
	ID         string        `json:"id"`
	Family     string        `json:"family"`
	Parameters ParametersDoc `json:"parameters"`
}

// ParametersDoc is the family-appropriate parameter subset. Absent fields
// are omitted rather than zeroed.
type ParametersDoc struct {
	Center          []float64 `json:"center,omitempty"`
	Rotate          []float64 `json:"rotate,omitempty"`
	Parallels       []float64 `json:"parallels,omitempty"`
	ScaleMultiplier *float64  `json:"scaleMultiplier,omitempty"`
	ClipAngle       *float64  `json:"clipAngle,omitempty"`
	Precision       *float64  `json:"precision,omitempty"`
}

// LayoutDoc is the screen-space placement block.
type LayoutDoc struct {
	TranslateOffset []float64 `json:"translateOffset"`
	PixelClipExtent []float64 `json:"pixelClipExtent"`
}
