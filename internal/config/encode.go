package config

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/pspoerri/atlas-composer/internal/composite"
)

// roundPlaces is the fixed decimal precision applied to every exported
// numeric value, eliminating floating-point noise before serialization.
const roundPlaces = 6

// Encode snapshots a live router into a version "1.0" document. Parameters
// are read back from each sub-projection (not from the declarative input),
// so interactive edits made through the update operations are captured.
func (c *Codec) Encode(comp *composite.Composite, meta Metadata) (*Document, error) {
	if meta.CreatedWith == "" {
		meta.CreatedWith = CreatedWith
	}
	if meta.ExportDate == "" {
		meta.ExportDate = time.Now().UTC().Format(time.RFC3339)
	}

	refScale := comp.ReferenceScale()
	doc := &Document{
		Version:          Version,
		Metadata:         meta,
		ReferenceScale:   ptr(round6(refScale)),
		CanvasDimensions: &Canvas{Width: comp.Width(), Height: comp.Height()},
	}

	for _, t := range comp.Territories() {
		p, ok := comp.Projection(t.Code)
		if !ok {
			return nil, fmt.Errorf("territory %s has no live sub-projection", t.Code)
		}

		params := ParametersDoc{
			ScaleMultiplier: ptr(round6(p.Scale() / refScale)),
			Precision:       ptr(round6(p.Precision())),
		}
		if center := p.Center(); center != [2]float64{} || t.Parameters.Center != nil {
			params.Center = roundSlice(center[:])
		}
		if rotate := p.Rotate(); rotate != [3]float64{} || t.Parameters.Rotate != nil {
			params.Rotate = roundSlice(rotate[:])
		}
		if p.SupportsParallels() {
			par := p.Parallels()
			params.Parallels = roundSlice(par[:])
		}
		if p.SupportsClipAngle() && p.ClipAngle() > 0 {
			params.ClipAngle = ptr(round6(p.ClipAngle()))
		}

		// Layout reads back from the live translate so interactive moves
		// survive export.
		translate := p.Translate()
		offset := []float64{
			round6(translate[0] - comp.Width()/2),
			round6(translate[1] - comp.Height()/2),
		}
		layout := LayoutDoc{TranslateOffset: offset}
		if t.Layout.PixelClipExtent != nil {
			// Only explicitly-configured clip rectangles are exported; the
			// synthesized default rectangle is derived state.
			e := *t.Layout.PixelClipExtent
			layout.PixelClipExtent = roundSlice(e[:])
		}

		var bounds [][]float64
		if t.Bounds != nil {
			b := *t.Bounds
			bounds = [][]float64{
				{round6(b[0][0]), round6(b[0][1])},
				{round6(b[1][0]), round6(b[1][1])},
			}
		}

		doc.Territories = append(doc.Territories, TerritoryDoc{
			Code: t.Code,
			Name: t.Name,
			Projection: ProjectionDoc{
				ID:         c.resolveProjectionID(p.ID()),
				Family:     string(p.Family()),
				Parameters: params,
			},
			Layout: layout,
			Bounds: bounds,
		})
	}

	return doc, nil
}

// EncodeJSON is Encode plus serialization.
func (c *Codec) EncodeJSON(comp *composite.Composite, meta Metadata) ([]byte, error) {
	doc, err := c.Encode(comp, meta)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// resolveProjectionID maps a live instance's identifier back to a canonical
// registry id. Registered ids map exactly; anything else (custom or
// anonymous factories) degrades to a kebab-cased guess rather than failing.
func (c *Codec) resolveProjectionID(id string) string {
	if c.Projections.Has(id) {
		return id
	}
	return NormalizeProjectionID(id, c.Projections)
}

func round6(v float64) float64 {
	shift := math.Pow(10, roundPlaces)
	return math.Round(v*shift) / shift
}

func roundSlice(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, n := range v {
		out[i] = round6(n)
	}
	return out
}

func ptr(v float64) *float64 { return &v }
