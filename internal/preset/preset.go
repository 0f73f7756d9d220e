// Package preset loads, validates, and persists composite configuration
// presets. Built-in defaults ship embedded; user presets live in a sqlite
// store. Loading runs the configuration codec and cross-checks territory
// codes against the atlas catalog before handing back a live router.
package preset

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pspoerri/atlas-composer/internal/atlas"
	"github.com/pspoerri/atlas-composer/internal/composite"
	"github.com/pspoerri/atlas-composer/internal/config"
)

//go:embed data/*.json
var builtinFS embed.FS

// Builtin returns the embedded preset document with the given name.
func Builtin(name string) ([]byte, bool) {
	data, err := builtinFS.ReadFile("data/" + name + ".json")
	if err != nil {
		return nil, false
	}
	return data, true
}

// BuiltinNames lists the embedded preset names, sorted.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("data")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// DefaultCanvasWidth and DefaultCanvasHeight apply when a document carries
// no canvasDimensions block.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// Service orchestrates preset resolution: store first, embedded defaults as
// fallback, codec validation, atlas cross-checks, router construction.
// Store may be nil, in which case only built-in presets resolve.
type Service struct {
	Codec *config.Codec
	Store *Store
}

// LoadResult is the outcome of resolving and applying one preset.
type LoadResult struct {
	OK       bool
	Errors   []string
	Warnings []string

	Name      string
	AtlasID   string
	Document  []byte
	Composite *composite.Composite
}

// Load resolves the named preset and builds its router. Codec hard errors
// make the load fail; codec warnings and atlas cross-check findings (unknown
// territory codes, atlas territories the preset leaves out) are advisory.
func (s *Service) Load(ctx context.Context, name string) (LoadResult, error) {
	res := LoadResult{Name: name}

	data, err := s.resolve(ctx, name)
	if err != nil {
		return res, err
	}
	res.Document = data

	dec := s.Codec.Decode(data)
	res.Errors = dec.Errors
	res.Warnings = dec.Warnings
	if !dec.OK {
		return res, nil
	}
	res.AtlasID = dec.Document.Metadata.AtlasID

	res.Warnings = append(res.Warnings, crossCheck(dec)...)

	comp, err := s.Codec.BuildComposite(dec, DefaultCanvasWidth, DefaultCanvasHeight)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}
	res.Composite = comp
	res.OK = true
	return res, nil
}

// LoadDefault loads the atlas's configured default preset.
func (s *Service) LoadDefault(ctx context.Context, atlasID string) (LoadResult, error) {
	a, err := atlas.Get(atlasID)
	if err != nil {
		return LoadResult{}, err
	}
	return s.Load(ctx, a.DefaultPreset)
}

// Save validates the document and, when it has no hard errors, persists it
// under name. The returned result carries the validation findings either way.
func (s *Service) Save(ctx context.Context, name string, data []byte) (LoadResult, error) {
	res := LoadResult{Name: name, Document: data}
	if s.Store == nil {
		return res, fmt.Errorf("no preset store configured")
	}

	dec := s.Codec.Decode(data)
	res.Errors = dec.Errors
	res.Warnings = dec.Warnings
	if !dec.OK {
		return res, nil
	}
	res.AtlasID = dec.Document.Metadata.AtlasID
	res.Warnings = append(res.Warnings, crossCheck(dec)...)

	err := s.Store.Save(ctx, Preset{Name: name, AtlasID: res.AtlasID, Document: data})
	if err != nil {
		return res, err
	}
	res.OK = true
	return res, nil
}

// resolve prefers a stored preset over an embedded one of the same name.
func (s *Service) resolve(ctx context.Context, name string) ([]byte, error) {
	if s.Store != nil {
		p, err := s.Store.Get(ctx, name)
		if err == nil {
			return p.Document, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if data, ok := Builtin(name); ok {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// crossCheck compares the document's territories against the atlas catalog.
// Findings are advisory: a preset may legitimately cover a subset of an
// atlas, and codes unknown to the catalog may be newer than the embedded
// data.
func crossCheck(dec config.DecodeResult) []string {
	a, err := atlas.Get(dec.Document.Metadata.AtlasID)
	if err != nil {
		return []string{fmt.Sprintf("atlas %q is not in the catalog; territory codes were not checked", dec.Document.Metadata.AtlasID)}
	}

	var warnings []string
	covered := make(map[string]bool)
	for _, t := range dec.Territories {
		covered[t.Code] = true
		if _, ok := a.Territory(t.Code); !ok {
			warnings = append(warnings, fmt.Sprintf("territory %s is not part of atlas %s", t.Code, a.ID))
		}
	}
	for _, t := range a.Territories {
		if !covered[t.Code] {
			warnings = append(warnings, fmt.Sprintf("atlas territory %s is not configured", t.Code))
		}
	}
	return warnings
}
