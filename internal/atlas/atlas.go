// Package atlas holds the reference catalog of supported atlases and their
// territories. The catalog is embedded YAML, parsed once on first access;
// it is the source of truth for territory codes and geographic bounds that
// presets and API responses are checked against.
package atlas

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Territory is one routable region of an atlas.
type Territory struct {
	Code   string        `yaml:"code" json:"code"`
	Name   string        `yaml:"name" json:"name"`
	Region string        `yaml:"region,omitempty" json:"region,omitempty"`
	Bounds [2][2]float64 `yaml:"bounds" json:"bounds"`
}

// Atlas is a named set of territories composed onto one canvas.
type Atlas struct {
	ID            string      `yaml:"id" json:"id"`
	Name          string      `yaml:"name" json:"name"`
	Description   string      `yaml:"description" json:"description"`
	DefaultPreset string      `yaml:"defaultPreset" json:"defaultPreset"`
	Territories   []Territory `yaml:"territories" json:"territories"`
}

// Territory returns the territory with the given code.
func (a Atlas) Territory(code string) (Territory, bool) {
	for _, t := range a.Territories {
		if t.Code == code {
			return t, true
		}
	}
	return Territory{}, false
}

var (
	loadOnce sync.Once
	loadErr  error
	catalog  map[string]Atlas
)

func load() {
	catalog = make(map[string]Atlas)
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		raw, err := dataFS.ReadFile("data/" + e.Name())
		if err != nil {
			loadErr = err
			return
		}
		var a Atlas
		if err := yaml.Unmarshal(raw, &a); err != nil {
			loadErr = fmt.Errorf("parsing %s: %w", e.Name(), err)
			return
		}
		if a.ID == "" {
			loadErr = fmt.Errorf("%s: atlas id is missing", e.Name())
			return
		}
		if _, dup := catalog[a.ID]; dup {
			loadErr = fmt.Errorf("%s: duplicate atlas id %q", e.Name(), a.ID)
			return
		}
		catalog[a.ID] = a
	}
}

// All returns every embedded atlas, sorted by id.
func All() ([]Atlas, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]Atlas, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns the atlas with the given id.
func Get(id string) (Atlas, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Atlas{}, loadErr
	}
	a, ok := catalog[id]
	if !ok {
		return Atlas{}, fmt.Errorf("unknown atlas %q", id)
	}
	return a, nil
}
