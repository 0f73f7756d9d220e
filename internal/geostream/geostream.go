// Package geostream adapts orb geometries to the projection stream
// protocol: it walks a geometry emitting point/line/polygon events, and
// collects projected events back into geometry. Pure adapter; all clipping
// and resampling happens inside the projection pipeline.
package geostream

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pspoerri/atlas-composer/internal/projection"
)

// Streamer is the projection-like surface both a single projection instance
// and the composite router expose.
type Streamer interface {
	Stream(sink projection.Stream) projection.Stream
}

// Walk emits g into s as stream events. Coordinates pass through untouched;
// feed the head of a projection pipeline to project them.
func Walk(g orb.Geometry, s projection.Stream) {
	switch geom := g.(type) {
	case orb.Point:
		s.Point(geom[0], geom[1])
	case orb.MultiPoint:
		for _, p := range geom {
			s.Point(p[0], p[1])
		}
	case orb.LineString:
		walkLine(geom, s)
	case orb.MultiLineString:
		for _, line := range geom {
			walkLine(orb.LineString(line), s)
		}
	case orb.Ring:
		s.PolygonStart()
		walkLine(orb.LineString(geom), s)
		s.PolygonEnd()
	case orb.Polygon:
		s.PolygonStart()
		for _, ring := range geom {
			walkLine(orb.LineString(ring), s)
		}
		s.PolygonEnd()
	case orb.MultiPolygon:
		for _, poly := range geom {
			Walk(poly, s)
		}
	case orb.Collection:
		for _, member := range geom {
			Walk(member, s)
		}
	case orb.Bound:
		Walk(geom.ToPolygon(), s)
	}
}

func walkLine(line orb.LineString, s projection.Stream) {
	s.LineStart()
	for _, p := range line {
		s.Point(p[0], p[1])
	}
	s.LineEnd()
}

// Collector is a stream sink rebuilding geometry from projected events.
// Clipping may split one input line into several output runs; each run
// becomes its own line string (or ring, inside a polygon frame).
type Collector struct {
	points   []orb.Point
	lines    []orb.LineString
	polygons []orb.Polygon

	current   orb.LineString
	inLine    bool
	inPolygon bool
	rings     []orb.Ring
}

// NewCollector returns an empty collector.
func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Point(x, y float64) {
	if c.inLine {
		c.current = append(c.current, orb.Point{x, y})
		return
	}
	c.points = append(c.points, orb.Point{x, y})
}

func (c *Collector) LineStart() {
	c.inLine = true
	c.current = nil
}

func (c *Collector) LineEnd() {
	c.inLine = false
	if len(c.current) == 0 {
		return
	}
	if c.inPolygon {
		ring := orb.Ring(c.current)
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		c.rings = append(c.rings, ring)
	} else {
		c.lines = append(c.lines, c.current)
	}
	c.current = nil
}

func (c *Collector) PolygonStart() {
	c.inPolygon = true
	c.rings = nil
}

func (c *Collector) PolygonEnd() {
	c.inPolygon = false
	if len(c.rings) > 0 {
		c.polygons = append(c.polygons, orb.Polygon(c.rings))
	}
	c.rings = nil
}

// Geometry returns the collected result, or nil when every event was
// clipped away. Homogeneous results collapse to the simplest type.
func (c *Collector) Geometry() orb.Geometry {
	var members orb.Collection
	if len(c.points) == 1 {
		members = append(members, c.points[0])
	} else if len(c.points) > 1 {
		members = append(members, orb.MultiPoint(c.points))
	}
	if len(c.lines) == 1 {
		members = append(members, c.lines[0])
	} else if len(c.lines) > 1 {
		ml := make(orb.MultiLineString, len(c.lines))
		for i, l := range c.lines {
			ml[i] = orb.LineString(l)
		}
		members = append(members, ml)
	}
	if len(c.polygons) == 1 {
		members = append(members, c.polygons[0])
	} else if len(c.polygons) > 1 {
		members = append(members, orb.MultiPolygon(c.polygons))
	}

	switch len(members) {
	case 0:
		return nil
	case 1:
		return members[0]
	default:
		return members
	}
}

// Project runs g through p's stream pipeline and returns the projected
// geometry in screen coordinates, or nil when everything was clipped away.
func Project(p Streamer, g orb.Geometry) orb.Geometry {
	collector := NewCollector()
	Walk(g, p.Stream(collector))
	return collector.Geometry()
}

// ProjectFeature projects a GeoJSON feature, preserving its properties and
// id. Features whose geometry is clipped away entirely return nil.
func ProjectFeature(p Streamer, f *geojson.Feature) *geojson.Feature {
	projected := Project(p, f.Geometry)
	if projected == nil {
		return nil
	}
	out := geojson.NewFeature(projected)
	out.ID = f.ID
	out.Properties = f.Properties.Clone()
	return out
}

// ProjectCollection projects every feature of a collection, dropping the
// ones clipped away entirely.
func ProjectCollection(p Streamer, fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if pf := ProjectFeature(p, f); pf != nil {
			out.Append(pf)
		}
	}
	return out
}
