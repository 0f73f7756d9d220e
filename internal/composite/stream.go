package composite

import "github.com/pspoerri/atlas-composer/internal/projection"

// Stream returns a geometry stream fanning every event out to all
// sub-projections' streams over the shared sink. The router does not
// pre-filter by geographic bounds here — a single line or ring may cross
// territory boundaries, and each sub-projection's own clip extent already
// discards geometry outside its territory. Broadcast keeps line/polygon
// begin/end pairs coherent per sub-stream without buffering or replay.
func (c *Composite) Stream(sink projection.Stream) projection.Stream {
	subs := make([]projection.Stream, len(c.entries))
	for i, e := range c.entries {
		subs[i] = e.proj.Stream(sink)
	}
	return &broadcast{subs: subs}
}

type broadcast struct {
	subs []projection.Stream
}

func (b *broadcast) Point(x, y float64) {
	for _, s := range b.subs {
		s.Point(x, y)
	}
}

func (b *broadcast) LineStart() {
	for _, s := range b.subs {
		s.LineStart()
	}
}

func (b *broadcast) LineEnd() {
	for _, s := range b.subs {
		s.LineEnd()
	}
}

func (b *broadcast) PolygonStart() {
	for _, s := range b.subs {
		s.PolygonStart()
	}
}

func (b *broadcast) PolygonEnd() {
	for _, s := range b.subs {
		s.PolygonEnd()
	}
}
