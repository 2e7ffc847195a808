package sink

import (
	"strings"

	"github.com/Scrin/RuuviCollector/lib/graphite"
	"github.com/Scrin/RuuviCollector/measurement"
)

// Graphite sends <prefix>.<tag>.<field> metrics, where tag is the
// configured name or the MAC.
type Graphite struct {
	g      graphite.IGraphite
	prefix string
	fields Selector
}

func NewGraphite(g graphite.IGraphite, prefix string, fields Selector) *Graphite {
	return &Graphite{g: g, prefix: prefix, fields: fields}
}

func (s *Graphite) Save(r *measurement.Reading) error {
	tag := r.MAC
	if r.Name != "" {
		tag = graphite.Sanitize(r.Name)
	}
	base := strings.Trim(s.prefix+"."+tag, ".")
	ts := timestamp(r).Unix()
	for _, f := range measurement.Fields(r, s.fields.FieldFilter(r.MAC)) {
		if err := s.g.Add(base+"."+f.Name, ts, f.Value); err != nil {
			return err
		}
	}
	return s.g.Flush()
}

func (s *Graphite) Close() error {
	return s.g.Flush()
}
