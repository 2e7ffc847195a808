package sink

import (
	"github.com/Scrin/RuuviCollector/measurement"
	"github.com/Scrin/RuuviCollector/pubsub"
)

// MQTT publishes each reading as a JSON event on <prefix>/<MAC>.
type MQTT struct {
	pub    pubsub.Publisher
	fields Selector
}

func NewMQTT(pub pubsub.Publisher, fields Selector) *MQTT {
	return &MQTT{pub: pub, fields: fields}
}

func (m *MQTT) Save(r *measurement.Reading) error {
	return m.pub.Emit(readingEvent(r, m.fields.FieldFilter(r.MAC)))
}

func (m *MQTT) Close() error {
	m.pub.Close()
	return nil
}
