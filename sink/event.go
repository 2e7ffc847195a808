package sink

import (
	"github.com/Scrin/RuuviCollector/measurement"
	"github.com/Scrin/RuuviCollector/pubsub"
)

// readingEvent is the JSON document sent to brokers and data logs.
func readingEvent(r *measurement.Reading, filter measurement.FieldFilter) *pubsub.Event {
	fields := pubsub.Fields{
		"mac":        r.MAC,
		"dataFormat": string(r.DataFormat),
	}
	text := map[string]string{
		"name":        r.Name,
		"receiver":    r.Receiver,
		"uuid":        r.UUID,
		"namespaceId": r.NamespaceID,
		"instanceId":  r.InstanceID,
	}
	for k, v := range text {
		if v != "" {
			fields[k] = v
		}
	}
	for _, f := range measurement.Fields(r, filter) {
		fields[f.Name] = f.Value
	}
	ev := pubsub.NewEvent(r.MAC, fields)
	ev.Timestamp = timestamp(r).UTC()
	return ev
}
