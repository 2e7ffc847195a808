// Package pubsub carries readings to message brokers as JSON events.
package pubsub

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Fields of an event, flattened into the JSON document.
type Fields map[string]interface{}

// Event is one document published under Topic.
type Event struct {
	Topic     string
	Timestamp time.Time
	Fields    Fields
	Retained  bool
}

func NewEvent(topic string, fields Fields) *Event {
	if fields == nil {
		fields = Fields{}
	}
	return &Event{Topic: topic, Timestamp: time.Now().UTC(), Fields: fields}
}

// TimeFormat keeps microseconds, enough to order readings from one receiver.
const TimeFormat = "2006-01-02T15:04:05.000000Z07:00"

// Reserved keys added next to the fields.
const (
	keyTopic     = "topic"
	keyTimestamp = "timestamp"
)

func (event *Event) Bytes() []byte {
	doc := make(map[string]interface{}, len(event.Fields)+2)
	for k, v := range event.Fields {
		doc[k] = v
	}
	doc[keyTopic] = event.Topic
	doc[keyTimestamp] = event.Timestamp.Format(TimeFormat)
	data, _ := json.Marshal(doc)
	return data
}

func (event *Event) String() string {
	return string(event.Bytes())
}

// StringField returns a string field, or "" when missing or not a string.
func (event *Event) StringField(name string) string {
	s, _ := event.Fields[name].(string)
	return s
}

// Parse reads an event back from its JSON form.
func Parse(data []byte) (*Event, error) {
	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "parse event")
	}
	topic, ok := fields[keyTopic].(string)
	if !ok {
		return nil, errors.New("parse event: missing topic")
	}
	delete(fields, keyTopic)
	ev := &Event{Topic: topic, Fields: fields}
	if ts, ok := fields[keyTimestamp].(string); ok {
		delete(fields, keyTimestamp)
		t, err := time.Parse(TimeFormat, ts)
		if err != nil {
			return nil, errors.Wrap(err, "parse event timestamp")
		}
		ev.Timestamp = t
	}
	return ev, nil
}
