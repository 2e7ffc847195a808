package dummy

import "github.com/Scrin/RuuviCollector/pubsub"

// Dummy Publisher for testing
type Publisher struct {
	Events []*pubsub.Event
	Closed bool
}

func (self *Publisher) ID() string {
	return "dummy"
}

func (self *Publisher) Emit(ev *pubsub.Event) error {
	self.Events = append(self.Events, ev)
	return nil
}

func (self *Publisher) Close() {
	self.Closed = true
}
