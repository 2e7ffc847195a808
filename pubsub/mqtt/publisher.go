package mqtt

import (
	"fmt"
	"os"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/Scrin/RuuviCollector/pubsub"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Publisher for mqtt
type Publisher struct {
	broker string
	prefix string
	client MQTT.Client
}

// NewPublisher connects to broker, e.g. tcp://127.0.0.1:1883. Topics are
// published under prefix.
func NewPublisher(broker, clientID, prefix string) (*Publisher, error) {
	if clientID == "" {
		hostname, _ := os.Hostname()
		clientID = fmt.Sprintf("ruuvi-collector/%s-%d", hostname, os.Getpid())
	}
	opts := MQTT.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	client := MQTT.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.Errorf("mqtt: timed out connecting to %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrapf(err, "mqtt: connect to %s", broker)
	}
	return &Publisher{broker: broker, prefix: prefix, client: client}, nil
}

// ID of Publisher
func (pub *Publisher) ID() string {
	return "mqtt: " + pub.broker
}

// Emit an event
func (pub *Publisher) Emit(ev *pubsub.Event) error {
	topic := ev.Topic
	if pub.prefix != "" {
		topic = pub.prefix + "/" + topic
	}
	token := pub.client.Publish(topic, 1, ev.Retained, ev.Bytes())
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("mqtt: timed out publishing to %s", topic)
	}
	return errors.Wrapf(token.Error(), "mqtt: publish to %s", topic)
}

func (pub *Publisher) Close() {
	pub.client.Disconnect(250)
}
