// Package bus implements the publish/subscribe transport the bidding
// broker protocol runs over: topics carry JSON envelopes with a
// messageType discriminator. The broker session and the dummy broker
// counterpart depend only on the Bus interface, never on the transport
// underneath.
package bus

import "encoding/json"

// Envelope is the wire shape for every bus message: {topic, messageType,
// payload}.
type Envelope struct {
	Topic       string          `json:"topic"`
	MessageType string          `json:"messageType"`
	Payload     json.RawMessage `json:"payload"`
}

// Bus is the transport-agnostic publish/subscribe contract the broker and
// engine sides of the bidding protocol depend on.
type Bus interface {
	// Publish marshals payload and sends it on topic with the given
	// messageType.
	Publish(topic, messageType string, payload any) error
	// Subscribe returns a channel of every Envelope published on topic
	// from now on. The channel is closed when the bus is closed.
	Subscribe(topic string) <-chan Envelope
	// Close tears down the transport and every subscriber channel.
	Close() error
}

func marshalEnvelope(topic, messageType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Topic: topic, MessageType: messageType, Payload: raw}, nil
}
