package mqtt

// Message is a payload received on a topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Handler processes an incoming message. It runs on the transport's
// delivery goroutine and must not block for long.
type Handler func(Message)

// Transport publishes and subscribes to topics on a broker.
type Transport interface {
	// Publish sends payload on topic, retrying transient failures.
	Publish(topic string, payload []byte) error
	// Subscribe registers handler for messages matching topic, which may
	// contain MQTT wildcards.
	Subscribe(topic string, handler Handler) error
	Close() error
}
