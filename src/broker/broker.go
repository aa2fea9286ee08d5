// Package broker mirrors collector traffic onto a message broker so other
// systems can follow build events without polling the dashboard.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
)

// Broker abstracts message publishing and consumption.
// InMemoryBroker serves tests and single-process use; RedpandaBroker talks to
// any Kafka-compatible cluster.
type Broker interface {
	// Publish sends a message to a topic. The key selects the partition;
	// events of one job share a key so they stay ordered.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic.
	// groupID is used for consumer group coordination in Kafka.
	// For in-memory broker, groupID is ignored.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}

// PublishJSON marshals v and publishes it under key.
func PublishJSON(ctx context.Context, b Broker, topic, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", topic, err)
	}
	return b.Publish(ctx, topic, key, data)
}
