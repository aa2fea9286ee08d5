package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"hygieia-reporter/src/contracts"
)

func TestInMemoryBroker_PublishSubscribe(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	topic := "test-topic"
	key := "test-key"
	value := []byte("test message")

	// Subscribe before publishing
	msgChan, err := broker.Subscribe(ctx, topic, "test-group")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Publish message
	if err := broker.Publish(ctx, topic, key, value); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Receive message
	select {
	case msg := <-msgChan:
		if msg.Topic != topic {
			t.Errorf("Expected topic %s, got %s", topic, msg.Topic)
		}
		if msg.Key != key {
			t.Errorf("Expected key %s, got %s", key, msg.Key)
		}
		if string(msg.Value) != string(value) {
			t.Errorf("Expected value %s, got %s", string(value), string(msg.Value))
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
}

func TestInMemoryBroker_MultipleSubscribers(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	topic := "test-topic"

	// Create two subscribers
	sub1, err := broker.Subscribe(ctx, topic, "group1")
	if err != nil {
		t.Fatalf("Subscribe 1 failed: %v", err)
	}

	sub2, err := broker.Subscribe(ctx, topic, "group2")
	if err != nil {
		t.Fatalf("Subscribe 2 failed: %v", err)
	}

	// Publish message
	value := []byte("broadcast message")
	if err := broker.Publish(ctx, topic, "key", value); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Both subscribers should receive the message
	for i, sub := range []<-chan Message{sub1, sub2} {
		select {
		case msg := <-sub:
			if string(msg.Value) != string(value) {
				t.Errorf("Subscriber %d: expected value %s, got %s", i+1, string(value), string(msg.Value))
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("Subscriber %d: timeout waiting for message", i+1)
		}
	}
}

func TestInMemoryBroker_ClosedBroker(t *testing.T) {
	broker := NewInMemoryBroker()
	broker.Close()

	ctx := context.Background()

	// Publishing to closed broker should fail
	err := broker.Publish(ctx, "test", "key", []byte("value"))
	if err == nil {
		t.Error("Expected error when publishing to closed broker")
	}

	// Subscribing to closed broker should fail
	_, err = broker.Subscribe(ctx, "test", "group")
	if err == nil {
		t.Error("Expected error when subscribing to closed broker")
	}
}

func TestInMemoryBroker_TopicIsolation(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	chA, _ := broker.Subscribe(ctx, "topic-a", "g")
	chB, _ := broker.Subscribe(ctx, "topic-b", "g")

	if err := broker.Publish(ctx, "topic-a", "k", []byte("a")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-chA:
		if msg.Offset != 0 {
			t.Errorf("Offset = %d, want 0", msg.Offset)
		}
	case <-time.After(time.Second):
		t.Fatal("topic-a: timeout waiting for message")
	}

	select {
	case msg := <-chB:
		t.Errorf("topic-b received unexpected message %q", msg.Value)
	default:
	}
}

func TestPublishJSON(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	ch, err := broker.Subscribe(ctx, contracts.TopicBuilds, "watch")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	event := contracts.BuildEvent{JobName: "app", Number: "7", BuildStatus: "SUCCESS"}
	if err := PublishJSON(ctx, broker, contracts.TopicBuilds, event.JobName, event); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	msg := <-ch
	if msg.Key != "app" {
		t.Errorf("Key = %q, want app", msg.Key)
	}
	var got contracts.BuildEvent
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Number != "7" || got.BuildStatus != "SUCCESS" {
		t.Errorf("decoded event = %+v", got)
	}
}

func TestInMemoryBroker_CloseClosesSubscriptions(t *testing.T) {
	broker := NewInMemoryBroker()
	ch, _ := broker.Subscribe(context.Background(), "t", "g")

	broker.Close()

	if _, ok := <-ch; ok {
		t.Error("expected subscription channel to be closed")
	}
}

func TestInMemoryBroker_SlowReaderDoesNotBlockSubscribeOrClose(t *testing.T) {
	broker := NewInMemoryBroker()
	ctx := context.Background()

	// Nobody reads from this subscription, so its buffer fills up.
	if _, err := broker.Subscribe(ctx, "t", "g"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := broker.Publish(ctx, "t", "k", []byte("fill")); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}

	published := make(chan error, 1)
	go func() { published <- broker.Publish(ctx, "t", "k", []byte("blocked")) }()

	subscribed := make(chan error, 1)
	go func() {
		_, err := broker.Subscribe(ctx, "other", "g")
		subscribed <- err
	}()
	select {
	case err := <-subscribed:
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe blocked behind a publisher waiting on a full buffer")
	}

	closed := make(chan struct{})
	go func() {
		broker.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked behind a publisher waiting on a full buffer")
	}

	select {
	case err := <-published:
		if err == nil {
			t.Error("expected the blocked Publish to fail once the broker closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked Publish was not released by Close")
	}
}
