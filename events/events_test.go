package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPublisherWithoutBrokers(t *testing.T) {
	publisher := NewPublisher(nil)
	assert.Nil(t, publisher)
}

// A nil publisher is the "eventing disabled" mode and must be safe to use.
func TestNilPublisherIsNoOp(t *testing.T) {
	var publisher *Publisher

	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), TopicOrderCreated, "order-1", map[string]string{"k": "v"})
	})
	assert.NoError(t, publisher.Close())
}

func TestNewPublisherWithBrokers(t *testing.T) {
	publisher := NewPublisher([]string{"localhost:9092"})
	assert.NotNil(t, publisher)
	assert.NoError(t, publisher.Close())
}
