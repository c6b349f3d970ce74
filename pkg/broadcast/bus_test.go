package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_DeliversToSubscribersOfMatchingTopic(t *testing.T) {
	b := New()
	sub := b.Subscribe("project-1")
	defer b.Unsubscribe(sub)

	b.Publish("project-1", Event{Type: "session_started"})

	select {
	case got := <-sub.Events():
		assert.Equal(t, "session_started", got.Type)
		assert.Equal(t, "project-1", got.Topic)
	default:
		t.Fatal("expected an event to be delivered")
	}
}

func TestPublish_IgnoresSubscribersOnOtherTopics(t *testing.T) {
	b := New()
	subA := b.Subscribe("project-a")
	subB := b.Subscribe("project-b")
	defer b.Unsubscribe(subA)
	defer b.Unsubscribe(subB)

	b.Publish("project-a", Event{Type: "session_started"})

	select {
	case <-subB.Events():
		t.Fatal("subscriber on a different topic should not receive the event")
	default:
	}
}

func TestPublish_NoSubscribersIsNoOp(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Publish("nobody-listening", Event{Type: "session_started"})
	})
}

func TestDeliver_DropsOldestWhenBufferFull(t *testing.T) {
	b := New()
	sub := b.Subscribe("project-1")
	defer b.Unsubscribe(sub)

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish("project-1", Event{Type: "tick"})
	}

	assert.Equal(t, int64(5), sub.Lost())
	assert.Len(t, sub.ch, subscriberBuffer)
}

func TestUnsubscribe_RemovesSubscriberAndClosesChannel(t *testing.T) {
	b := New()
	sub := b.Subscribe("project-1")
	require.Equal(t, 1, b.SubscriberCount("project-1"))

	b.Unsubscribe(sub)

	assert.Equal(t, 0, b.SubscriberCount("project-1"))
	_, open := <-sub.Events()
	assert.False(t, open)
}
