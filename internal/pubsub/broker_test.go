package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type diagnostic struct {
	Kind string
	ID   int32
}

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker[diagnostic]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)

	delivered := broker.Publish(RejectedEvent, diagnostic{Kind: "formula-conflict", ID: 7})
	require.Equal(t, 1, delivered)

	select {
	case event := <-ch:
		require.Equal(t, diagnostic{Kind: "formula-conflict", ID: 7}, event.Payload)
		require.Equal(t, RejectedEvent, event.Type)
		require.False(t, event.Timestamp.IsZero())
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for event")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx := context.Background()
	chans := []<-chan Event[string]{broker.Subscribe(ctx), broker.Subscribe(ctx), broker.Subscribe(ctx)}
	require.Equal(t, 3, broker.SubscriberCount())

	require.Equal(t, 3, broker.Publish(RejectedEvent, "H2SO4"))

	for i, ch := range chans {
		select {
		case event := <-ch:
			require.Equal(t, "H2SO4", event.Payload, "subscriber %d", i)
			require.Equal(t, RejectedEvent, event.Type, "subscriber %d", i)
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_ContextCancellation(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool {
		return broker.SubscriberCount() == 0
	}, time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_NonBlockingCountsDrops(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())

	require.Equal(t, 1, broker.Publish(ReplacedEvent, 1))

	done := make(chan struct{})
	go func() {
		broker.Publish(ReplacedEvent, 2)
		broker.Publish(ReplacedEvent, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Publish blocked")
	}

	event := <-ch
	require.Equal(t, 1, event.Payload)
	require.Equal(t, int64(2), broker.Dropped())
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[string]()

	ctx := context.Background()
	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)
	require.False(t, broker.Closed())

	broker.Close()
	require.True(t, broker.Closed())

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	require.False(t, ok1, "ch1 should be closed")
	require.False(t, ok2, "ch2 should be closed")
	require.Equal(t, 0, broker.SubscriberCount())

	require.Equal(t, 0, broker.Publish(LoggedEvent, "after close"))
	broker.Close() // idempotent

	ch3 := broker.Subscribe(ctx)
	_, ok3 := <-ch3
	require.False(t, ok3, "subscribing to a closed broker yields a closed channel")
}

func TestListener_Next(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener[string](ctx, broker)
	broker.Publish(ReplacedEvent, "catalog")

	event, ok := l.Next()
	require.True(t, ok)
	require.Equal(t, ReplacedEvent, event.Type)
	require.Equal(t, "catalog", event.Payload)
}

func TestListener_NextAfterCancel(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener[string](ctx, broker)
	cancel()

	_, ok := l.Next()
	require.False(t, ok)
}

func TestListener_NextAfterBrokerClose(t *testing.T) {
	broker := NewBroker[string]()
	l := NewListener[string](context.Background(), broker)
	broker.Close()

	_, ok := l.Next()
	require.False(t, ok)
}

func TestListener_Drain(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	l := NewListener[int](context.Background(), broker)
	require.Empty(t, l.Drain())

	for i := 1; i <= 3; i++ {
		broker.Publish(RejectedEvent, i)
	}

	events := l.Drain()
	require.Len(t, events, 3)
	for i, event := range events {
		require.Equal(t, i+1, event.Payload)
	}
}
