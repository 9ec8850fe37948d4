package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishAndCatchup(t *testing.T) {
	b := New(nil)
	b.Publish(Event{RunID: "r1", Event: EventPipelineStart, Timestamp: time.Now()})
	b.Publish(Event{RunID: "r1", Event: EventCloneStart, Timestamp: time.Now()})

	events := b.Catchup("r1")
	require.Len(t, events, 2)
	require.Equal(t, EventPipelineStart, events[0].Event)
	require.Equal(t, EventCloneStart, events[1].Event)
}

func TestCatchupBoundedToLimit(t *testing.T) {
	b := New(nil)
	for i := 0; i < catchupLimit+10; i++ {
		b.Publish(Event{RunID: "r1", Event: EventCIStatus})
	}
	events := b.Catchup("r1")
	require.Len(t, events, catchupLimit)
}

func TestCatchupUnknownRunIsEmpty(t *testing.T) {
	b := New(nil)
	require.Empty(t, b.Catchup("never-seen"))
}

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	b := New(nil)
	ch, unsubscribe := b.Subscribe("r1")
	defer unsubscribe()

	b.Publish(Event{RunID: "r1", Event: EventTestsStart})

	select {
	case evt := <-ch:
		require.Equal(t, EventTestsStart, evt.Event)
	case <-time.After(time.Second):
		t.Fatal("expected to receive published event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(nil)
	ch, unsubscribe := b.Subscribe("r1")
	unsubscribe()

	b.Publish(Event{RunID: "r1", Event: EventTestsStart})

	_, ok := <-ch
	require.False(t, ok, "channel should be closed after unsubscribe")
}

func TestSlowSubscriberDroppedWithoutAffectingOthers(t *testing.T) {
	b := New(nil)
	slow, unsubSlow := b.Subscribe("r1")
	defer unsubSlow()
	fast, unsubFast := b.Subscribe("r1")
	defer unsubFast()

	// Fill the slow subscriber's queue without draining it.
	for i := 0; i < subscriberQueueDepth+5; i++ {
		b.Publish(Event{RunID: "r1", Event: EventCIStatus})
	}

	select {
	case evt := <-fast:
		require.Equal(t, EventCIStatus, evt.Event)
	case <-time.After(time.Second):
		t.Fatal("fast subscriber should still receive events")
	}
	_ = slow
}

func TestOrderingPreservedPerRun(t *testing.T) {
	b := New(nil)
	order := []string{EventPipelineStart, EventCloneStart, EventCloneDone, EventPipelineDone}
	for _, name := range order {
		b.Publish(Event{RunID: "r1", Event: name})
	}
	all := b.All("r1")
	require.Len(t, all, len(order))
	for i, name := range order {
		require.Equal(t, name, all[i].Event)
	}
	require.Equal(t, EventPipelineDone, all[len(all)-1].Event)
}
