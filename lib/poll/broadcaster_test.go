package poll

import (
	"sync"
	"testing"

	observable "github.com/GianlucaGuarini/go-observable"
	"github.com/stretchr/testify/require"

	"pollpulse.io/pollpulse/lib/common"
)

func newTestObservable() *observable.Observable {
	return observable.New()
}

func TestSubscribeSendsSnapshotFirst(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(created.ID, sub)

	ev := <-sub.Events()
	require.Equal(t, EventPollData, ev.Type)
	require.Equal(t, created, ev.Poll)
}

func TestSubscribeUnknownPoll(t *testing.T) {
	_, broadcaster := newTestRegistry()

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe("no-such-id", sub)

	ev := <-sub.Events()
	require.Equal(t, EventPollNotFound, ev.Type)
	require.Nil(t, ev.Poll)
}

func TestSubscriberGetsExactlyOneUpdatePerVote(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(created.ID, sub)
	<-sub.Events()

	_, err = registry.SubmitVote(created.ID, created.Options[0].ID, "fp0")
	require.NoError(t, err)

	ev := <-sub.Events()
	require.Equal(t, EventVoteUpdate, ev.Type)
	require.Equal(t, uint64(1), ev.Poll.TotalVotes)
	require.Empty(t, sub.Events())
}

func TestPublishReachesEverySubscriber(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	subs := make([]*Subscriber, 3)
	for i := range subs {
		subs[i] = broadcaster.NewSubscriber()
		broadcaster.Subscribe(created.ID, subs[i])
		<-subs[i].Events()
	}

	_, err = registry.SubmitVote(created.ID, created.Options[0].ID, "fp0")
	require.NoError(t, err)

	for _, sub := range subs {
		ev := <-sub.Events()
		require.Equal(t, EventVoteUpdate, ev.Type)
	}
}

func TestPublishIsScopedToOnePoll(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	a, err := registry.CreatePoll("a?", []string{"x", "y"}, "")
	require.NoError(t, err)
	b, err := registry.CreatePoll("b?", []string{"x", "y"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(b.ID, sub)
	<-sub.Events()

	_, err = registry.SubmitVote(a.ID, a.Options[0].ID, "fp0")
	require.NoError(t, err)

	require.Empty(t, sub.Events())
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	conf := common.NewConfig()
	conf.SubscriberBufferSize = 2
	broadcaster := NewBroadcaster(conf, newTestObservable())
	registry := NewRegistry(conf, broadcaster)

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(created.ID, sub)
	// never read; the initial snapshot occupies one slot

	for i := 0; i < 5; i++ {
		_, err = registry.SubmitVote(created.ID, created.Options[0].ID, common.GenerateUUID())
		require.NoError(t, err)
	}

	// only the two newest events remain
	ev := <-sub.Events()
	require.Equal(t, EventVoteUpdate, ev.Type)
	require.Equal(t, uint64(4), ev.Poll.TotalVotes)

	ev = <-sub.Events()
	require.Equal(t, EventVoteUpdate, ev.Type)
	require.Equal(t, uint64(5), ev.Poll.TotalVotes)

	require.Empty(t, sub.Events())
}

func TestPublishDropsStaleSnapshot(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(created.ID, sub)
	<-sub.Events()

	// a newer snapshot published first makes the older one stale
	newer := &Snapshot{ID: created.ID, TotalVotes: 2, Seq: 2}
	older := &Snapshot{ID: created.ID, TotalVotes: 1, Seq: 1}
	broadcaster.Publish(created.ID, Event{Type: EventVoteUpdate, Poll: newer})
	broadcaster.Publish(created.ID, Event{Type: EventVoteUpdate, Poll: older})

	ev := <-sub.Events()
	require.Equal(t, uint64(2), ev.Poll.TotalVotes)
	require.Empty(t, sub.Events())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(created.ID, sub)
	<-sub.Events()

	broadcaster.Unsubscribe(created.ID, sub)

	_, err = registry.SubmitVote(created.ID, created.Options[0].ID, "fp0")
	require.NoError(t, err)

	require.Empty(t, sub.Events())

	// unknown pair is a no-op
	broadcaster.Unsubscribe(created.ID, sub)
}

func TestDisconnectClosesSubscriber(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	a, err := registry.CreatePoll("a?", []string{"x", "y"}, "")
	require.NoError(t, err)
	b, err := registry.CreatePoll("b?", []string{"x", "y"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(a.ID, sub)
	broadcaster.Subscribe(b.ID, sub)
	<-sub.Events()
	<-sub.Events()

	broadcaster.Disconnect(sub)

	_, ok := <-sub.Events()
	require.False(t, ok)

	// publish after disconnect must not panic
	_, err = registry.SubmitVote(a.ID, a.Options[0].ID, "fp0")
	require.NoError(t, err)
}

func TestPublishDoesNotBlockVotePath(t *testing.T) {
	conf := common.NewConfig()
	conf.SubscriberBufferSize = 1
	broadcaster := NewBroadcaster(conf, newTestObservable())
	registry := NewRegistry(conf, broadcaster)

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	// a hundred stalled subscribers
	for i := 0; i < 100; i++ {
		sub := broadcaster.NewSubscriber()
		broadcaster.Subscribe(created.ID, sub)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := registry.SubmitVote(created.ID, created.Options[0].ID, common.GenerateUUID())
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snapshot, err := registry.GetPoll(created.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(10), snapshot.TotalVotes)
}
