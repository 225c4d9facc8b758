package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/errors"
)

func newTestRegistry() (*Registry, *Broadcaster) {
	conf := common.NewConfig()
	broadcaster := NewBroadcaster(conf, newTestObservable())
	return NewRegistry(conf, broadcaster), broadcaster
}

func TestCreatePoll(t *testing.T) {
	registry, _ := newTestRegistry()

	snapshot, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "tester")
	require.NoError(t, err)
	require.Equal(t, common.PollIDLength, len(snapshot.ID))
	require.True(t, snapshot.IsActive)

	loaded, err := registry.GetPoll(snapshot.ID)
	require.NoError(t, err)
	require.Equal(t, snapshot, loaded)
}

func TestCreatePollValidation(t *testing.T) {
	registry, _ := newTestRegistry()

	_, err := registry.CreatePoll("", []string{"red", "blue"}, "")
	require.Equal(t, errors.ErrorValidationFailed, err)
	require.Empty(t, registry.Polls())
}

func TestGetPollNotFound(t *testing.T) {
	registry, _ := newTestRegistry()

	_, err := registry.GetPoll("no-such-id")
	require.Equal(t, errors.ErrorPollNotFound, err)
}

func TestPollsNewestFirst(t *testing.T) {
	registry, _ := newTestRegistry()

	first, err := registry.CreatePoll("first?", []string{"a", "b"}, "")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := registry.CreatePoll("second?", []string{"a", "b"}, "")
	require.NoError(t, err)

	polls := registry.Polls()
	require.Equal(t, 2, len(polls))
	require.Equal(t, second.ID, polls[0].ID)
	require.Equal(t, first.ID, polls[1].ID)
}

func TestClosePoll(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(created.ID, sub)
	<-sub.Events() // initial snapshot

	snapshot, err := registry.ClosePoll(created.ID)
	require.NoError(t, err)
	require.False(t, snapshot.IsActive)

	ev := <-sub.Events()
	require.Equal(t, EventPollClosed, ev.Type)
	require.False(t, ev.Poll.IsActive)

	// closing again succeeds without a second broadcast
	snapshot, err = registry.ClosePoll(created.ID)
	require.NoError(t, err)
	require.False(t, snapshot.IsActive)
	require.Empty(t, sub.Events())
}

func TestClosePollNotFound(t *testing.T) {
	registry, _ := newTestRegistry()

	_, err := registry.ClosePoll("no-such-id")
	require.Equal(t, errors.ErrorPollNotFound, err)
}

func TestDeletePoll(t *testing.T) {
	registry, broadcaster := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	optionID := created.Options[0].ID
	_, err = registry.SubmitVote(created.ID, optionID, "fp0")
	require.NoError(t, err)

	sub := broadcaster.NewSubscriber()
	broadcaster.Subscribe(created.ID, sub)
	<-sub.Events()

	require.NoError(t, registry.DeletePoll(created.ID))
	require.Equal(t, errors.ErrorPollNotFound, registry.DeletePoll(created.ID))

	ev := <-sub.Events()
	require.Equal(t, EventPollDeleted, ev.Type)
	require.Nil(t, ev.Poll)

	_, err = registry.GetPoll(created.ID)
	require.Equal(t, errors.ErrorPollNotFound, err)

	// the ledger keeps the vote of the deleted poll
	require.True(t, registry.HasVoted(created.ID, "fp0"))
}

func TestHasVoted(t *testing.T) {
	registry, _ := newTestRegistry()

	created, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "")
	require.NoError(t, err)

	require.False(t, registry.HasVoted(created.ID, "fp0"))

	_, err = registry.SubmitVote(created.ID, created.Options[0].ID, "fp0")
	require.NoError(t, err)

	require.True(t, registry.HasVoted(created.ID, "fp0"))
	require.False(t, registry.HasVoted(created.ID, "fp1"))
	require.False(t, registry.HasVoted("no-such-id", "fp0"))
}
