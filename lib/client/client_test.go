package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/network"
	"pollpulse.io/pollpulse/lib/runner"
)

func prepareClient(t *testing.T) (*httptest.Server, *Client) {
	endpoint, err := common.ParseEndpoint("http://127.0.0.1:12345")
	require.NoError(t, err)

	config, err := network.NewServerConfigFromEndpoint("pollpulse-test", endpoint)
	require.NoError(t, err)

	r, err := runner.NewRunner(network.NewServer(config), common.NewConfig())
	require.NoError(t, err)
	r.Ready()

	ts := httptest.NewServer(r.Network().Router())
	return ts, NewClient(ts.URL)
}

func TestClientPollLifecycle(t *testing.T) {
	ts, c := prepareClient(t)
	defer ts.Close()

	created, err := c.CreatePoll("lunch?", []string{"pizza", "ramen"}, "client-test")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "lunch?", created.Question)
	require.True(t, created.IsActive)
	require.Len(t, created.Options, 2)

	loaded, err := c.LoadPoll(created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, loaded.ID)

	page, err := c.LoadPolls()
	require.NoError(t, err)
	require.Len(t, page.Embedded.Records, 1)

	closed, err := c.ClosePoll(created.ID)
	require.NoError(t, err)
	require.False(t, closed.IsActive)

	require.NoError(t, c.DeletePoll(created.ID))

	_, err = c.LoadPoll(created.ID)
	clientError, ok := err.(Error)
	require.True(t, ok)
	require.Equal(t, 404, clientError.Problem.Status)
}

func TestClientSubmitVote(t *testing.T) {
	ts, c := prepareClient(t)
	defer ts.Close()

	created, err := c.CreatePoll("coffee?", []string{"yes", "more"}, "client-test")
	require.NoError(t, err)

	updated, err := c.SubmitVote(created.ID, created.Options[0].ID, "fp-client")
	require.NoError(t, err)
	require.Equal(t, uint64(1), updated.TotalVotes)

	status, err := c.HasVoted(created.ID, "fp-client")
	require.NoError(t, err)
	require.True(t, status.HasVoted)

	_, err = c.SubmitVote(created.ID, created.Options[1].ID, "fp-client")
	clientError, ok := err.(Error)
	require.True(t, ok)
	require.Equal(t, 400, clientError.Problem.Status)
}

func TestClientStreamPoll(t *testing.T) {
	ts, c := prepareClient(t)
	defer ts.Close()

	created, err := c.CreatePoll("stream?", []string{"yes", "no"}, "client-test")
	require.NoError(t, err)

	events := make(chan PollEvent, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.StreamPoll(ctx, created.ID, func(ev PollEvent) {
			events <- ev
		})
	}()

	first := <-events
	require.Equal(t, "poll-data", first.Event)
	require.Equal(t, created.ID, first.Poll.ID)

	_, err = c.SubmitVote(created.ID, created.Options[0].ID, "fp-watch")
	require.NoError(t, err)

	update := <-events
	require.Equal(t, "vote-update", update.Event)
	require.Equal(t, uint64(1), update.Poll.TotalVotes)

	cancel()
	ts.CloseClientConnections()
	<-done
}
