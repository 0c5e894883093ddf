package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/backend/internal/models"
	"github.com/tutorhub/backend/internal/store"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir(), []models.Tutor{
		{ID: 1, Name: "Ivan Ivanov"},
		{ID: 2, Name: "Maria Petrova"},
	})
	require.NoError(t, err)

	hub := NewHub(st)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newTestClient(hub *Hub, userID int) *Client {
	return &Client{
		id:     "test-client",
		userID: userID,
		hub:    hub,
		send:   make(chan Event, sendBuffer),
	}
}

func recv(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev, ok := <-c.send:
		require.True(t, ok, "send channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// drainSnapshot consumes the registration ack and per-tutor replay.
func drainSnapshot(t *testing.T, c *Client, tutorCount int) []ReactionUpdate {
	t.Helper()

	ev := recv(t, c)
	assert.Equal(t, EventConnectionSuccess, ev.Event)
	assert.Equal(t, ConnectionSuccess{Status: "connected"}, ev.Data)

	updates := make([]ReactionUpdate, 0, tutorCount)
	for i := 0; i < tutorCount; i++ {
		ev := recv(t, c)
		require.Equal(t, EventReactionUpdate, ev.Event)
		updates = append(updates, ev.Data.(ReactionUpdate))
	}
	return updates
}

func TestHubSnapshotOnConnect(t *testing.T) {
	hub := newTestHub(t)
	c := newTestClient(hub, 0)
	hub.Register(c)

	updates := drainSnapshot(t, c, 2)
	assert.Equal(t, ReactionUpdate{TutorID: 1}, updates[0])
	assert.Equal(t, ReactionUpdate{TutorID: 2}, updates[1])
}

func TestHubVoteBroadcastToAll(t *testing.T) {
	hub := newTestHub(t)
	voter := newTestClient(hub, 1)
	watcher := newTestClient(hub, 0)
	hub.Register(voter)
	hub.Register(watcher)
	drainSnapshot(t, voter, 2)
	drainSnapshot(t, watcher, 2)

	hub.CastVote(voter, 1, store.ReactionLike)

	want := ReactionUpdate{TutorID: 1, Likes: 1, Dislikes: 0}
	for _, c := range []*Client{voter, watcher} {
		ev := recv(t, c)
		assert.Equal(t, EventReactionUpdate, ev.Event)
		assert.Equal(t, want, ev.Data)
	}
}

func TestHubDuplicateVoteUnicastError(t *testing.T) {
	hub := newTestHub(t)
	voter := newTestClient(hub, 1)
	other := newTestClient(hub, 2)
	hub.Register(voter)
	hub.Register(other)
	drainSnapshot(t, voter, 2)
	drainSnapshot(t, other, 2)

	hub.CastVote(voter, 1, store.ReactionLike)
	recv(t, voter)
	recv(t, other)

	// Second vote by the same user: error to the voter only, no broadcast.
	hub.CastVote(voter, 1, store.ReactionDislike)
	ev := recv(t, voter)
	assert.Equal(t, EventReactionError, ev.Event)
	assert.Equal(t, ReactionError{Message: msgAlreadyVoted}, ev.Data)

	// The next event the other client sees is a later successful vote,
	// proving the failure was never fanned out.
	hub.CastVote(other, 1, store.ReactionDislike)
	want := ReactionUpdate{TutorID: 1, Likes: 1, Dislikes: 1}
	assert.Equal(t, want, recv(t, other).Data)
	assert.Equal(t, want, recv(t, voter).Data)
}

func TestHubUnauthenticatedVote(t *testing.T) {
	hub := newTestHub(t)
	anon := newTestClient(hub, 0)
	watcher := newTestClient(hub, 0)
	hub.Register(anon)
	hub.Register(watcher)
	drainSnapshot(t, anon, 2)
	drainSnapshot(t, watcher, 2)

	hub.CastVote(anon, 1, store.ReactionLike)
	ev := recv(t, anon)
	assert.Equal(t, EventReactionError, ev.Event)
	assert.Equal(t, ReactionError{Message: msgUnauthenticated}, ev.Data)

	// No tutor state changed and nothing reached the watcher.
	tallies, err := hub.store.GetAllTallies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Tally{TutorID: 1}, tallies[0])
	assert.Empty(t, watcher.send)
}

func TestHubInvalidReactionAndUnknownTutor(t *testing.T) {
	hub := newTestHub(t)
	voter := newTestClient(hub, 1)
	hub.Register(voter)
	drainSnapshot(t, voter, 2)

	hub.CastVote(voter, 1, "love")
	assert.Equal(t, ReactionError{Message: msgInvalidReaction}, recv(t, voter).Data)

	hub.CastVote(voter, 99, store.ReactionLike)
	assert.Equal(t, ReactionError{Message: msgTutorNotFound}, recv(t, voter).Data)
}

func TestHubDisconnectStopsDelivery(t *testing.T) {
	hub := newTestHub(t)
	voter := newTestClient(hub, 1)
	leaver := newTestClient(hub, 0)
	hub.Register(voter)
	hub.Register(leaver)
	drainSnapshot(t, voter, 2)
	drainSnapshot(t, leaver, 2)

	hub.Unregister(leaver)
	hub.CastVote(voter, 2, store.ReactionLike)

	assert.Equal(t, EventReactionUpdate, recv(t, voter).Event)

	// The leaver's channel was closed without the broadcast.
	_, ok := <-leaver.send
	assert.False(t, ok)
}

// TestHubFreshSnapshotAfterVotes: a reconnecting client is brand-new and
// sees the current tallies, not the state from its previous connection.
func TestHubFreshSnapshotAfterVotes(t *testing.T) {
	hub := newTestHub(t)
	voter := newTestClient(hub, 1)
	hub.Register(voter)
	drainSnapshot(t, voter, 2)

	hub.CastVote(voter, 1, store.ReactionLike)
	recv(t, voter)

	late := newTestClient(hub, 0)
	hub.Register(late)
	updates := drainSnapshot(t, late, 2)
	assert.Equal(t, ReactionUpdate{TutorID: 1, Likes: 1}, updates[0])
	assert.Equal(t, ReactionUpdate{TutorID: 2}, updates[1])
}

// TestHubSlowClientDropped: a client that never drains its send buffer is
// evicted on the next fan-out instead of stalling everyone else.
func TestHubSlowClientDropped(t *testing.T) {
	hub := newTestHub(t)
	voter := newTestClient(hub, 1)
	hub.Register(voter)
	drainSnapshot(t, voter, 2)

	// The snapshot (ack plus two tutors) fills this buffer exactly, so the
	// next broadcast finds it full.
	slow := &Client{
		id:   "slow-client",
		hub:  hub,
		send: make(chan Event, 3),
	}
	hub.Register(slow)

	hub.CastVote(voter, 1, store.ReactionLike)

	// The healthy client still gets the broadcast.
	ev := recv(t, voter)
	assert.Equal(t, EventReactionUpdate, ev.Event)
	assert.Equal(t, ReactionUpdate{TutorID: 1, Likes: 1}, ev.Data)

	// The laggard keeps its buffered snapshot but its channel is closed
	// and the broadcast never arrives.
	for i := 0; i < 3; i++ {
		recv(t, slow)
	}
	_, ok := <-slow.send
	assert.False(t, ok)

	// A later vote still fans out normally.
	other := newTestClient(hub, 2)
	hub.Register(other)
	drainSnapshot(t, other, 2)
	hub.CastVote(other, 2, store.ReactionLike)
	assert.Equal(t, ReactionUpdate{TutorID: 2, Likes: 1}, recv(t, voter).Data)
}

// TestHubShutdownUnblocksCallers: once the dispatcher has stopped, teardown
// paths that call back into the hub must return instead of blocking forever.
func TestHubShutdownUnblocksCallers(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir(), []models.Tutor{{ID: 1, Name: "Ivan Ivanov"}})
	require.NoError(t, err)
	hub := NewHub(st)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	c := newTestClient(hub, 1)
	hub.Register(c)
	drainSnapshot(t, c, 1)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	// The client was dropped on shutdown.
	_, ok := <-c.send
	assert.False(t, ok)

	returned := make(chan struct{})
	go func() {
		hub.Unregister(c)
		hub.CastVote(c, 1, store.ReactionLike)
		hub.Register(newTestClient(hub, 2))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("hub calls blocked after shutdown")
	}
}

func TestEventEnvelopeWireFormat(t *testing.T) {
	data, err := json.Marshal(Event{
		Event: EventReactionUpdate,
		Data:  ReactionUpdate{TutorID: 3, Likes: 2, Dislikes: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"event":"reaction_update","data":{"tutor_id":3,"likes":2,"dislikes":1}}`,
		string(data))
}
