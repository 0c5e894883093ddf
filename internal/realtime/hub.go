package realtime

import (
	"context"
	"errors"
	"log"

	"github.com/tutorhub/backend/internal/store"
)

// User-facing messages for vote failures, unicast to the requester only.
const (
	msgUnauthenticated = "You must be logged in to rate tutors"
	msgInvalidReaction = "Invalid reaction data"
	msgTutorNotFound   = "Tutor not found"
	msgAlreadyVoted    = "You have already rated this tutor"
	msgInternal        = "Failed to process reaction"
)

type voteRequest struct {
	client  *Client
	tutorID int
	kind    string
}

// Hub keeps the live set of connections in sync with the tally store. A
// single dispatcher goroutine owns the registry and processes registrations
// and votes sequentially, so every client observes the same order of
// reaction_update events and snapshots are never interleaved with votes.
type Hub struct {
	store store.TallyStore

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	votes      chan voteRequest
	done       chan struct{}
}

func NewHub(st store.TallyStore) *Hub {
	return &Hub{
		store:      st,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		votes:      make(chan voteRequest),
		done:       make(chan struct{}),
	}
}

// Register adds the connection to the live set and replays the current
// tallies to it. No-op after the dispatcher has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes the connection. Safe to call more than once; a client
// already dropped for lagging is ignored. Must not block after the
// dispatcher has stopped, since connection teardown outlives shutdown.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// CastVote submits a vote request on behalf of a connection. The result is
// delivered over the websocket, not returned.
func (h *Hub) CastVote(c *Client, tutorID int, kind string) {
	select {
	case h.votes <- voteRequest{client: c, tutorID: tutorID, kind: kind}:
	case <-h.done:
	}
}

// Run dispatches until ctx is cancelled. Call it once, in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.sendSnapshot(ctx, c)

		case c := <-h.unregister:
			h.drop(c)

		case v := <-h.votes:
			h.handleVote(ctx, v)

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			close(h.done)
			return
		}
	}
}

// sendSnapshot brings a newly registered connection up to date: an ack,
// then one reaction_update per tutor, unicast.
func (h *Hub) sendSnapshot(ctx context.Context, c *Client) {
	h.unicast(c, Event{Event: EventConnectionSuccess, Data: ConnectionSuccess{Status: "connected"}})

	tallies, err := h.store.GetAllTallies(ctx)
	if err != nil {
		log.Printf("Failed to load tallies for snapshot: %v", err)
		h.unicast(c, Event{Event: EventReactionError, Data: ReactionError{Message: msgInternal}})
		return
	}
	for _, t := range tallies {
		h.unicast(c, Event{Event: EventReactionUpdate, Data: ReactionUpdate{
			TutorID:  t.TutorID,
			Likes:    t.Likes,
			Dislikes: t.Dislikes,
		}})
	}
}

// handleVote authenticates, delegates to the store, and broadcasts the new
// tally on success. Failures go back to the requester only. A panic in the
// store must not take down the dispatcher, so it is converted to a generic
// error event.
func (h *Hub) handleVote(ctx context.Context, v voteRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic handling reaction: %v", r)
			h.unicast(v.client, Event{Event: EventReactionError, Data: ReactionError{Message: msgInternal}})
		}
	}()

	if v.client.userID == 0 {
		h.unicast(v.client, Event{Event: EventReactionError, Data: ReactionError{Message: msgUnauthenticated}})
		return
	}

	tally, err := h.store.CastVote(ctx, v.client.userID, v.tutorID, v.kind)
	if err != nil {
		h.unicast(v.client, Event{Event: EventReactionError, Data: ReactionError{Message: voteErrorMessage(err)}})
		return
	}

	h.broadcast(Event{Event: EventReactionUpdate, Data: ReactionUpdate{
		TutorID:  tally.TutorID,
		Likes:    tally.Likes,
		Dislikes: tally.Dislikes,
	}})
}

func voteErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrAlreadyVoted):
		return msgAlreadyVoted
	case errors.Is(err, store.ErrTutorNotFound):
		return msgTutorNotFound
	case errors.Is(err, store.ErrInvalidReaction):
		return msgInvalidReaction
	default:
		log.Printf("Failed to cast vote: %v", err)
		return msgInternal
	}
}

// broadcast fans an event out to every registered connection. A client whose
// send buffer is full is dropped rather than allowed to stall the others.
func (h *Hub) broadcast(ev Event) {
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			log.Printf("Dropping slow client %s", c.id)
			h.drop(c)
		}
	}
}

func (h *Hub) unicast(c *Client, ev Event) {
	if _, ok := h.clients[c]; !ok {
		// Already dropped; its send channel is closed.
		return
	}
	select {
	case c.send <- ev:
	default:
		log.Printf("Dropping slow client %s", c.id)
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
