// Package store owns tutor tallies and vote records. All counter mutations
// go through a TallyStore so the one-reaction-per-(user, tutor) invariant is
// enforced at the storage layer, not by callers.
package store

import "context"

// Reaction kinds accepted by CastVote.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Tally is a tutor's current like/dislike counts.
type Tally struct {
	TutorID  int `json:"tutor_id"`
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// TallyStore is the authoritative owner of tallies and vote records.
//
// CastVote applies the vote record and the counter increment as one atomic
// unit: a second vote by the same user for the same tutor fails with
// ErrAlreadyVoted and leaves counters untouched, even under concurrent
// attempts. Successful votes are durable before CastVote returns.
type TallyStore interface {
	// GetAllTallies returns a snapshot of every tutor's counts, ordered by
	// tutor ID.
	GetAllTallies(ctx context.Context) ([]Tally, error)

	// CastVote records a reaction and returns the tutor's new tally.
	CastVote(ctx context.Context, userID, tutorID int, kind string) (Tally, error)
}
