package feeds

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"campusvoice/models"

	log "github.com/sirupsen/logrus"
)

// ErrVoteInFlight means the user already has a vote mutation pending for
// this issue. At most one vote mutation per issue may be in flight per
// user; different users voting on the same issue never block each other.
var ErrVoteInFlight = errors.New("vote already in progress for this issue")

type inflightKey struct {
	issueID string
	userID  string
}

type inflightVotes struct {
	mu    sync.Mutex
	votes map[inflightKey]struct{}
}

func newInflightVotes() inflightVotes {
	return inflightVotes{votes: make(map[inflightKey]struct{})}
}

func (v *inflightVotes) begin(issueID, userID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := inflightKey{issueID, userID}
	if _, busy := v.votes[key]; busy {
		return false
	}
	v.votes[key] = struct{}{}
	return true
}

func (v *inflightVotes) end(issueID, userID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.votes, inflightKey{issueID, userID})
}

// HandleVote applies toggle semantics to row and persists the change:
// voting the same type again clears the vote; voting the other type switches
// it in one logical operation. The row's tallies adjust optimistically; on a
// failed persist the tallies are reconciled against the store (or reverted
// exactly if even that fails) so counts never drift.
func (e *Engine) HandleVote(ctx context.Context, row *models.FeedIssue, userID string, voteType models.VoteType) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if !e.inflight.begin(row.ID, userID) {
		return ErrVoteInFlight
	}
	defer e.inflight.end(row.ID, userID)

	prev := row.UserVote

	var next models.VoteType
	if prev == nil || *prev != voteType {
		next = voteType
	}

	applyTally(row, prev, next)
	if next == "" {
		row.UserVote = nil
	} else {
		v := next
		row.UserVote = &v
	}

	if err := e.votes.SetVote(ctx, row.ID, userID, next); err != nil {
		log.WithFields(log.Fields{
			"issueId": row.ID,
			"error":   err,
		}).Error("Error voting")
		e.reconcileTallies(ctx, row, prev, next)
		row.UserVote = prev
		return fmt.Errorf("vote failed: %w", err)
	}

	return nil
}

// applyTally adjusts the row's counters for a vote transition.
func applyTally(row *models.FeedIssue, prev *models.VoteType, next models.VoteType) {
	if prev != nil {
		switch *prev {
		case models.VoteUp:
			row.Upvotes--
		case models.VoteDown:
			row.Downvotes--
		}
	}
	switch next {
	case models.VoteUp:
		row.Upvotes++
	case models.VoteDown:
		row.Downvotes++
	}
}

// reconcileTallies restores authoritative counts after a failed vote
// mutation: first by refetching the issue row, falling back to an exact
// revert of the optimistic adjustment.
func (e *Engine) reconcileTallies(ctx context.Context, row *models.FeedIssue, prev *models.VoteType, next models.VoteType) {
	if fresh, err := e.issues.GetIssue(ctx, row.ID); err == nil {
		row.Upvotes = fresh.Upvotes
		row.Downvotes = fresh.Downvotes
		return
	}

	// Invert the optimistic adjustment
	if prev != nil {
		switch *prev {
		case models.VoteUp:
			row.Upvotes++
		case models.VoteDown:
			row.Downvotes++
		}
	}
	switch next {
	case models.VoteUp:
		row.Upvotes--
	case models.VoteDown:
		row.Downvotes--
	}
}
