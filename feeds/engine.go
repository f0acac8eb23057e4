// Package feeds implements the issue feed query engine: filtered loads,
// author and vote enrichment, relevance ranking and vote handling.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusvoice/models"
	"campusvoice/store"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrSetupRequired means the issue store's tables are missing. The user
	// needs a distinct setup message, not a retry button.
	ErrSetupRequired = errors.New("database tables not set up yet")

	// ErrLoadFailed is a transient load failure, retryable by the user.
	ErrLoadFailed = errors.New("failed to load issues")

	// ErrUnauthenticated means the operation requires a signed-in user.
	ErrUnauthenticated = errors.New("not signed in")
)

// IssueStore is the primary query collaborator.
type IssueStore interface {
	QueryIssues(ctx context.Context, sel models.FilterSelection) ([]models.Issue, error)
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	DeleteIssue(ctx context.Context, id string) error
	SearchTitles(ctx context.Context, q string, limit int) ([]models.Issue, error)
}

// ProfileStore batch-resolves author display identities.
type ProfileStore interface {
	GetProfiles(ctx context.Context, ids []string) ([]models.Profile, error)
}

// VoteStore reads the current user's votes and persists vote changes.
type VoteStore interface {
	GetUserVotes(ctx context.Context, userID string, issueIDs []string) (map[string]models.VoteType, error)
	SetVote(ctx context.Context, issueID, userID string, voteType models.VoteType) error
}

// Engine produces ordered, enriched issue feeds and handles issue deletion
// and voting. It is safe for concurrent use.
type Engine struct {
	issues   IssueStore
	profiles ProfileStore
	votes    VoteStore

	inflight inflightVotes
}

func NewEngine(issues IssueStore, profiles ProfileStore, votes VoteStore) *Engine {
	return &Engine{
		issues:   issues,
		profiles: profiles,
		votes:    votes,
		inflight: newInflightVotes(),
	}
}

// LoadFeed returns the ordered list of issues matching the filter selection,
// enriched with author profiles and, when currentUserID is set, the user's
// own votes. Enrichment failures degrade to unenriched rows rather than
// failing the load. The operation has no side effects and is safe to repeat.
func (e *Engine) LoadFeed(ctx context.Context, sel models.FilterSelection, currentUserID string) (*models.FeedResponse, error) {
	sel.SearchQuery = strings.TrimSpace(sel.SearchQuery)

	issues, err := e.issues.QueryIssues(ctx, sel)
	if err != nil {
		if errors.Is(err, store.ErrMissingSchema) {
			return nil, fmt.Errorf("%w: %v", ErrSetupRequired, err)
		}
		log.WithFields(log.Fields{"error": err}).Error("Error loading feed")
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	rows := make([]models.FeedIssue, len(issues))
	for i, issue := range issues {
		rows[i] = models.FeedIssue{Issue: issue}
	}

	e.enrichAuthors(ctx, rows)
	e.enrichVotes(ctx, rows, currentUserID)

	if sel.HasSearch() {
		rankByRelevance(rows, sel.SearchQuery)
	}

	resp := &models.FeedResponse{Issues: rows}
	if len(rows) == 0 {
		resp.Message = EmptyMessage(sel)
	}
	return resp, nil
}

// enrichAuthors merges author profiles into the rows by id. A profile fetch
// failure leaves every author unset.
func (e *Engine) enrichAuthors(ctx context.Context, rows []models.FeedIssue) {
	if len(rows) == 0 {
		return
	}

	authorIDs := lo.Uniq(lo.Map(rows, func(row models.FeedIssue, _ int) string {
		return row.AuthorID
	}))

	profiles, err := e.profiles.GetProfiles(ctx, authorIDs)
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Could not fetch author info")
		return
	}

	byID := lo.SliceToMap(profiles, func(p models.Profile) (string, models.Profile) {
		return p.ID, p
	})
	for i := range rows {
		if p, ok := byID[rows[i].AuthorID]; ok {
			profile := p
			rows[i].Author = &profile
		}
	}
}

// enrichVotes merges the current user's votes into the rows. Rows without a
// matching vote keep a nil UserVote. A vote fetch failure leaves all rows
// unannotated.
func (e *Engine) enrichVotes(ctx context.Context, rows []models.FeedIssue, currentUserID string) {
	if currentUserID == "" || len(rows) == 0 {
		return
	}

	issueIDs := lo.Map(rows, func(row models.FeedIssue, _ int) string {
		return row.ID
	})

	votes, err := e.votes.GetUserVotes(ctx, currentUserID, issueIDs)
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Could not fetch votes")
		return
	}

	for i := range rows {
		if vote, ok := votes[rows[i].ID]; ok {
			v := vote
			rows[i].UserVote = &v
		}
	}
}

// DeleteIssue removes the issue from the store. Authorization is the
// caller's concern; the store reports store.ErrNotFound for unknown ids.
func (e *Engine) DeleteIssue(ctx context.Context, issueID string) error {
	return e.issues.DeleteIssue(ctx, issueID)
}

// Suggest returns up to limit issue titles matching the query, ordered by
// relevance. An empty query yields no suggestions.
func (e *Engine) Suggest(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 8
	}

	issues, err := e.issues.SearchTitles(ctx, q, 0)
	if err != nil {
		if errors.Is(err, store.ErrMissingSchema) {
			return nil, fmt.Errorf("%w: %v", ErrSetupRequired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	rows := lo.Map(issues, func(issue models.Issue, _ int) models.FeedIssue {
		return models.FeedIssue{Issue: issue}
	})
	rankByRelevance(rows, q)

	titles := lo.Map(rows, func(row models.FeedIssue, _ int) string {
		return row.Title
	})
	if len(titles) > limit {
		titles = titles[:limit]
	}
	return titles, nil
}
