package feeds

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"campusvoice/models"
	"campusvoice/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteCall struct {
	issueID  string
	userID   string
	voteType models.VoteType
}

// fakeBackend implements IssueStore, ProfileStore and VoteStore in memory.
type fakeBackend struct {
	mu sync.Mutex

	issues   []models.Issue
	queryErr error
	queryFn  func(sel models.FilterSelection) ([]models.Issue, error)
	lastSel  models.FilterSelection
	queries  int

	profiles    []models.Profile
	profilesErr error

	votes       map[string]models.VoteType
	votesErr    error
	voteFetches int

	setVoteErr  error
	setVoteGate chan struct{}
	gateIssue   string
	gateUser    string
	setVotes    []voteCall

	issueByID   map[string]models.Issue
	getIssueErr error

	deleted   []string
	deleteErr error

	titles    []models.Issue
	titlesErr error
}

func (f *fakeBackend) QueryIssues(_ context.Context, sel models.FilterSelection) ([]models.Issue, error) {
	f.mu.Lock()
	f.queries++
	f.lastSel = sel
	f.mu.Unlock()
	if f.queryFn != nil {
		return f.queryFn(sel)
	}
	return f.issues, f.queryErr
}

func (f *fakeBackend) GetIssue(_ context.Context, id string) (*models.Issue, error) {
	if f.getIssueErr != nil {
		return nil, f.getIssueErr
	}
	if issue, ok := f.issueByID[id]; ok {
		return &issue, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeBackend) DeleteIssue(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) SearchTitles(_ context.Context, _ string, _ int) ([]models.Issue, error) {
	return f.titles, f.titlesErr
}

func (f *fakeBackend) GetProfiles(_ context.Context, _ []string) ([]models.Profile, error) {
	return f.profiles, f.profilesErr
}

func (f *fakeBackend) GetUserVotes(_ context.Context, _ string, _ []string) (map[string]models.VoteType, error) {
	f.mu.Lock()
	f.voteFetches++
	f.mu.Unlock()
	return f.votes, f.votesErr
}

func (f *fakeBackend) SetVote(_ context.Context, issueID, userID string, voteType models.VoteType) error {
	if f.setVoteGate != nil &&
		(f.gateIssue == "" || f.gateIssue == issueID) &&
		(f.gateUser == "" || f.gateUser == userID) {
		<-f.setVoteGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setVotes = append(f.setVotes, voteCall{issueID, userID, voteType})
	return f.setVoteErr
}

func newTestEngine(fb *fakeBackend) *Engine {
	return NewEngine(fb, fb, fb)
}

func issueAt(id, authorID string, h int) models.Issue {
	return models.Issue{
		ID:        id,
		Title:     "Issue " + id,
		AuthorID:  authorID,
		CreatedAt: time.Date(2025, 3, 1, h, 0, 0, 0, time.UTC),
	}
}

func TestLoadFeedEnrichment(t *testing.T) {
	fb := &fakeBackend{
		issues: []models.Issue{
			issueAt("i1", "alice", 2),
			issueAt("i2", "bob", 1),
			issueAt("i3", "alice", 0),
		},
		profiles: []models.Profile{
			{ID: "alice", Username: "alice"},
		},
		votes: map[string]models.VoteType{
			"i2": models.VoteUp,
		},
	}
	engine := newTestEngine(fb)

	resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{}, "viewer")
	assert.NoError(t, err)
	assert.Len(t, resp.Issues, 3)
	assert.Empty(t, resp.Message)

	// Rows keep the store order and ids
	assert.Equal(t, "i1", resp.Issues[0].ID)
	assert.Equal(t, "i2", resp.Issues[1].ID)

	// Known authors resolve, unknown authors stay nil
	assert.NotNil(t, resp.Issues[0].Author)
	assert.Equal(t, "alice", resp.Issues[0].Author.Username)
	assert.Nil(t, resp.Issues[1].Author)
	assert.NotNil(t, resp.Issues[2].Author)

	// Only the voted row carries a user vote
	assert.Nil(t, resp.Issues[0].UserVote)
	assert.NotNil(t, resp.Issues[1].UserVote)
	assert.Equal(t, models.VoteUp, *resp.Issues[1].UserVote)
}

func TestLoadFeedAuthorDegradation(t *testing.T) {
	fb := &fakeBackend{
		issues:      []models.Issue{issueAt("i1", "alice", 1), issueAt("i2", "bob", 0)},
		profilesErr: errors.New("profiles unavailable"),
		votes:       map[string]models.VoteType{"i1": models.VoteDown},
	}
	engine := newTestEngine(fb)

	resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{}, "viewer")
	assert.NoError(t, err)
	assert.Len(t, resp.Issues, 2)
	for _, row := range resp.Issues {
		assert.Nil(t, row.Author)
	}
	// Vote enrichment still runs
	assert.NotNil(t, resp.Issues[0].UserVote)
}

func TestLoadFeedVoteDegradation(t *testing.T) {
	fb := &fakeBackend{
		issues:   []models.Issue{issueAt("i1", "alice", 0)},
		votesErr: errors.New("votes unavailable"),
	}
	engine := newTestEngine(fb)

	resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{}, "viewer")
	assert.NoError(t, err)
	assert.Len(t, resp.Issues, 1)
	assert.Nil(t, resp.Issues[0].UserVote)
}

func TestLoadFeedAnonymousSkipsVotes(t *testing.T) {
	fb := &fakeBackend{
		issues: []models.Issue{issueAt("i1", "alice", 0)},
	}
	engine := newTestEngine(fb)

	resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{}, "")
	assert.NoError(t, err)
	assert.Nil(t, resp.Issues[0].UserVote)
	assert.Equal(t, 0, fb.voteFetches)
}

func TestLoadFeedErrors(t *testing.T) {
	tests := []struct {
		name     string
		queryErr error
		expected error
	}{
		{
			name:     "missing schema maps to setup required",
			queryErr: fmt.Errorf("query issues: %w", store.ErrMissingSchema),
			expected: ErrSetupRequired,
		},
		{
			name:     "other errors map to retryable load failure",
			queryErr: errors.New("disk I/O error"),
			expected: ErrLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(&fakeBackend{queryErr: tt.queryErr})
			resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{}, "")
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestLoadFeedSearchRanking(t *testing.T) {
	fb := &fakeBackend{
		issues: []models.Issue{
			{ID: "contains", Title: "Library wifi issues", CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "exact", Title: "wifi", CreatedAt: time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)},
			{ID: "prefix", Title: "Wifi down in dorms", CreatedAt: time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)},
		},
	}
	engine := newTestEngine(fb)

	resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{SearchQuery: "wifi"}, "")
	assert.NoError(t, err)

	ids := make([]string, len(resp.Issues))
	for i, row := range resp.Issues {
		ids[i] = row.ID
	}
	assert.Equal(t, []string{"exact", "prefix", "contains"}, ids)
}

func TestLoadFeedSearchRankingTrimsQuery(t *testing.T) {
	fb := &fakeBackend{
		issues: []models.Issue{
			{ID: "contains", Title: "Library wifi issues", CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "exact", Title: "wifi", CreatedAt: time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)},
		},
	}
	engine := newTestEngine(fb)

	// Padding must not defeat scoring: the ranking sees the same trimmed
	// query the store filtered on
	resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{SearchQuery: "  wifi  "}, "")
	assert.NoError(t, err)
	assert.Equal(t, "wifi", fb.lastSel.SearchQuery)

	require.Len(t, resp.Issues, 2)
	assert.Equal(t, "exact", resp.Issues[0].ID)
	assert.Equal(t, "contains", resp.Issues[1].ID)
}

func TestLoadFeedPassesSelectionToStore(t *testing.T) {
	fb := &fakeBackend{}
	engine := newTestEngine(fb)

	sel := models.FilterSelection{
		Schools:     []string{"CCNY", "HUNTER"},
		Categories:  []string{"Facilities"},
		AuthorID:    "alice",
		SearchQuery: "wifi",
	}
	_, err := engine.LoadFeed(context.Background(), sel, "")
	assert.NoError(t, err)
	assert.Equal(t, sel, fb.lastSel)
}

func TestLoadFeedEmptyMessage(t *testing.T) {
	engine := newTestEngine(&fakeBackend{})

	resp, err := engine.LoadFeed(context.Background(), models.FilterSelection{AuthorID: "alice"}, "alice")
	assert.NoError(t, err)
	assert.Empty(t, resp.Issues)
	assert.Equal(t, msgNoAuthored, resp.Message)
}

func TestDeleteIssuePassthrough(t *testing.T) {
	fb := &fakeBackend{}
	engine := newTestEngine(fb)

	assert.NoError(t, engine.DeleteIssue(context.Background(), "i1"))
	assert.Equal(t, []string{"i1"}, fb.deleted)

	fb.deleteErr = store.ErrNotFound
	assert.ErrorIs(t, engine.DeleteIssue(context.Background(), "gone"), store.ErrNotFound)
}

func TestSuggest(t *testing.T) {
	fb := &fakeBackend{
		titles: []models.Issue{
			{ID: "a", Title: "Library wifi issues", CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "b", Title: "wifi", CreatedAt: time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)},
			{ID: "c", Title: "Wifi down in dorms", CreatedAt: time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)},
		},
	}
	engine := newTestEngine(fb)

	suggestions, err := engine.Suggest(context.Background(), "wifi", 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"wifi", "Wifi down in dorms"}, suggestions)
}

func TestSuggestEmptyQuery(t *testing.T) {
	engine := newTestEngine(&fakeBackend{titlesErr: errors.New("should not be called")})

	suggestions, err := engine.Suggest(context.Background(), "", 8)
	assert.NoError(t, err)
	assert.Nil(t, suggestions)
}
