package models

import (
	"strings"
	"time"
)

// IssueStatus is the lifecycle state of a reported issue.
type IssueStatus string

const (
	StatusOpen       IssueStatus = "open"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
	StatusClosed     IssueStatus = "closed"
)

// ValidStatus reports whether s is one of the four issue statuses.
func ValidStatus(s IssueStatus) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// VoteType is the kind of vote a user has cast on an issue.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// Issue is a reported campus problem.
type Issue struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	School      string      `json:"school"`
	Category    string      `json:"category"`
	Status      IssueStatus `json:"status"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Upvotes     int64       `json:"upvotes"`
	Downvotes   int64       `json:"downvotes"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	AuthorID    string      `json:"authorId"`
}

// Profile is the denormalized display identity for an issue or comment author.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
}

// DisplayName returns the username if set, otherwise first and last name,
// otherwise "Anonymous".
func (p *Profile) DisplayName() string {
	if p == nil {
		return "Anonymous"
	}
	if p.Username != "" {
		return p.Username
	}
	name := p.Firstname
	if p.Lastname != "" {
		if name != "" {
			name += " "
		}
		name += p.Lastname
	}
	if name == "" {
		return "Anonymous"
	}
	return name
}

// Vote is a single user's vote on a single issue. At most one row exists per
// (issue, user) pair.
type Vote struct {
	IssueID  string   `json:"issueId"`
	UserID   string   `json:"userId"`
	VoteType VoteType `json:"voteType"`
}

// Comment is a reply on an issue.
type Comment struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issueId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    *Profile  `json:"author,omitempty"`
}

// FeedIssue is an Issue enriched with author display info and the requesting
// user's own vote. It exists only in memory and is recomputed on every load.
type FeedIssue struct {
	Issue
	Author   *Profile  `json:"author,omitempty"`
	UserVote *VoteType `json:"userVote,omitempty"`
}

// FeedResponse is the wire shape of a feed load.
type FeedResponse struct {
	Issues  []FeedIssue `json:"issues"`
	Message string      `json:"message,omitempty"`
}

// FilterSelection is the ephemeral set of feed filters chosen by a user. It
// is never persisted; it is passed into the feed engine on every load.
type FilterSelection struct {
	Schools     []string `json:"schools,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	AuthorID    string   `json:"authorId,omitempty"`
	SearchQuery string   `json:"searchQuery,omitempty"`
}

// HasSearch reports whether a non-blank free-text query is active.
func (f FilterSelection) HasSearch() bool {
	return strings.TrimSpace(f.SearchQuery) != ""
}

// Session maps an opaque token to an authenticated user.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
