package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"campusvoice/feeds"
	"campusvoice/models"
	"campusvoice/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

func registerRoutes(app *fiber.App, cfg *ServerConfig) {
	api := app.Group("/api")

	api.Get("/feed", handleFeed(cfg))
	api.Get("/search/suggestions", handleSuggestions(cfg))

	api.Post("/issues", handleCreateIssue(cfg))
	api.Get("/issues/:id", handleGetIssue(cfg))
	api.Patch("/issues/:id/status", handleChangeStatus(cfg))
	api.Delete("/issues/:id", handleDeleteIssue(cfg))
	api.Put("/issues/:id/vote", handleVote(cfg))

	api.Get("/issues/:id/comments", handleListComments(cfg))
	api.Post("/issues/:id/comments", handleCreateComment(cfg))

	api.Post("/auth/signout", handleSignOut(cfg))
}

func currentProfile(c *fiber.Ctx, cfg *ServerConfig) *models.Profile {
	profile, err := cfg.Auth.Current(c.Context(), bearerToken(c))
	if err != nil {
		// A broken identity lookup must not take down reads; treat as
		// anonymous and let mutations fail their auth checks
		log.WithFields(log.Fields{"error": err}).Warn("Could not resolve identity")
		return nil
	}
	return profile
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func handleFeed(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sel := models.FilterSelection{
			Schools:     splitCSV(c.Query("schools")),
			Categories:  splitCSV(c.Query("categories")),
			AuthorID:    c.Query("author"),
			SearchQuery: strings.TrimSpace(c.Query("query")),
		}

		userID := ""
		if user := currentProfile(c, cfg); user != nil {
			userID = user.ID
		}

		log.WithFields(log.Fields{
			"schools":    sel.Schools,
			"categories": sel.Categories,
			"author":     sel.AuthorID,
			"search":     sel.SearchQuery,
		}).Info("Load feed")

		resp, err := cfg.Engine.LoadFeed(c.Context(), sel, userID)
		if err != nil {
			if errors.Is(err, feeds.ErrSetupRequired) {
				feedLoads.WithLabelValues("setup_required").Inc()
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error":         "Database tables not set up yet. Please run migrations.",
					"setupRequired": true,
				})
			}
			feedLoads.WithLabelValues("error").Inc()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":     "Failed to load issues",
				"retryable": true,
			})
		}

		feedLoads.WithLabelValues("ok").Inc()
		if resp.Issues == nil {
			resp.Issues = []models.FeedIssue{}
		}
		return c.JSON(resp)
	}
}

func handleSuggestions(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("query"))
		limit, err := strconv.Atoi(c.Query("limit", "8"))
		if err != nil || limit < 1 || limit > 25 {
			limit = 8
		}

		titles, err := cfg.Engine.Suggest(c.Context(), q, limit)
		if err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to load suggestions")
		}
		if titles == nil {
			titles = []string{}
		}
		return c.JSON(fiber.Map{"suggestions": titles})
	}
}

type createIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	School      string `json:"school"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
}

func handleCreateIssue(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentProfile(c, cfg)
		if user == nil {
			return errorJSON(c, fiber.StatusUnauthorized, "You must be logged in to report an issue")
		}

		var req createIssueRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}

		req.Title = strings.TrimSpace(req.Title)
		req.Description = strings.TrimSpace(req.Description)
		if req.Title == "" || req.Description == "" || req.School == "" || req.Category == "" {
			return errorJSON(c, fiber.StatusBadRequest, "Please fill in all required fields")
		}
		if !cfg.Cfg.HasSchool(req.School) {
			return errorJSON(c, fiber.StatusBadRequest, "Unknown school")
		}
		if !cfg.Cfg.HasCategory(req.Category) {
			return errorJSON(c, fiber.StatusBadRequest, "Unknown category")
		}

		now := time.Now().UTC()
		issue := models.Issue{
			ID:          uuid.New().String(),
			Title:       req.Title,
			Description: req.Description,
			School:      req.School,
			Category:    req.Category,
			Status:      models.StatusOpen,
			ImageURL:    req.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
			AuthorID:    user.ID,
		}

		if err := cfg.Store.CreateIssue(c.Context(), issue); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to create issue. Please try again.")
		}
		return c.Status(fiber.StatusCreated).JSON(issue)
	}
}

func handleGetIssue(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		issue, err := cfg.Store.GetIssue(c.Context(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Issue not found")
		}
		if err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to load issue")
		}

		row := models.FeedIssue{Issue: *issue}

		// Author and vote enrichment degrade the same way the feed does
		if profiles, err := cfg.Store.GetProfiles(c.Context(), []string{issue.AuthorID}); err == nil && len(profiles) > 0 {
			row.Author = &profiles[0]
		}
		if user := currentProfile(c, cfg); user != nil {
			if votes, err := cfg.Store.GetUserVotes(c.Context(), user.ID, []string{issue.ID}); err == nil {
				if vote, ok := votes[issue.ID]; ok {
					row.UserVote = &vote
				}
			}
		}

		return c.JSON(row)
	}
}

type changeStatusRequest struct {
	Status models.IssueStatus `json:"status"`
}

func handleChangeStatus(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentProfile(c, cfg)
		if user == nil {
			return errorJSON(c, fiber.StatusUnauthorized, "You must be logged in to change status")
		}

		var req changeStatusRequest
		if err := c.BodyParser(&req); err != nil || !models.ValidStatus(req.Status) {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid status")
		}

		issue, err := cfg.Store.GetIssue(c.Context(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Issue not found")
		}
		if err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to load issue")
		}
		if issue.AuthorID != user.ID {
			return errorJSON(c, fiber.StatusForbidden, "Only the author can change the status")
		}

		if err := cfg.Store.UpdateStatus(c.Context(), issue.ID, req.Status); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to change status")
		}
		return c.JSON(fiber.Map{"status": req.Status})
	}
}

func handleDeleteIssue(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentProfile(c, cfg)
		if user == nil {
			return errorJSON(c, fiber.StatusUnauthorized, "You must be logged in to delete an issue")
		}

		issue, err := cfg.Store.GetIssue(c.Context(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			issueDeletes.WithLabelValues("missing").Inc()
			return errorJSON(c, fiber.StatusNotFound, "Issue not found")
		}
		if err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to load issue")
		}
		if issue.AuthorID != user.ID {
			return errorJSON(c, fiber.StatusForbidden, "Only the author can delete this issue")
		}

		if err := cfg.Engine.DeleteIssue(c.Context(), issue.ID); err != nil {
			issueDeletes.WithLabelValues("error").Inc()
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete issue")
		}
		issueDeletes.WithLabelValues("ok").Inc()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type voteRequest struct {
	VoteType models.VoteType `json:"voteType"`
}

func handleVote(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentProfile(c, cfg)
		if user == nil {
			return errorJSON(c, fiber.StatusUnauthorized, "You must be logged in to vote")
		}

		var req voteRequest
		if err := c.BodyParser(&req); err != nil ||
			(req.VoteType != models.VoteUp && req.VoteType != models.VoteDown) {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid vote")
		}

		issue, err := cfg.Store.GetIssue(c.Context(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Issue not found")
		}
		if err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to load issue")
		}

		row := models.FeedIssue{Issue: *issue}
		if votes, err := cfg.Store.GetUserVotes(c.Context(), user.ID, []string{issue.ID}); err == nil {
			if vote, ok := votes[issue.ID]; ok {
				row.UserVote = &vote
			}
		}

		err = cfg.Engine.HandleVote(c.Context(), &row, user.ID, req.VoteType)
		if errors.Is(err, feeds.ErrVoteInFlight) {
			votesTotal.WithLabelValues("in_flight").Inc()
			return errorJSON(c, fiber.StatusConflict, "A vote for this issue is already in progress")
		}
		if err != nil {
			votesTotal.WithLabelValues("error").Inc()
			return errorJSON(c, fiber.StatusInternalServerError, "Vote failed. Please try again.")
		}

		votesTotal.WithLabelValues("ok").Inc()
		return c.JSON(row)
	}
}

func handleListComments(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		comments, err := cfg.Store.ListComments(c.Context(), c.Params("id"))
		if errors.Is(err, store.ErrMissingSchema) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":         "Comments are not available yet. Please set up the database table.",
				"setupRequired": true,
			})
		}
		if err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to load comments")
		}

		// Author enrichment degrades like the feed's
		authorIDs := lo.Uniq(lo.FilterMap(comments, func(cm models.Comment, _ int) (string, bool) {
			return cm.AuthorID, cm.AuthorID != ""
		}))
		if len(authorIDs) > 0 {
			if profiles, err := cfg.Store.GetProfiles(c.Context(), authorIDs); err == nil {
				byID := lo.SliceToMap(profiles, func(p models.Profile) (string, models.Profile) {
					return p.ID, p
				})
				for i := range comments {
					if p, ok := byID[comments[i].AuthorID]; ok {
						profile := p
						comments[i].Author = &profile
					}
				}
			} else {
				log.WithFields(log.Fields{"error": err}).Warn("Could not fetch comment authors")
			}
		}

		if comments == nil {
			comments = []models.Comment{}
		}
		return c.JSON(fiber.Map{"comments": comments})
	}
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func handleCreateComment(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentProfile(c, cfg)
		if user == nil {
			return errorJSON(c, fiber.StatusUnauthorized, "You must be logged in to comment.")
		}

		var req createCommentRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
		content := strings.TrimSpace(req.Content)
		if content == "" {
			return errorJSON(c, fiber.StatusBadRequest, "Comment cannot be empty")
		}

		if _, err := cfg.Store.GetIssue(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errorJSON(c, fiber.StatusNotFound, "Issue not found")
			}
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to load issue")
		}

		comment := models.Comment{
			ID:        uuid.New().String(),
			IssueID:   c.Params("id"),
			AuthorID:  user.ID,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
		if err := cfg.Store.CreateComment(c.Context(), comment); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Unable to submit your comment right now. Please try again later.")
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	}
}

func handleSignOut(cfg *ServerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := cfg.Auth.SignOut(c.Context(), bearerToken(c)); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to sign out")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
