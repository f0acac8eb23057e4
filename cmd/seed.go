package cmd

import (
	"fmt"
	"time"

	"campusvoice/auth"
	"campusvoice/config"
	"campusvoice/models"
	"campusvoice/store"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Seed the database with sample issues",
		Description: `Inserts a demo profile and a handful of sample issues across the
		configured schools and categories, and prints a session token that can
		be used as a bearer token against the API. Intended for local
		development only.`,
		Flags: []cli.Flag{
			databaseFlag(),
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file with school and category lists",
				EnvVars: []string{"CAMPUSVOICE_CONFIG"},
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg := config.Default()
			if path := ctx.String("config"); path != "" {
				loaded, err := config.LoadConfig(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if len(cfg.Schools) == 0 || len(cfg.Categories) == 0 {
				return fmt.Errorf("config has no schools or categories to seed from")
			}

			st, err := store.NewStore(ctx.String("database"))
			if err != nil {
				return err
			}
			defer st.Close()

			profile := models.Profile{
				ID:        uuid.New().String(),
				Username:  "demo",
				Firstname: "Demo",
				Lastname:  "Student",
			}
			if err := st.CreateProfile(ctx.Context, profile); err != nil {
				return err
			}

			samples := []struct {
				title       string
				description string
			}{
				{"Broken projector in lecture hall", "The projector in the main lecture hall has been flickering for two weeks."},
				{"Wifi dead zones in the library", "No signal at all on the third floor of the library."},
				{"Cafeteria lines too long", "Lunch lines regularly exceed 30 minutes between classes."},
				{"Elevator out of service", "The only accessible elevator in the science building is down again."},
				{"Printing credits run out too fast", "The default printing quota does not last a full semester."},
			}

			now := time.Now().UTC()
			for i, sample := range samples {
				school := cfg.Schools[i%len(cfg.Schools)]
				category := cfg.Categories[i%len(cfg.Categories)]
				issue := models.Issue{
					ID:          uuid.New().String(),
					Title:       sample.title,
					Description: sample.description,
					School:      school.Code,
					Category:    category.Name,
					Status:      models.StatusOpen,
					CreatedAt:   now.Add(-time.Duration(i) * time.Hour),
					UpdatedAt:   now.Add(-time.Duration(i) * time.Hour),
					AuthorID:    profile.ID,
				}
				if err := st.CreateIssue(ctx.Context, issue); err != nil {
					return err
				}
			}

			session := models.Session{
				Token:     auth.NewToken(),
				UserID:    profile.ID,
				ExpiresAt: now.Add(30 * 24 * time.Hour),
			}
			if err := st.CreateSession(ctx.Context, session); err != nil {
				return err
			}

			fmt.Printf("Seeded %d issues for user %s\n", len(samples), profile.Username)
			fmt.Printf("Session token: %s\n", session.Token)
			return nil
		},
	}
}
