package cmd

import (
	"fmt"
	"time"

	"campusvoice/store"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/choose"
	"github.com/urfave/cli/v2"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing old closed issues.

		Removes closed issues whose last update is older than the retention
		window, together with their votes and comments, and clears expired
		sessions. This keeps the database size down and the feed fresh.`,
		Flags: []cli.Flag{
			databaseFlag(),
			&cli.IntFlag{
				Name:    "retention-days",
				Value:   90,
				Usage:   "Remove closed issues not updated for this many days",
				EnvVars: []string{"CAMPUSVOICE_RETENTION_DAYS"},
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			days := ctx.Int("retention-days")
			fmt.Println("Database configured: ", database)

			if !ctx.Bool("yes") {
				answer, err := prompt.New().
					Ask(fmt.Sprintf("Remove closed issues older than %d days?", days)).
					Choose([]string{"Yes", "No"}, choose.WithHelp(true))
				if err != nil {
					return err
				}
				if answer != "Yes" {
					fmt.Println("Aborted")
					return nil
				}
			}

			st, err := store.NewStore(database)
			if err != nil {
				return err
			}
			defer st.Close()

			removed, err := st.Tidy(ctx.Context, time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}

			fmt.Printf("Removed %d issues\n", removed)
			return nil
		},
	}
}
