package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "campusvoice",
		Usage: "A student issue reporting feed for CUNY campuses",
		Description: `CampusVoice lets students report campus issues tagged by
		school and category, vote and comment on them, and browse a
		filtered, searchable feed.

		Issues are stored in an SQLite database and served over an
		HTTP API. Free-text searches are ranked by title relevance,
		everything else by recency.

		Flags can generally be set via environment variables, e.g.:

		--database => CAMPUSVOICE_DATABASE=campusvoice.db
		--port => CAMPUSVOICE_PORT=3000
		`,
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
			seedCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Value:   "campusvoice.db",
		Usage:   "SQLite database file location",
		EnvVars: []string{"CAMPUSVOICE_DATABASE"},
	}
}
