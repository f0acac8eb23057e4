package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"campusvoice/auth"
	"campusvoice/config"
	"campusvoice/feeds"
	"campusvoice/server"
	"campusvoice/store"

	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the CampusVoice API",
		Description: `Starts the CampusVoice HTTP server.

Serves the issue feed, search suggestions, votes, comments and issue
management endpoints backed by the SQLite database. Run migrations first.`,
		Flags: []cli.Flag{
			databaseFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"CAMPUSVOICE_PORT"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file with school and category lists",
				EnvVars: []string{"CAMPUSVOICE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "cors-origins",
				Usage:   "Comma separated list of allowed CORS origins",
				EnvVars: []string{"CAMPUSVOICE_CORS_ORIGINS"},
			},
		},
		Action: func(ctx *cli.Context) error {
			fmt.Println("Starting campusvoice...")

			cfg := config.Default()
			if path := ctx.String("config"); path != "" {
				loaded, err := config.LoadConfig(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			st, err := store.NewStore(ctx.String("database"))
			if err != nil {
				return err
			}
			defer st.Close()

			engine := feeds.NewEngine(st, st, st)
			provider := auth.NewProvider(st, st)

			app := server.Server(&server.ServerConfig{
				Engine:       engine,
				Store:        st,
				Auth:         provider,
				Cfg:          cfg,
				AllowOrigins: ctx.String("cors-origins"),
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				app.ShutdownWithTimeout(60 * time.Second)
			}()

			fmt.Println("Starting server...")
			if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
				return err
			}

			fmt.Println("Done!")
			return nil
		},
	}
}
