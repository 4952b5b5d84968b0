package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/five82/shopdesk/internal/app"
	"github.com/five82/shopdesk/internal/notify"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "shopdesk: %s\n", notify.Friendly(err))
		return 1
	}
	return 0
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shopdesk",
		Usage: "terminal storefront and admin console",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "config file path (default ~/.config/shopdesk/config.toml)"},
			&cli.StringFlag{Name: "prefs", Usage: "preferences file path (default ~/.config/shopdesk/prefs.toml)"},
			&cli.IntFlag{Name: "poll", Usage: "home feed refresh interval in seconds"},
		},
		// With no command shopdesk opens the TUI.
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "open the terminal interface",
				Action: runTUI,
			},
			searchCommand(),
			wishlistCommand(),
			loginCommand(),
			{
				Name:   "logout",
				Usage:  "forget the stored session",
				Action: withServices(logout),
			},
			{
				Name:   "whoami",
				Usage:  "show the signed-in account",
				Action: withServices(whoami),
			},
			passwordCommand(),
			adminCommand(),
		},
	}
}

func options(c *cli.Context) app.Options {
	return app.Options{
		ConfigPath: c.String("config"),
		PrefsPath:  c.String("prefs"),
		PollEvery:  c.Int("poll"),
	}
}

func runTUI(c *cli.Context) error {
	return app.Run(c.Context, options(c))
}

// withServices bootstraps the services for a one-shot command. Warnings
// and errors are mirrored to stderr.
func withServices(fn func(c *cli.Context, svc *app.Services) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		opts := options(c)
		opts.Stderr = os.Stderr
		svc, err := app.Bootstrap(opts, nil)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()
		return fn(c, svc)
	}
}
