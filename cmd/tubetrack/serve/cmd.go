// Package servecmd implements the `tubetrack serve` command.
package servecmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tubetrack/cmd/tubetrack/shared"
	"tubetrack/internal/bot"
	"tubetrack/internal/httpapi"
	"tubetrack/internal/metrics"
	"tubetrack/internal/scraper"
)

// Command implements `tubetrack serve`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the serve command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when a token is configured, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	app, err := c.ctx.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()
	log := app.Log

	m := metrics.New()
	api := httpapi.NewServer(app.Videos, app.Training, app.Pages,
		httpapi.Settings{Theme: app.Config.UI.Theme}, log,
		httpapi.WithMetrics(m, m.Handler()))

	var tg *bot.Handler
	if app.Config.Telegram.Token != "" {
		scr := scraper.NewRodScraper(app.Config.Scraper.Timeout, log)
		tg, err = bot.NewHandler(app.Config.Telegram, app.Videos, app.Training, scr, log)
		if err != nil {
			return err
		}
	} else {
		log.Info("telegram.token not set, bot disabled")
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return api.ListenAndServe(ctx, app.Config.HTTP.Addr)
	})
	if tg != nil {
		g.Go(func() error {
			tg.Start(ctx)
			return nil
		})
	}

	log.Info("TubeTrack is running. Press Ctrl+C to exit.")
	err = g.Wait()
	log.Info("TubeTrack shut down.")
	return err
}
