package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formrows/internal/server"
	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/session"
	"github.com/goliatone/go-formrows/pkg/theme"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the edit pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			if addr != "" {
				app.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, app, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload layout files when they change")
	return cmd
}

func runServe(ctx context.Context, app *appContext, watch bool) error {
	renderer, err := vanilla.New()
	if err != nil {
		return err
	}
	sessions := session.NewManager(renderer, app.catalog,
		session.WithTTL(app.cfg.Session.TTL),
		session.WithEventHook(server.EventLogger(app.log)),
	)

	handler, err := server.NewHandler(server.HandlerConfig{
		Sessions:     sessions,
		Selector:     theme.DefaultSelector(),
		ThemeName:    app.cfg.Theme.Name,
		SystemDark:   app.cfg.Theme.SystemDark,
		CookieMaxAge: app.cfg.Theme.CookieMaxAge,
		Logger:       app.log,
	})
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.New(app.cfg.Server, handler, app.log).ListenAndServe(ctx)
	})
	group.Go(func() error {
		sessions.Run(ctx, app.cfg.Session.PruneInterval)
		return nil
	})
	if watch && len(app.cfg.Layouts) > 0 {
		group.Go(func() error {
			return layout.Watch(ctx, app.catalog, app.cfg.Layouts, func(ids []string, err error) {
				if err != nil {
					app.log.Error(err, "layout reload failed")
					return
				}
				app.log.Zerolog().Info().Strs("forms", ids).Msg("layouts reloaded")
			})
		})
	}
	return group.Wait()
}
