package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaki95/lyrics-relay/config"
	"github.com/jaki95/lyrics-relay/internal/browser"
	"github.com/jaki95/lyrics-relay/internal/notification"
	"github.com/jaki95/lyrics-relay/internal/search"
	"github.com/jaki95/lyrics-relay/internal/selection"
	"github.com/jaki95/lyrics-relay/internal/server"
	"github.com/jaki95/lyrics-relay/internal/service"
	"github.com/jaki95/lyrics-relay/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "lyrics-relay [port]",
		Short: "Search lyrics for the track your player is playing",
		Long: `lyrics-relay listens for "now playing" notifications from a media player,
searches the web for matching lyrics and lets you pick a result to open in
your browser.

Notifications are POSTed as key=value lines:

  artist=Air
  track=Sexy Boy
  playing=true`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			setupLogging(cfg, opts.verbose, cmd.ErrOrStderr())
			if len(args) == 1 {
				cfg.Server.Port = resolvePort(args[0], cfg.Server.Port)
			}

			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to the configuration file (default "+config.DefaultPath()+")")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadOrDefault(config.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// resolvePort returns arg when it is a usable port, fallback otherwise.
func resolvePort(arg, fallback string) string {
	if config.ValidPort(arg) {
		return arg
	}
	slog.Warn("Ignoring invalid port argument", "port", arg, "using", fallback)
	return fallback
}

func setupLogging(cfg *config.Config, verbose bool, w io.Writer) {
	level := slog.Level(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}
	defer store.Close()

	searcher, err := search.NewClient(cfg.Search.BaseURL,
		search.WithMarker(cfg.Search.Marker),
		search.WithUserAgent(cfg.Search.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("failed to create search client: %w", err)
	}

	opener := browser.NewOpener(cfg.Browser.Commands)
	controller := selection.NewController(in, out, store, opener)
	relay := service.NewRelay(notification.NewParser(cfg.Notification.RequireAlbum), searcher, nil, controller)
	srv := server.New(relay)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(cfg.Server.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
		return controller.Close()
	})

	return g.Wait()
}
