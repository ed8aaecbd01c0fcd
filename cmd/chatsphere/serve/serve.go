package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/cmd/chatsphere/cliconfig"
	"github.com/papercomputeco/chatsphere/pkg/app"
	"github.com/papercomputeco/chatsphere/pkg/logger"
	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/server"
)

const serveLongDesc string = `Serve the ChatSphere chat page.

Starts a web server with a single chat page: a theme toggle, a reset
control, an optional speech control and the conversation transcript.
A JSON API over the same session is served under /api.

Examples:
  chatsphere serve
  chatsphere serve --listen :8080 --backend hosted`

const serveShortDesc string = "Serve the web chat page"

// shutdownTimeout bounds how long in-flight turns may finish on exit.
const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	listen string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default from config, :8501)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := cliconfig.Load(cmd)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.UI.Listen = c.listen
	}

	log := logger.NewLogger(cfg.Log.Debug)
	defer func() { _ = log.Sync() }()

	deps, err := app.Build(cfg, log)
	if err != nil {
		return err
	}

	srv, err := server.New(
		server.Config{ListenAddr: cfg.UI.Listen},
		session.NewHolder(cfg.Theme()),
		deps.Inputs,
		log,
	)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down chat server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
	return nil
}
