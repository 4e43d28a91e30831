package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCommand creates the serve command.
func NewServeCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.AutoMigrate(ctx); err != nil {
		return logAndReturn(a.Logger, "run migrations", err)
	}
	server, err := a.Server(ctx)
	if err != nil {
		return logAndReturn(a.Logger, "build server", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", zap.String("addr", a.Config.App.Addr()))
		listenErr <- server.Listen(a.Config.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return logAndReturn(a.Logger, "fiber listen", err)
	case <-ctx.Done():
		a.Logger.Info("shutting down")
	}
	return server.Shutdown()
}
