package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petpalfinder/backend/internal/config"
	"github.com/petpalfinder/backend/internal/db"
	"github.com/petpalfinder/backend/internal/handlers"
	"github.com/petpalfinder/backend/internal/httpserver"
	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/middleware"
)

// Run bootstraps the PetPal backend application.
func Run(ctx context.Context, args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "petpal",
		Short: "Adoptable pet search backend",
		Long: `PetPal searches adoptable animals near a location, pages through the
results, and places them on a map.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newSearchCommand(),
		newMigrateCommand(),
		newExportCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.handlerDeps(cfg))

	handler := middleware.RequestLogger(logger)(mux)

	// Fan-out searches may wait on one upstream call per type.
	srv := httpserver.New(cfg.AppPort, handler, 2*cfg.HTTPTimeout+httpserver.DefaultWriteTimeout)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Apply or list database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command = args[0]
			}
			return runMigrations(cmd, command)
		},
	}
}

func runMigrations(cmd *cobra.Command, command string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("PETPAL_DATABASE_URL is required for migrations")
	}

	ctx := cmd.Context()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator := db.NewMigrator(pool, cfg.MigrationDir)
	out := cmd.OutOrStdout()

	switch command {
	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			mark := " "
			if s.Applied {
				mark = "x"
			}
			fmt.Fprintf(out, "[%s] %s\n", mark, s.Name)
		}
		return nil
	default:
		applied, err := migrator.Up(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "no migrations to apply")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(out, "applied migration %s\n", name)
		}
		return nil
	}
}
