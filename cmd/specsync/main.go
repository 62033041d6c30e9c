// Command specsync synchronizes Drupal configuration entities from a
// spreadsheet specification.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/specsync/internal/config"
	"github.com/JonMunkholm/specsync/internal/core"
	_ "github.com/JonMunkholm/specsync/internal/core/kinds" // Register all kinds
	"github.com/JonMunkholm/specsync/internal/logging"
	"github.com/JonMunkholm/specsync/internal/web"
)

var dryRun bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "specsync",
		Short:         "Sync Drupal configuration from a spreadsheet specification",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Write to an in-memory store instead of the configured backend")

	var all bool
	syncCmd := &cobra.Command{
		Use:   "sync [kind...]",
		Short: "Sync the given kinds, or every kind with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("name one or more kinds, or pass --all")
			}
			return withService(cmd.Context(), func(ctx context.Context, svc *core.Service) error {
				if all {
					results, err := svc.SyncAll(ctx)
					printResults(cmd.OutOrStdout(), results...)
					if err != nil {
						return errors.New(core.FormatUserError(err))
					}
					return nil
				}
				for _, key := range args {
					result, err := svc.SyncKind(ctx, key)
					if err != nil {
						return errors.New(core.FormatUserError(err))
					}
					printResults(cmd.OutOrStdout(), result)
				}
				return nil
			})
		},
	}
	syncCmd.Flags().BoolVar(&all, "all", false, "Sync every registered kind, then workflows")

	workflowsCmd := &cobra.Command{
		Use:   "workflows",
		Short: "Sync workflow graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *core.Service) error {
				result, err := svc.SyncWorkflows(ctx)
				if err != nil {
					return errors.New(core.FormatUserError(err))
				}
				printResults(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "List registered kinds by group",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printKinds(cmd.OutOrStdout())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP sync API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(syncCmd, workflowsCmd, kindsCmd, serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment, then configures logging.
// Missing configuration is fatal before anything is fetched or written.
func loadConfig() (*config.Config, error) {
	// Overload overwrites existing env vars
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

// withService builds the service for one command and releases its
// resources when fn returns.
func withService(ctx context.Context, fn func(context.Context, *core.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps, err := openDeps(ctx, cfg, dryRun)
	if err != nil {
		return err
	}
	defer deps.Close()

	svc, err := core.NewService(deps.source, deps.store, cfg.SyncConfig())
	if err != nil {
		return err
	}
	return fn(core.ContextWithTrigger(ctx, core.TriggerCLI), svc)
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps, err := openDeps(ctx, cfg, dryRun)
	if err != nil {
		return err
	}
	defer deps.Close()

	svc, err := core.NewService(deps.source, deps.store, cfg.SyncConfig())
	if err != nil {
		return err
	}

	slog.Info("kinds registered", "count", core.KindCount(), "groups", len(core.Groups()))

	server := web.NewServer(svc, cfg)

	go svc.StartScheduler(ctx, cfg.Sync.Interval)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// printResults writes one line per outcome followed by a summary per run.
func printResults(w io.Writer, results ...*core.RunResult) {
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", r.Kind, core.MapReason(r.Error).Message)
		}
		for _, o := range r.Outcomes {
			fmt.Fprintln(w, o.String())
		}
		fmt.Fprintf(w, "%s: %d created, %d updated, %d skipped, %d failed\n",
			r.Kind, r.Created, r.Updated, r.Skipped, r.Failed)
	}
}

func printKinds(w io.Writer) {
	for _, group := range core.Groups() {
		fmt.Fprintln(w, group)
		for _, def := range core.ByGroup(group) {
			fmt.Fprintf(w, "  %-24s %s\n", def.Info.Key, def.Info.Table)
		}
	}
}
