package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"notesmarket/dashboard/internal/config"
	"notesmarket/dashboard/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	sessionName string

	app *container.Container
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Admin dashboard for the notesmarket content platform",
	Long: `Manage the category tree, category content, latest updates and
AI generated drafts of the notesmarket platform.

The position in the category tree is kept per session in Redis, so
"categories open" and "categories back" work across invocations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// help and shell completion need no backends
		if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if err := setupLogging(cfg.Log); err != nil {
			return err
		}

		app, err = container.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}

		return app.RestoreSession(cmd.Context(), sessionName)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		defer app.Close()

		return app.SaveSession(cmd.Context(), sessionName)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sessionName, "session", "s", "default", "Session holding the category tree position")

	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(updatesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(toastsCmd)
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if app != nil {
			app.Close()
		}
		stop()
		os.Exit(1)
	}
}
