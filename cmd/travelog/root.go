package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgo/travelog/api/internal/config"
	"github.com/forgo/travelog/api/internal/database"
	"github.com/forgo/travelog/api/internal/local"
	"github.com/forgo/travelog/api/internal/remote"
	"github.com/forgo/travelog/api/internal/repository"
)

var (
	// cfg and store are initialized by PersistentPreRunE for every command
	// that touches a backend.
	cfg   *config.Config
	store repository.Store
)

var rootCmd = &cobra.Command{
	Use:   "travelog",
	Short: "Travelog is a travel review storage service",
	Long: `Travelog stores members, places, reviews, posts and wishlists behind
one repository contract, served either by an embedded local engine with
debounced snapshot persistence or by a remote SurrealDB backend.

Configuration comes from environment variables; see STORAGE_BACKEND,
LOCAL_DATA_DIR and the DB_* settings.`,
	PersistentPreRunE: initStore,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// initStore loads configuration and opens the selected backend.
func initStore(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLogging(cfg.Log)

	if cfg.IsLocal() {
		store, err = local.Open(local.Config{
			DataDir:        cfg.Local.DataDir,
			DebounceWindow: cfg.Local.DebounceWindow,
		})
	} else {
		store, err = remote.Open(cmd.Context(), database.Config{
			Host:      cfg.Database.Host,
			Port:      cfg.Database.Port,
			User:      cfg.Database.User,
			Password:  cfg.Database.Password,
			Namespace: cfg.Database.Namespace,
			Database:  cfg.Database.Database,
		})
	}
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	slog.Debug("store opened", slog.String("backend", cfg.Backend))
	return nil
}

// closeStore releases the backend. For the local engine this flushes the
// final snapshot.
func closeStore() error {
	if store == nil {
		return nil
	}
	return store.Close()
}

func initLogging(lc config.LogConfig) {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
