package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/travelog/api/internal/local"
)

var errNotLocal = errors.New("snapshot commands require STORAGE_BACKEND=local")

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the local engine's durable snapshot slot",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Persist a snapshot now, bypassing the debounce window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, ok := store.(*local.Store)
		if !ok {
			return errNotLocal
		}
		if err := engine.Checkpoint(); err != nil {
			return fmt.Errorf("snapshot save: %w", err)
		}
		fmt.Println("snapshot saved")
		return nil
	},
}

var snapshotResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the snapshot slot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, ok := store.(*local.Store)
		if !ok {
			return errNotLocal
		}
		// Close first: Close flushes a final snapshot, which would repopulate
		// the slot right after the reset.
		if err := engine.Close(); err != nil {
			return fmt.Errorf("snapshot reset: %w", err)
		}
		store = nil
		if err := engine.ResetSnapshot(); err != nil {
			return fmt.Errorf("snapshot reset: %w", err)
		}
		fmt.Println("snapshot slot cleared")
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotResetCmd)
}
