package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/storage"
)

// prefsCmd creates the "prefs" subcommand.
func prefsCmd() *cobra.Command {
	var forget bool
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or clear remembered preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runPrefs(cmd.Context(), cmd.OutOrStdout(), cfg, forget)
		},
	}
	cmd.Flags().BoolVar(&forget, "clear", false, "forget the remembered user id and list")
	return cmd
}

func runPrefs(ctx context.Context, out io.Writer, cfg *config.Config, forget bool) error {
	prefs, err := storage.NewPreferences(&cfg.Preferences, setupLogger(cfg, os.Stderr))
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer prefs.Close()

	if forget {
		for _, key := range []string{storage.KeyUserID, storage.KeyTab} {
			if err := prefs.Delete(ctx, key); err != nil {
				return fmt.Errorf("clear %s: %w", key, err)
			}
		}
		fmt.Fprintln(out, "preferences cleared")
		return nil
	}

	all, err := prefs.All(ctx)
	if err != nil {
		return fmt.Errorf("read preferences: %w", err)
	}
	fmt.Fprintf(out, "backend: %s\n", prefs.Name())
	if len(all) == 0 {
		fmt.Fprintln(out, "(nothing remembered)")
		return nil
	}
	for _, key := range []string{storage.KeyUserID, storage.KeyTab} {
		if v, ok := all[key]; ok {
			fmt.Fprintf(out, "%s = %s\n", key, v)
		}
	}
	return nil
}
