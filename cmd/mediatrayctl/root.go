package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/mediatray/internal/config"
	"github.com/listenupapp/mediatray/internal/store"
)

type commandContext struct {
	dataPath *string
	jsonOut  *bool
}

func newRootCommand() *cobra.Command {
	var dataPath string
	var jsonOut bool

	ctx := &commandContext{dataPath: &dataPath, jsonOut: &jsonOut}

	rootCmd := &cobra.Command{
		Use:   "mediatrayctl",
		Short: "Inspect and edit mediatray overrides and settings",
		Long: "mediatrayctl opens the bridge database directly. " +
			"Stop the bridge first: the database allows a single process.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Bridge data directory (default: DATA_PATH or ~/Mediatray/data)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Write JSON instead of a table")

	rootCmd.AddCommand(newOverridesCommand(ctx))
	rootCmd.AddCommand(newSettingsCommand(ctx))

	return rootCmd
}

// withStore opens the database for the duration of fn.
func (c *commandContext) withStore(fn func(*store.Store) error) error {
	var args []string
	if path := strings.TrimSpace(*c.dataPath); path != "" {
		args = append(args, "-data-path", path)
	}
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	st, err := store.New(filepath.Join(cfg.Data.BasePath, "db"), nil)
	if err != nil {
		return fmt.Errorf("open database in %s: %w", cfg.Data.BasePath, err)
	}
	defer st.Close()

	return fn(st)
}
