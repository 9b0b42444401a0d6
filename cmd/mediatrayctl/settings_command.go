package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/mediatray/internal/config"
	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/overrides"
	"github.com/listenupapp/mediatray/internal/store"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change spoiler settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored spoiler settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				ds, err := overrides.NewSettings(st.Bucket(config.PluginHideSpoilers)).Load(cmd.Context())
				if err != nil {
					return err
				}
				if *ctx.jsonOut {
					return writeJSON(cmd, ds)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSettings(ds))
				return nil
			})
		},
	})

	var thumbnails, titles, descriptions, skipNext bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Change spoiler settings; unset flags keep their stored value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				settings := overrides.NewSettings(st.Bucket(config.PluginHideSpoilers))
				ds, err := settings.Load(cmd.Context())
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if flags.Changed("hide-thumbnails") {
					ds.HideThumbnails = thumbnails
				}
				if flags.Changed("hide-titles") {
					ds.HideTitles = titles
				}
				if flags.Changed("hide-descriptions") {
					ds.HideDescriptions = descriptions
				}
				if flags.Changed("skip-next-episode") {
					ds.SkipNextEpisode = skipNext
				}
				if err := settings.Save(cmd.Context(), ds); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSettings(ds))
				return nil
			})
		},
	}
	set.Flags().BoolVar(&thumbnails, "hide-thumbnails", false, "Blur episode thumbnails")
	set.Flags().BoolVar(&titles, "hide-titles", false, "Blur episode titles")
	set.Flags().BoolVar(&descriptions, "hide-descriptions", false, "Blur episode descriptions")
	set.Flags().BoolVar(&skipNext, "skip-next-episode", false, "Leave the next unwatched episode visible")
	cmd.AddCommand(set)

	return cmd
}

func renderSettings(ds domain.DisplaySettings) string {
	rows := [][]string{
		{"hideThumbnails", strconv.FormatBool(ds.HideThumbnails)},
		{"hideTitles", strconv.FormatBool(ds.HideTitles)},
		{"hideDescriptions", strconv.FormatBool(ds.HideDescriptions)},
		{"skipNextEpisode", strconv.FormatBool(ds.SkipNextEpisode)},
	}
	return renderTable([]string{"Setting", "Value"}, rows, nil)
}
