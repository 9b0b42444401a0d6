package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/mediatray/internal/config"
	"github.com/listenupapp/mediatray/internal/overrides"
	"github.com/listenupapp/mediatray/internal/store"
	"github.com/listenupapp/mediatray/internal/validation"
)

func newOverridesCommand(ctx *commandContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Manage banner and cover image overrides",
	}
	cmd.PersistentFlags().StringVar(&kind, "kind", string(overrides.KindBanner), "Override kind (banner or cover)")

	adapterFor := func(st *store.Store) (*overrides.Adapter, error) {
		k, err := overrides.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		return overrides.New(st.Bucket(pluginForKind(k)), k), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				adapter, err := adapterFor(st)
				if err != nil {
					return err
				}
				all, err := adapter.All(cmd.Context())
				if err != nil {
					return err
				}
				if *ctx.jsonOut {
					return writeJSON(cmd, all)
				}
				if len(all) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s overrides\n", adapter.Kind())
					return nil
				}
				rows := make([][]string, 0, len(all))
				for _, key := range all.SortedKeys() {
					rows = append(rows, []string{key, all[key]})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "URL"}, rows, []columnAlignment{alignRight, alignLeft}))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <url>",
		Short: "Store an override; an empty url removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntityID(args[0])
			if err != nil {
				return err
			}
			if err := validation.New().Var("url", args[1], "omitempty,imageurl"); err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				adapter, err := adapterFor(st)
				if err != nil {
					return err
				}
				if err := adapter.Set(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s override for %d\n", adapter.Kind(), id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntityID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				adapter, err := adapterFor(st)
				if err != nil {
					return err
				}
				if err := adapter.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s override for %d\n", adapter.Kind(), id)
				return nil
			})
		},
	})

	return cmd
}

func pluginForKind(k overrides.Kind) string {
	if k == overrides.KindCover {
		return config.PluginCoverImages
	}
	return config.PluginBannerImages
}

func parseEntityID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entity id %q: want a positive integer", raw)
	}
	return id, nil
}
