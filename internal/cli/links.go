package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbweber/homelab/catalog/internal/association"
	"github.com/jbweber/homelab/catalog/internal/repository"
)

func newLinksCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Inspect and reconcile many-to-many links",
	}
	cmd.AddCommand(newLinksListCommand(opts), newLinksSyncCommand(opts))
	return cmd
}

type linkFlags struct {
	relation string
	owner    int64
}

func (f *linkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.relation, "relation", "", "relation name: "+strings.Join(relationNames(), ", "))
	cmd.Flags().Int64Var(&f.owner, "owner", 0, "owner id")
	_ = cmd.MarkFlagRequired("relation")
	_ = cmd.MarkFlagRequired("owner")
}

// service opens the configured database and returns the relationship service
// for the selected relation. The caller closes the returned func.
func (f *linkFlags) service(opts *options) (*association.Service, func(), error) {
	table, ok := repository.LinkTables[f.relation]
	if !ok {
		return nil, nil, fmt.Errorf("unknown relation %q (want one of %s)", f.relation, strings.Join(relationNames(), ", "))
	}
	cfg, logger, err := opts.load()
	if err != nil {
		return nil, nil, err
	}
	ds, err := cfg.InitializeDatabase()
	if err != nil {
		return nil, nil, err
	}
	ds = ds.WithLogger(logger)
	closer := func() {
		_ = ds.Close()
		_ = logger.Sync()
	}
	return association.NewService(table.Relation, repository.NewLinkRepository(ds, table), logger), closer, nil
}

func newLinksListCommand(opts *options) *cobra.Command {
	var f linkFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the ids linked to an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closer, err := f.service(opts)
			if err != nil {
				return err
			}
			defer closer()

			ids, err := svc.LinkedIDs(cmd.Context(), f.owner)
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{"relation": f.relation, "ownerId": f.owner, "ids": nonNil(ids)})
		},
	}
	f.register(cmd)
	return cmd
}

func newLinksSyncCommand(opts *options) *cobra.Command {
	var (
		f        linkFlags
		ids      []int64
		mode     string
		conflict string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile an owner's links against a set of ids",
		Example: `  catalog links sync --relation actor-films --owner 1 --ids 2,3 --mode replace
  catalog links sync --relation film-categories --owner 7 --ids 4 --mode add --conflict reject`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := association.ParseMode(mode)
			if err != nil {
				return err
			}
			p, err := association.ParseConflictPolicy(conflict)
			if err != nil {
				return err
			}
			svc, closer, err := f.service(opts)
			if err != nil {
				return err
			}
			defer closer()

			delta, err := svc.SyncMany(cmd.Context(), f.owner, ids, m, p)
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{
				"relation": f.relation,
				"ownerId":  f.owner,
				"mode":     m.String(),
				"added":    nonNil(delta.Added),
				"removed":  nonNil(delta.Removed),
			})
		},
	}
	f.register(cmd)
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "comma separated related ids")
	cmd.Flags().StringVar(&mode, "mode", "replace", "replace|add|remove")
	cmd.Flags().StringVar(&conflict, "conflict", "ignore", "ignore|reject")
	return cmd
}

func relationNames() []string {
	names := make([]string, 0, len(repository.LinkTables))
	for name := range repository.LinkTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
