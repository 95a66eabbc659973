package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"mandata/internal/reconcile"
	id "mandata/pkg/domain"
)

func newSyncCmd() *cobra.Command {
	var force, dryRun bool
	cmd := &cobra.Command{
		Use:   "sync [source...]",
		Short: "Run one sync pass for the named sources (or all of them)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), args, reconcile.Options{Force: force, DryRun: dryRun})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "revisit items behind the cursor")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute counts without writing")
	return cmd
}

func runSync(ctx context.Context, args []string, opts reconcile.Options) error {
	var sources []id.Source
	if len(args) == 0 {
		sources = id.Sources()
	} else {
		for _, arg := range args {
			src, err := id.ParseSource(arg)
			if err != nil {
				if hint := closestSource(arg); hint != "" {
					return fmt.Errorf("%w (did you mean %q?)", err, hint)
				}
				return err
			}
			sources = append(sources, src)
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	results := a.syncs.RunMany(ctx, sources, opts)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failed := 0
	for _, src := range sources {
		for _, summary := range results[src] {
			if !summary.Success {
				failed++
			}
			if err := enc.Encode(summary); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d sync run(s) failed", failed)
	}
	return nil
}

// closestSource suggests the best-matching source name for a typo, or ""
// when nothing is close enough to be helpful.
func closestSource(arg string) string {
	best, bestDist := "", 3
	for _, src := range id.Sources() {
		if d := fuzzy.LevenshteinDistance(arg, src.String()); d < bestDist {
			best, bestDist = src.String(), d
		}
	}
	return best
}
