package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mandata/internal/platform/config"
	id "mandata/pkg/domain"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List syncable sources and whether the catalog configures them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			catalog, err := config.LoadCatalog(cfg.SourcesFile)
			if err != nil {
				return err
			}
			for _, src := range id.Sources() {
				state := "not configured"
				if _, err := catalog.Feed(src.String()); err == nil {
					state = "configured"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", src, state)
			}
			return nil
		},
	}
}
