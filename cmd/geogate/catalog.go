package main

import (
	"github.com/spf13/cobra"

	"github.com/ligustah/geogate/internal/catalog"
)

func newCatalogCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List downloadable documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			cat := catalog.Default()
			if cfg.CatalogFile != "" {
				cat, err = catalog.LoadFromFile(cfg.CatalogFile)
				if err != nil {
					return withCode(ExitConfigError, err)
				}
			}

			printCatalog(cmd.OutOrStdout(), cat.Items())
			return nil
		},
	}
}
