package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newLogsCmd(g *globalOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the location audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), cfg, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer a.close()

			entries := a.portal.Logs()
			if limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			printLogs(cmd.OutOrStdout(), a.tag, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show only the newest n entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
