package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligustah/geogate/internal/catalog"
	"github.com/ligustah/geogate/internal/portal"
	"github.com/ligustah/geogate/internal/workflow"
)

func newDownloadCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download <id>",
		Short: "Verify location and download one document",
		Long: `Verify the current location, record it in the audit log and save an
official copy of the document into the output bucket.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, g, func(p *portal.Portal) (*workflow.Workflow, error) {
				w, err := p.Workflow(args[0])
				if errors.Is(err, catalog.ErrUnknownItem) {
					return nil, withCode(ExitInvalidArgs, err)
				}
				return w, err
			})
		},
	}
}

func newEmergencyCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "emergency",
		Short: "Direct download of the primary document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkflow(cmd, g, func(p *portal.Portal) (*workflow.Workflow, error) {
				return p.EmergencyWorkflow(), nil
			})
		},
	}
}

// runWorkflow runs one workflow to its terminal state.
func runWorkflow(cmd *cobra.Command, g *globalOptions, pick func(*portal.Portal) (*workflow.Workflow, error)) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	a, err := openApp(cmd.Context(), cfg, cmd.ErrOrStderr(), func(tr portal.Transition) {
		if !tr.To.Terminal() && tr.To != workflow.Idle {
			printTransition(out, tr)
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	w, err := pick(a.portal)
	if err != nil {
		return err
	}

	snap, err := w.Run(cmd.Context())
	if err != nil {
		return withCode(ExitGeneralError, err)
	}

	for drained := false; !drained; {
		select {
		case c := <-a.portal.Captures():
			printCapture(out, a.tag, c)
		default:
			drained = true
		}
	}

	if snap.State != workflow.Success {
		return withCode(ExitVerificationFailed, errors.New(snap.Message))
	}
	fmt.Fprintf(out, "[geogate] Saved %s\n", snap.Saved)
	return nil
}
