package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"

	"github.com/ligustah/geogate/internal/auditlog"
	"github.com/ligustah/geogate/internal/catalog"
	"github.com/ligustah/geogate/internal/locale"
	"github.com/ligustah/geogate/internal/portal"
	"github.com/ligustah/geogate/internal/workflow"
)

func printCatalog(w io.Writer, items []catalog.Item) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tDATE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, it.SizeLabel, it.DateLabel)
	}
	tw.Flush()
}

// printLogs renders the audit log view.
func printLogs(w io.Writer, tag language.Tag, entries []auditlog.Entry) {
	fmt.Fprintf(w, "%s\n", locale.Text(tag, locale.AuditLogTitle))
	fmt.Fprintf(w, "Geo-Tagging Compliance Audit Trail | Total Records: %d\n\n", len(entries))

	if len(entries) == 0 {
		fmt.Fprintln(w, "No location data captured yet")
		fmt.Fprintln(w, "Initiate a document download to generate audit logs.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tACTION CONTEXT\tCOORDINATES\tSTATUS\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%.6f, %.6f\tVerified\t%s\n",
			e.Timestamp, e.Action, e.Latitude, e.Longitude, e.ID)
	}
	tw.Flush()
	fmt.Fprintln(w, "\nCONFIDENTIAL: This record is property of the Digital Compliance Authority.")
}

// printCapture renders the capture notice.
func printCapture(w io.Writer, tag language.Tag, c workflow.Capture) {
	fmt.Fprintf(w, "[geogate] %s | %s: %s | %s: %s\n",
		locale.Text(tag, locale.GeoTaggingSuccess),
		locale.Text(tag, locale.CoordinatesLabel), c.Coordinates,
		locale.Text(tag, locale.AuditIDLabel), c.Entry.ID)
}

// printTransition renders a workflow state change.
func printTransition(w io.Writer, tr portal.Transition) {
	name := tr.Item.ID
	if tr.Variant == workflow.Emergency {
		name += " (emergency)"
	}
	switch tr.To {
	case workflow.Success:
		fmt.Fprintf(w, "[geogate] %s: success, saved %s\n", name, tr.Snapshot.Saved)
	case workflow.Error:
		fmt.Fprintf(w, "[geogate] %s: error, %s\n", name, tr.Snapshot.Message)
	default:
		fmt.Fprintf(w, "[geogate] %s: %s\n", name, tr.To)
	}
}
