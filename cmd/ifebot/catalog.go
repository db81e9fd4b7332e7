package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egroblox/ifebot/internal/catalog"
	"github.com/egroblox/ifebot/internal/config"
)

func newCatalogCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the IFE track catalog",
		Long:  `Print every track in the catalog. With --check, open each source and identify its audio format.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			media, err := config.LoadMedia()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(media.CatalogPath)
			if err != nil {
				return err
			}

			if !check {
				printTracks(cmd.OutOrStdout(), cat)
				return nil
			}

			opener, err := newOpener(media)
			if err != nil {
				return err
			}
			reports := cat.Check(cmd.Context(), opener)
			if failed := printReports(cmd.OutOrStdout(), reports); failed > 0 {
				return fmt.Errorf("%d of %d track sources failed the check", failed, len(reports))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "open every source and identify its audio format")
	return cmd
}

func printTracks(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintf(w, "📚 %d tracks\n\n", cat.Len())
	fmt.Fprintf(w, "%-22s %-30s %s\n", "ID", "Label", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, t := range cat.Tracks() {
		fmt.Fprintf(w, "%-22s %-30s %s\n", t.ID, t.Label, t.Source)
	}
}

// printReports writes one line per track and returns the failure count.
func printReports(w io.Writer, reports []catalog.Report) int {
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "❌ %-22s %v\n", r.Track.ID, r.Err)
			continue
		}
		fmt.Fprintf(w, "✅ %-22s %s\n", r.Track.ID, r.FileType)
	}
	return failed
}
