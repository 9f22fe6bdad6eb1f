package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var flagReportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print recent daily metric rows",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&flagReportLimit, "limit", 20, "maximum number of rows to print")
}

func runReport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.RecentMetrics(cmd.Context(), flagReportLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), rows)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tPLATFORM\tPAGE\tPOST\tVIEWS\tΔVIEWS\tREACH\tΔREACH\tREACTIONS\tΔREACT\tCOMMENTS\tSHARES\tSAVES")
	for _, m := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%+d\t%d\t%+d\t%d\t%+d\t%d\t%d\t%d\n",
			m.DownloadDate, m.Platform, m.PageID, m.PostID,
			m.Views, m.DeltaViews, m.Reach, m.DeltaReach,
			m.Reactions, m.DeltaReactions, m.Comments, m.Shares, m.Saves,
		)
	}
	return w.Flush()
}
