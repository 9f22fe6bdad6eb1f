package main

import (
	"github.com/spf13/cobra"

	"github.com/ElizabethRoman12/Datax/internal/deltas"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute day-over-day deltas for all metric series",
	Long: `Recompute the delta columns of every daily metric row from the
absolute values, in one transaction. Absolute values are never modified;
running this twice in a row is a no-op the second time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		return deltas.New(st.DB()).Recompute(cmd.Context())
	},
}
