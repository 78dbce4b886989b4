package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/core/stats"
)

var (
	statsOut    outputFlags
	statsColumn string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summary statistics of a dataset",
}

var statsLMPCmd = &cobra.Command{
	Use:   "lmp",
	Short: "Per-location price statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		recs, err := fetchLMP(cmd)
		if err != nil {
			return err
		}
		sum := stats.ByLocation(recs, stats.Column(statsColumn))
		if sum == nil {
			return fmt.Errorf("unknown column %q", statsColumn)
		}
		return statsOut.write(cmd, model.Records(sum))
	},
}

func init() {
	dataISO.add(statsLMPCmd)
	addLMPFlags(statsLMPCmd)
	statsOut.add(statsLMPCmd)
	statsLMPCmd.Flags().StringVar(&statsColumn, "column", string(stats.ColumnLMP), "lmp, energy, congestion or loss")
	statsCmd.AddCommand(statsLMPCmd)
	rootCmd.AddCommand(statsCmd)
}
