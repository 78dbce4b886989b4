package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/pkg/export"
)

var chartOut string

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a dataset as an HTML line chart",
}

var chartLMPCmd = &cobra.Command{
	Use:   "lmp",
	Short: "Price per location over time",
	RunE: func(cmd *cobra.Command, _ []string) error {
		recs, err := fetchLMP(cmd)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s LMP %s", dataISO.iso, lmpMarket)
		return writeChart(cmd, model.Records(recs), export.ChartOptions{Title: title, Value: "LMP", Series: "Location"})
	},
}

var chartLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "System load over time",
	RunE: func(cmd *cobra.Command, _ []string) error {
		i, d, err := dataISO.resolve(cmd)
		if err != nil {
			return err
		}
		recs, err := i.GetLoad(cmd.Context(), d)
		if err != nil {
			return err
		}
		return writeChart(cmd, model.Records(recs), export.ChartOptions{Title: i.Name() + " load", Value: "Load"})
	},
}

func writeChart(cmd *cobra.Command, recs []model.Record, o export.ChartOptions) error {
	w, closeFn, err := openOutput(cmd, chartOut)
	if err != nil {
		return err
	}
	if err := export.WriteChart(w, recs, o); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func init() {
	for _, c := range []*cobra.Command{chartLMPCmd, chartLoadCmd} {
		dataISO.add(c)
		c.Flags().StringVarP(&chartOut, "out", "o", "chart.html", "output HTML file")
		chartCmd.AddCommand(c)
	}
	addLMPFlags(chartLMPCmd)
	rootCmd.AddCommand(chartCmd)
}
