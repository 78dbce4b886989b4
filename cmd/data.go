package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/gridstatus/app"
	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/model"
)

var (
	dataISO   isoFlags
	dataOut   outputFlags
	lmpMarket string
	lmpLocs   []string
	queueISO  string
	queueOut  outputFlags
)

var fuelMixCmd = &cobra.Command{
	Use:   "fuel-mix",
	Short: "Generation by fuel category",
	RunE: func(cmd *cobra.Command, _ []string) error {
		i, d, err := dataISO.resolve(cmd)
		if err != nil {
			return err
		}
		recs, err := i.GetFuelMix(cmd.Context(), d)
		if err != nil {
			return err
		}
		return dataOut.write(cmd, model.Records(recs))
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "System load",
	RunE: func(cmd *cobra.Command, _ []string) error {
		i, d, err := dataISO.resolve(cmd)
		if err != nil {
			return err
		}
		recs, err := i.GetLoad(cmd.Context(), d)
		if err != nil {
			return err
		}
		return dataOut.write(cmd, model.Records(recs))
	},
}

var loadForecastCmd = &cobra.Command{
	Use:   "load-forecast",
	Short: "Hourly load forecast",
	RunE: func(cmd *cobra.Command, _ []string) error {
		i, d, err := dataISO.resolve(cmd)
		if err != nil {
			return err
		}
		recs, err := i.GetLoadForecast(cmd.Context(), d)
		if err != nil {
			return err
		}
		return dataOut.write(cmd, model.Records(recs))
	},
}

var lmpCmd = &cobra.Command{
	Use:   "lmp",
	Short: "Locational marginal prices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		recs, err := fetchLMP(cmd)
		if err != nil {
			return err
		}
		return dataOut.write(cmd, model.Records(recs))
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Generator interconnection queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		i, err := app.NewISO(cfg, queueISO, nil)
		if err != nil {
			return err
		}
		recs, err := i.GetInterconnectionQueue(cmd.Context())
		if err != nil {
			return err
		}
		return queueOut.write(cmd, model.Records(recs))
	},
}

func addLMPFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lmpMarket, "market", model.MarketRealTime5Min.String(), "REAL_TIME_5_MIN or DAY_AHEAD_HOURLY")
	cmd.Flags().StringSliceVar(&lmpLocs, "locations", nil, `comma separated locations, "ALL" for every node, "HUBS" for trading hubs`)
}

func fetchLMP(cmd *cobra.Command) ([]model.LMP, error) {
	market, err := model.ParseMarket(lmpMarket)
	if err != nil {
		return nil, err
	}
	i, d, err := dataISO.resolve(cmd)
	if err != nil {
		return nil, err
	}
	return i.GetLMP(cmd.Context(), iso.LMPQuery{Date: d, Market: market, Locations: lmpLocs})
}

func init() {
	for _, c := range []*cobra.Command{fuelMixCmd, loadCmd, loadForecastCmd, lmpCmd} {
		dataISO.add(c)
		dataOut.add(c)
		rootCmd.AddCommand(c)
	}
	addLMPFlags(lmpCmd)

	queueCmd.Flags().StringVar(&queueISO, "iso", "miso", "operator id")
	queueOut.add(queueCmd)
	rootCmd.AddCommand(queueCmd)
}
