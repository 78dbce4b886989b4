package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridstatus/app"
	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/infra/eia"
)

var (
	eiaRespondent string
	eiaStart      string
	eiaEnd        string
	eiaTypes      []string
	eiaOut        outputFlags
)

var eiaCmd = &cobra.Command{
	Use:   "eia",
	Short: "EIA hourly electric grid data (requires EIA_API_KEY)",
}

var eiaRegionCmd = &cobra.Command{
	Use:   "region-data",
	Short: "Demand, forecast, generation and interchange by balancing authority",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, start, end, err := eiaClient(cmd)
		if err != nil {
			return err
		}
		recs, err := c.RegionData(cmd.Context(), eia.RegionQuery{
			Respondent: eiaRespondent, Start: start, End: end, Types: eiaTypes,
		})
		if err != nil {
			return err
		}
		return eiaOut.write(cmd, model.Records(recs))
	},
}

var eiaFuelCmd = &cobra.Command{
	Use:   "fuel-type",
	Short: "Net generation by energy source",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, start, end, err := eiaClient(cmd)
		if err != nil {
			return err
		}
		recs, err := c.FuelTypeData(cmd.Context(), eia.FuelTypeQuery{
			Respondent: eiaRespondent, Start: start, End: end, FuelTypes: eiaTypes,
		})
		if err != nil {
			return err
		}
		return eiaOut.write(cmd, model.Records(recs))
	},
}

func eiaClient(cmd *cobra.Command) (*eia.Client, time.Time, time.Time, error) {
	var zero time.Time
	start, err := parseEIATime(eiaStart)
	if err != nil {
		return nil, zero, zero, fmt.Errorf("--start: %w", err)
	}
	end, err := parseEIATime(eiaEnd)
	if err != nil {
		return nil, zero, zero, fmt.Errorf("--end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return nil, zero, zero, fmt.Errorf("--end must be after --start")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, zero, zero, err
	}
	c, err := app.NewEIA(cfg, nil)
	if err != nil {
		return nil, zero, zero, err
	}
	return c, start, end, nil
}

// parseEIATime accepts a date or an RFC 3339 time, in UTC when no offset is
// given. Empty yields the zero time.
func parseEIATime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := model.ParseDate(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if d.Kind != model.DateDay {
		return time.Time{}, fmt.Errorf("expected a date, got %q", s)
	}
	return d.Start.UTC(), nil
}

func init() {
	for _, c := range []*cobra.Command{eiaRegionCmd, eiaFuelCmd} {
		c.Flags().StringVar(&eiaRespondent, "respondent", "", "balancing authority code, e.g. MISO")
		c.Flags().StringVar(&eiaStart, "start", "", "start date (YYYY-MM-DD or RFC 3339, UTC)")
		c.Flags().StringVar(&eiaEnd, "end", "", "end date (YYYY-MM-DD or RFC 3339, UTC)")
		eiaOut.add(c)
		_ = c.MarkFlagRequired("respondent")
		eiaCmd.AddCommand(c)
	}
	eiaRegionCmd.Flags().StringSliceVar(&eiaTypes, "types", nil, "series types (D, DF, NG, TI)")
	eiaFuelCmd.Flags().StringSliceVar(&eiaTypes, "fuel-types", nil, "energy sources (COL, NG, NUC, SUN, WND, ...)")
	rootCmd.AddCommand(eiaCmd)
}
