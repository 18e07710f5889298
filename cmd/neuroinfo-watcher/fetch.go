package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
)

func fetchCmd(a *app) *cobra.Command {
	var (
		streamID string
		year     int
		week     int
	)

	cmd := &cobra.Command{
		Use:   "fetch <stream|schedule|subathons|vods|vod|subathon>",
		Short: "Fetch one resource and print it as JSON",
		Long: `Fetch one resource from the NeuroInfo API and print it as indented JSON.

Resources:
  stream      current stream state
  schedule    latest weekly schedule, or --year/--week for a specific one
  subathons   currently tracked subathons
  vods        every stored VOD
  vod         one VOD by --stream-id, or the latest without it
  subathon    one subathon by --year

Examples:
  neuroinfo-watcher fetch stream
  neuroinfo-watcher fetch schedule --year 2025 --week 7
  neuroinfo-watcher fetch subathon --year 2024`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"stream", "schedule", "subathons", "vods", "vod", "subathon"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger := a.cfg, a.logger

			client := api.NewClient(
				cfg.API.BaseURL,
				cfg.API.Token,
				cfg.API.RatePerSecond,
				cfg.API.Timeout(),
				logger,
			)

			var (
				result any
				err    error
			)

			switch args[0] {
			case "stream":
				result, err = client.FetchStream(ctx)
			case "schedule":
				if year != 0 || week != 0 {
					if year == 0 || week == 0 {
						return fmt.Errorf("--year and --week must be given together")
					}
					result, err = client.Schedule(ctx, year, week)
				} else {
					result, err = client.FetchLatestSchedule(ctx)
				}
			case "subathons":
				result, err = client.FetchCurrentSubathons(ctx)
			case "vods":
				result, err = client.AllVods(ctx)
			case "vod":
				if streamID != "" {
					result, err = client.Vod(ctx, streamID)
				} else {
					result, err = client.LatestVod(ctx)
				}
			case "subathon":
				if year == 0 {
					return fmt.Errorf("--year is required for subathon")
				}
				result, err = client.Subathon(ctx, year)
			default:
				return fmt.Errorf("unknown resource %q", args[0])
			}

			if err != nil {
				fe := api.AsFetchError(err)
				logger.Error("fetch failed",
					zap.String("resource", args[0]),
					zap.String("code", string(fe.Code)),
					zap.Int("status", fe.Status),
					zap.Error(err),
				)
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&streamID, "stream-id", "", "stream ID for vod")
	cmd.Flags().IntVar(&year, "year", 0, "year for schedule or subathon")
	cmd.Flags().IntVar(&week, "week", 0, "week for schedule")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
