package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tku137/gitlab-sprint-stats/internal/render"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Renders the MR rate per sprint as a time-indexed line chart",
	Long: `Computes the MR rate for every sprint and renders the series as a line
chart over sprint start dates. By default the chart is drawn in the terminal;
with --out a PNG file is written instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		aggregator, err := buildAggregator(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		series, err := aggregator.MRRateSeries(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to compute MR rate series: %v\n", err)
			os.Exit(1)
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			plot, err := render.ASCII(series, width, height)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to render chart: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(plot)
			return
		}

		file, err := os.Create(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", out, err)
			os.Exit(1)
		}
		defer file.Close()
		if err := render.PNG(series, file); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", out)
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().String("out", "", "Write the chart as a PNG to this path instead of the terminal")
	chartCmd.Flags().Int("width", 80, "Terminal chart width")
	chartCmd.Flags().Int("height", 12, "Terminal chart height")
}
