package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tku137/gitlab-sprint-stats/internal/config"
	"github.com/tku137/gitlab-sprint-stats/internal/gateway"
	"github.com/tku137/gitlab-sprint-stats/internal/usecase"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Computes the full metrics record for every sprint and outputs JSON",
	Long: `Enumerates all sprints of the configured group, computes the complete
productivity metrics record for each one, and prints the list as indented JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		aggregator, err := buildAggregator(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		results, err := aggregator.AllSprintMetrics(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate sprint metrics: %v\n", err)
			os.Exit(1)
		}

		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

// buildAggregator wires config, gateway and aggregator for a command run.
func buildAggregator(cmd *cobra.Command) (*usecase.Aggregator, error) {
	logger := newLogger(cmd)
	configPath, _ := cmd.InheritedFlags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	gitlabGateway, err := gateway.NewGitLabGateway(cfg.BaseURL, cfg.Token, cfg.GroupID, logger)
	if err != nil {
		return nil, err
	}
	return usecase.NewAggregator(gitlabGateway, logger), nil
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
