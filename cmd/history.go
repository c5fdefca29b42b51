package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/logger"
	"github.com/spigell/pathfinder/internal/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous searches or print the results of one of them",
	Run: func(cmd *cobra.Command, _ []string) {
		history(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int("id", 0, "print the results of the search with this id")
}

func history(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), "stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	client := newClient(config, logger)

	id, _ := cmd.Flags().GetInt("id")
	if id == 0 {
		records, err := client.ListHistory(ctx)
		if err != nil {
			logger.Fatal("listing search history", zap.Error(err))
		}
		render.History(os.Stdout, records)
		return
	}

	jobs, err := client.FetchHistoryItem(ctx, id)
	if err != nil {
		logger.Fatal("fetching search results", zap.Int("history_id", id), zap.Error(err))
	}

	if len(jobs) == 0 {
		fmt.Fprintln(os.Stdout, "No matches were stored for this search.")
		return
	}

	render.Jobs(os.Stdout, jobs)
}
