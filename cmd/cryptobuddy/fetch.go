package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/logger"
	"github.com/sametyasit/cryptobuddy/internal/market"
	"github.com/spf13/cobra"
)

var (
	fetchPage    int
	fetchPerPage int
	fetchDays    int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch market data once and print it as JSON",
}

var fetchListingCmd = &cobra.Command{
	Use:   "listing",
	Short: "Fetch one page of the market listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *market.Service) (any, error) {
			return svc.FetchListing(ctx, fetchPage, fetchPerPage)
		})
	},
}

var fetchDetailCmd = &cobra.Command{
	Use:   "detail <asset-id>",
	Short: "Fetch the extended record for one asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *market.Service) (any, error) {
			return svc.FetchDetail(ctx, args[0])
		})
	},
}

var fetchHistoryCmd = &cobra.Command{
	Use:   "history <asset-id>",
	Short: "Fetch a price series for one asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *market.Service) (any, error) {
			return svc.FetchHistory(ctx, args[0], fetchDays)
		})
	},
}

var fetchNewsCmd = &cobra.Command{
	Use:   "news",
	Short: "Fetch the aggregated news feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *market.Service) (any, error) {
			return svc.FetchNews(ctx)
		})
	},
}

func init() {
	fetchListingCmd.Flags().IntVar(&fetchPage, "page", 1, "page number")
	fetchListingCmd.Flags().IntVar(&fetchPerPage, "per-page", 50, "assets per page")
	fetchHistoryCmd.Flags().IntVar(&fetchDays, "days", 7, "history span in days")

	fetchCmd.AddCommand(fetchListingCmd, fetchDetailCmd, fetchHistoryCmd, fetchNewsCmd)
	rootCmd.AddCommand(fetchCmd)
}

func withService(fn func(ctx context.Context, svc *market.Service) (any, error)) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	svc := market.New(
		market.ConfigFrom(cfg),
		market.BuildProviders(cfg),
		buildConnectivity(cfg),
		nil,
		log,
	)
	defer svc.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := fn(ctx, svc)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
