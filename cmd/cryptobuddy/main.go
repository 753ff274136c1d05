package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "cryptobuddy",
	Short: "CryptoBuddy - multi-source crypto market data engine",
	Long: `CryptoBuddy aggregates cryptocurrency listings, asset detail, price
history and news from many public providers, with cascading fallback so
one dead upstream never takes the data down.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
