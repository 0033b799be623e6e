package main

import (
	"fmt"
	"os"

	"github.com/pders01/kbsearch/internal/config"
	"github.com/pders01/kbsearch/internal/tui"
	"github.com/spf13/cobra"
)

// Set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagQuery  string
	flagConfig string
	flagDB     string
	flagDebug  bool
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "kbsearch",
	Short: "Terminal search for a knowledge base",
	Long: "kbsearch queries a knowledge-base API with locale, category and status filters.\n" +
		"The filter state is a query string such as \"locale=ru&category=3,7&search=vpn\".",
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if !flagQuiet {
			fmt.Println(tui.Banner(version))
		}
		fmt.Printf("%s %s (commit: %s, built: %s)\n", tui.AppName, version, commit, date)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "skip the banner")
	rootCmd.Flags().StringVar(&flagQuery, "query", "", "initial filter state as a query string")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to database file (overrides config, \":memory:\" disables it)")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "log at debug level and enable the debug panel")

	configCmd.AddCommand(configGenCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
