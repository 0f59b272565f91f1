// Package cmd implements the i4-scout CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "i4-scout",
		Short: "Track BMW i4 listings across marketplaces",
		Long: "i4-scout reconciles vehicle listings from multiple marketplaces,\n" +
			"matches their equipment options against a configured catalog,\n" +
			"scores them, and tracks price history and delisting.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	viper.SetEnvPrefix("I4SCOUT")
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(
		scrapeCmd(),
		watchCmd(),
		rescoreCmd(),
		listingsCmd(),
		passesCmd(),
		enrichCmd(),
		migrateCmd(),
		versionCmd(),
	)
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
