package cmd

import (
	"strings"

	"github.com/campaignops/routeflow/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "routeflow",
	Short: "Pipeline orchestrator for campaign-analytics queries",
	Long: `RouteFlow routes natural-language questions about ad campaigns
through a staged pipeline: a router picks specialist agents, a gate
validates the selection, specialists run concurrently, and their
findings are diagnosed and turned into prioritized recommendations.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/routeflow/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/routeflow")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ROUTEFLOW")
	// Replace dots with underscores for nested keys in env vars
	// e.g., ROUTEFLOW_PIPELINE_MAX_SPECIALISTS for pipeline.max_specialists
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
