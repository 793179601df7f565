package main

import (
  "fmt"
  "os"
  "path/filepath"

  "github.com/spf13/cobra"
  "github.com/spf13/viper"
)

var (
  cfgFile string
  verbose bool
  rootCmd = &cobra.Command{
    Use:   "resilience",
    Short: "Error recovery framework workbench",
    Long: `Resilience is the error recovery framework used by Roshni Games
clients, with a workbench CLI for exercising it.

Features:
  • Typed error classification
  • Pluggable recovery strategies (retry, circuit breaker, cache, offline)
  • Adaptive delay learning from outcomes
  • Fault injection scenarios for tuning policies`,
    Version: "1.0.0",
  }
)

// Execute runs the root command
func Execute() error {
  return rootCmd.Execute()
}

func init() {
  cobra.OnInitialize(initConfig)

  // Global flags
  rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
    "config file (default is $HOME/.resilience/config.yaml)")
  rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
    "verbose output")

  // Bind flags to viper
  viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

  // Add commands
  rootCmd.AddCommand(simulateCmd)
  rootCmd.AddCommand(statusCmd)
  rootCmd.AddCommand(configCmd)

  rootCmd.CompletionOptions.DisableDefaultCmd = false
}

func initConfig() {
  if cfgFile != "" {
    // Use config file from the flag
    viper.SetConfigFile(cfgFile)
  } else {
    home, err := os.UserHomeDir()
    cobra.CheckErr(err)

    configDir := filepath.Join(home, ".resilience")
    viper.AddConfigPath(configDir)
    viper.SetConfigType("yaml")
    viper.SetConfigName("config")
  }

  viper.SetEnvPrefix("RESILIENCE")
  viper.AutomaticEnv()

  if err := viper.ReadInConfig(); err == nil && verbose {
    fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
  }

  if verbose {
    viper.Set("log.level", "debug")
  }
}
