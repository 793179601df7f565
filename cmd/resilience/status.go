package main

import (
  "context"
  "fmt"

  "github.com/fatih/color"
  "github.com/jedib0t/go-pretty/v6/table"
  "github.com/spf13/cobra"

  "github.com/roshni-games/resilience/internal/app"
)

var statusCmd = &cobra.Command{
  Use:   "status",
  Short: "Show the configured recovery pipeline",
  Long: `Display the strategy stack the current configuration produces:
registration order, per-strategy attempt budgets, and the active
policy values.

Registration order is selection priority; the first strategy whose
kinds match a classified error handles it.`,
  Example: `  # Show the pipeline for the default config
  resilience status

  # Show the pipeline a specific config file produces
  resilience status --config ./staging.yaml`,
  RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
  application := app.New()
  if err := application.Initialize(context.Background(), cfgFile); err != nil {
    return err
  }
  defer application.Shutdown()

  cfg := application.Config()

  fmt.Println(color.CyanString("Recovery pipeline"))
  fmt.Println()

  tw := table.NewWriter()
  tw.SetStyle(table.StyleLight)
  tw.AppendHeader(table.Row{"#", "Strategy", "Max attempts"})
  for i, s := range application.Handler().Registered() {
    tw.AppendRow(table.Row{i + 1, s.Name(), s.MaxAttempts()})
  }
  fmt.Println(tw.Render())
  fmt.Println()

  fmt.Println(color.CyanString("Policy values"))
  pw := table.NewWriter()
  pw.SetStyle(table.StyleLight)
  pw.AppendHeader(table.Row{"Setting", "Value"})
  pw.AppendRows([]table.Row{
    {"retry.max_attempts", cfg.Retry.MaxAttempts},
    {"retry.base_delay", cfg.Retry.BaseDelay()},
    {"retry.max_delay", cfg.Retry.MaxDelay()},
    {"retry.multiplier", cfg.Retry.Multiplier},
    {"retry.jitter", cfg.Retry.Jitter},
    {"circuit.failure_threshold", cfg.Circuit.FailureThreshold},
    {"circuit.recovery_timeout", cfg.Circuit.RecoveryTimeout()},
    {"circuit.monitoring_period", cfg.Circuit.MonitoringPeriod()},
    {"adaptive.learning_rate", cfg.Adaptive.LearningRate},
    {"adaptive.min_confidence", cfg.Adaptive.MinConfidence},
    {"ratelimit.retries_per_sec", cfg.RateLimit.RetriesPerSec},
    {"cache.backend", cfg.Cache.Backend},
    {"cache.max_age", cfg.Cache.MaxAge()},
    {"events.buffer_size", cfg.Events.BufferSize},
  })
  fmt.Println(pw.Render())

  return nil
}
