package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roshni-games/resilience/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage recovery policy configuration",
	Long: `View and modify recovery policy settings.

Configuration can be managed through:
  • Direct key-value updates
  • Environment variables (RESILIENCE_*)
  • Direct file editing`,
	Example: `  # View all configuration
  resilience config

  # View specific setting
  resilience config get retry.max_attempts

  # Update setting
  resilience config set circuit.failure_threshold 3

  # Reset to defaults
  resilience config reset`,
}

var (
	configGetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Get configuration value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigGet,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set configuration value",
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	}

	configResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		RunE:  runConfigReset,
	}
)

// configItem is one displayed setting.
type configItem struct {
	Key         string
	Description string
	Value       string
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)

	configCmd.Run = func(cmd *cobra.Command, args []string) {
		runConfigList()
	}
}

func runConfigList() {
	fmt.Println(color.CyanString("⚙️  Recovery Policy Configuration"))
	fmt.Println()
	fmt.Printf("Config file: %s\n\n", config.ConfigPath())

	groups := []struct {
		name  string
		items []configItem
	}{
		{"Retry", []configItem{
			{"retry.max_attempts", "Max operation invocations", viper.GetString("retry.max_attempts")},
			{"retry.base_delay_ms", "First retry delay (ms)", viper.GetString("retry.base_delay_ms")},
			{"retry.max_delay_ms", "Delay ceiling (ms)", viper.GetString("retry.max_delay_ms")},
			{"retry.multiplier", "Backoff multiplier", viper.GetString("retry.multiplier")},
			{"retry.jitter", "Randomize delays ±10%", fmt.Sprintf("%v", viper.GetBool("retry.jitter"))},
		}},
		{"Circuit Breaker", []configItem{
			{"circuit.failure_threshold", "Failures before opening", viper.GetString("circuit.failure_threshold")},
			{"circuit.recovery_timeout_ms", "Open duration before trial (ms)", viper.GetString("circuit.recovery_timeout_ms")},
			{"circuit.monitoring_period_ms", "Failure counting window (ms)", viper.GetString("circuit.monitoring_period_ms")},
		}},
		{"Adaptive", []configItem{
			{"adaptive.learning_rate", "Statistics update weight", viper.GetString("adaptive.learning_rate")},
			{"adaptive.min_confidence", "Confidence to trust learned delays", viper.GetString("adaptive.min_confidence")},
		}},
		{"Cache", []configItem{
			{"cache.backend", "Store backend (memory/sqlite/redis)", viper.GetString("cache.backend")},
			{"cache.path", "SQLite database file", viper.GetString("cache.path")},
			{"cache.addr", "Redis address", viper.GetString("cache.addr")},
			{"cache.max_age_ms", "Cache freshness bound (ms)", viper.GetString("cache.max_age_ms")},
		}},
		{"Advanced", []configItem{
			{"ratelimit.retries_per_sec", "Rate limited retry pace", viper.GetString("ratelimit.retries_per_sec")},
			{"events.buffer_size", "Event stream buffer", viper.GetString("events.buffer_size")},
			{"log.level", "Log level", viper.GetString("log.level")},
			{"log.format", "Log format (json/text)", viper.GetString("log.format")},
		}},
	}

	for _, group := range groups {
		fmt.Println(color.YellowString(group.name + ":"))

		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, WidthMax: 32},
			{Number: 2, WidthMax: 40},
			{Number: 3, WidthMax: 30},
		})

		for _, item := range group.items {
			value := item.Value
			if value == "" || value == "<nil>" {
				value = color.New(color.FgHiBlack).Sprint("(not set)")
			}
			t.AppendRow(table.Row{item.Key, item.Description, value})
		}

		fmt.Println(t.Render())
		fmt.Println()
	}

	fmt.Println("Use 'resilience config set <key> <value>' to update settings")
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		settings := flattenMap("", viper.AllSettings())
		keys := make([]string, 0, len(settings))
		for key := range settings {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%s=%v\n", key, settings[key])
		}
		return nil
	}

	key := args[0]
	if !viper.IsSet(key) {
		return fmt.Errorf("configuration key not found: %s", key)
	}

	fmt.Println(viper.Get(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	if !viper.IsSet(key) {
		fmt.Printf(color.YellowString("Warning: '%s' is not a recognized configuration key\n"), key)
		var proceed bool
		prompt := &survey.Confirm{
			Message: "Set it anyway?",
			Default: false,
		}
		survey.AskOne(prompt, &proceed)
		if !proceed {
			return nil
		}
	}

	// Preserve the existing value's type
	oldValue := viper.Get(key)
	var newValue interface{}

	switch oldValue.(type) {
	case bool:
		newValue = strings.ToLower(value) == "true"
	case int, int64:
		var n int64
		fmt.Sscanf(value, "%d", &n)
		newValue = n
	case float64:
		var f float64
		fmt.Sscanf(value, "%f", &f)
		newValue = f
	default:
		newValue = value
	}

	viper.Set(key, newValue)

	if err := config.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf(color.GreenString("✓ Set %s = %v\n"), key, newValue)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	fmt.Println(color.YellowString("⚠️  Warning: This will reset all configuration to defaults"))

	var confirm bool
	prompt := &survey.Confirm{
		Message: "Are you sure?",
		Default: false,
	}
	survey.AskOne(prompt, &confirm)
	if !confirm {
		return nil
	}

	configFile := config.ConfigPath()
	if err := os.Remove(configFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	viper.Reset()
	config.ApplyDefaults()
	if err := config.Save(); err != nil {
		return fmt.Errorf("failed to write defaults: %w", err)
	}

	fmt.Println(color.GreenString("✓ Configuration reset to defaults"))
	fmt.Printf("Config file: %s\n", filepath.Clean(configFile))
	return nil
}

// flattenMap flattens nested settings into dotted keys.
func flattenMap(prefix string, m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			for k, v := range flattenMap(full, nested) {
				out[k] = v
			}
		} else {
			out[full] = value
		}
	}
	return out
}
