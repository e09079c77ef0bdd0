package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Majid-Chaudhary/oltp-sample/internal/config"
	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/settings"
)

type settingsStore interface {
	settings.Provider
	settings.Writer
	Raw(ctx context.Context) (map[string]string, error)
}

// newSettingsStore builds the configured settings source. db is only used
// by the table source and may be nil otherwise.
func newSettingsStore(cfg *config.Config, db database.Adapter) (settingsStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Settings.Source {
	case "table":
		if db == nil {
			return nil, noop, fmt.Errorf("settings table needs the %s store", cfg.Settings.Store)
		}
		return settings.NewTableProvider(db, cfg.Settings.Table), noop, nil
	case "redis":
		provider, client := settings.NewRedisProvider(settings.RedisConfig{
			Addr:     cfg.Settings.Redis.Addr,
			Password: cfg.Settings.Redis.Password,
			DB:       cfg.Settings.Redis.DB,
			Key:      cfg.Settings.Redis.Key,
		})
		return provider, client.Close, nil
	case "file":
		return settings.NewFileProvider(cfg.Settings.File), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported settings source: %s", cfg.Settings.Source)
	}
}

// withSettings opens only what the settings source needs.
func withSettings(ctx context.Context, fn func(cfg *config.Config, s settingsStore) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var db database.Adapter
	if cfg.Settings.Source == "table" {
		if db, err = openStore(ctx, cfg, cfg.Settings.Store); err != nil {
			return err
		}
		defer db.Close()
	}

	s, closeSettings, err := newSettingsStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeSettings()

	return fn(cfg, s)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the loop settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the raw settings and how the loop reads them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(cmd.Context(), func(cfg *config.Config, s settingsStore) error {
			raw, err := s.Raw(cmd.Context())
			if err != nil {
				return err
			}

			color.Cyan("⚙️  Settings (%s)", cfg.Settings.Source)
			if len(raw) == 0 {
				color.Yellow("⚠️  No settings found, the loop will stop after loading reference data")
			}
			for _, key := range settings.SortedKeys(raw) {
				fmt.Printf("   %-20s %s\n", key, raw[key])
			}

			parsed := settings.FromMap(raw)
			fmt.Println()
			color.White("   first_load:         %t", parsed.FirstLoad)
			color.White("   continuous_loading: %t", parsed.ContinuousLoading)
			color.White("   batch_size:         %d", parsed.BatchSize)
			color.White("   pause:              %s", parsed.Pause())
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting",
	Long: `Set one setting. The running loop picks it up at its next batch
boundary. Known keys: first_load, continuous_loading, batch_size, pause_seconds.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		return withSettings(cmd.Context(), func(cfg *config.Config, s settingsStore) error {
			known := false
			for _, k := range settings.Keys {
				if k == key {
					known = true
					break
				}
			}
			if !known {
				color.Yellow("⚠️  %s is not read by the generator loop", key)
			}

			if err := s.Set(cmd.Context(), key, value); err != nil {
				return err
			}
			color.Green("✅ %s = %s", key, value)
			return nil
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
