package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daycard/internal/card"
	"daycard/internal/config"
	"daycard/internal/ics"
	appLog "daycard/internal/log"
	"daycard/internal/source"
	"daycard/internal/store"
	"daycard/internal/web"
)

const version = "0.1.0"

// app is the state shared by all subcommands once the config is loaded.
type app struct {
	cfg   *config.Config
	loc   *time.Location
	store *store.Store
}

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "daycard",
		Short:         "Day schedule card - timeline of one day's events",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config if set)")

	rootCmd.AddCommand(
		newServeCmd(),
		newRenderCmd(),
		newShowCmd(),
		newCaptureCmd(),
		newAddCmd(),
		newRmCmd(),
	)

	err := rootCmd.Execute()
	if err != nil {
		appLog.Error("daycard failed", err)
	}
	appLog.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// loadApp loads the config, configures logging and resolves the timezone.
func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := appLog.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, loc: web.ResolveLocation(cfg.Timezone)}, nil
}

// openStore opens the sqlite store when a database is configured.
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.cfg.Database == "" {
		return nil, errors.New("no database configured (set database: in config)")
	}
	st, err := store.Open(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			appLog.Error("store close failed", err)
		}
	}
}

// buildSource combines the schedule file, the local store and every ICS feed,
// in that order.
func (a *app) buildSource() (source.Source, error) {
	var sources []source.Source

	if a.cfg.ScheduleFile != "" {
		sources = append(sources, source.NewFile(a.cfg.ScheduleFile))
	}
	if a.cfg.Database != "" {
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		sources = append(sources, st)
	}
	if len(a.cfg.ICS) > 0 {
		fetcher := ics.NewFetcher(a.cfg.CacheDir, nil)
		for _, c := range a.cfg.ICS {
			sources = append(sources, ics.NewFeedSource(ics.Feed{
				ID:    c.ID,
				Name:  c.Name,
				URL:   c.URL,
				Color: c.Color,
			}, fetcher, a.loc))
		}
	}

	m := source.NewMulti(sources...)
	appLog.Info("event sources configured",
		"sources", m.Len(),
		"schedule_file", a.cfg.ScheduleFile,
		"database", a.cfg.Database,
		"ics_count", len(a.cfg.ICS),
	)
	return m, nil
}

// parseDay accepts YYYY-MM-DD, "today", "tomorrow" or "yesterday".
func parseDay(s string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(s) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	d, err := time.ParseInLocation(card.DateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, errors.New("invalid date " + s + " (want YYYY-MM-DD, today, tomorrow or yesterday)")
	}
	return d, nil
}
