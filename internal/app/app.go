package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/richard-senior/rfef/internal/config"
	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/api"
	"github.com/richard-senior/rfef/pkg/datasource"
	"github.com/richard-senior/rfef/pkg/export"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/notify"
	"github.com/richard-senior/rfef/pkg/service"
	"github.com/richard-senior/rfef/pkg/store"
	"github.com/richard-senior/rfef/pkg/transport"
	"github.com/richard-senior/rfef/pkg/updater"
)

const httpTimeout = 20 * time.Second

// App holds the wired components shared by the HTTP service and the MCP
// server
type App struct {
	Config  *config.Config
	Roster  *league.Roster
	Service *service.Service
	Updater *updater.Updater
	API     *api.Handler

	closers []func() error
}

// Build opens the stores and wires every component from cfg
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	official, err := a.officialStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := store.InitDatabase(cfg.SQLitePath, store.Models()...); err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, store.CloseDatabase)

	var historical store.HistoricalStore = store.NewFileHistoricalStore(cfg.HistoricalMatchesFile())
	if cfg.HistoricalBackend == "sqlite" {
		historical = store.NewSQLHistoricalStore()
	}

	opts := service.Options{
		Official:   official,
		Historical: historical,
		Database:   true,
	}
	if cfg.TeamsFile != "" {
		if opts.Teams, err = league.LoadTeamsFile(cfg.TeamsFile); err != nil {
			a.Close()
			return nil, err
		}
		logger.Info("Loaded base table from", cfg.TeamsFile)
	}
	if cfg.ExportBucket != "" {
		uploader, err := export.NewS3Uploader(ctx, cfg.ExportBucket)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts.Uploader = uploader
	}
	a.Service = service.New(opts)

	roster := league.DefaultRoster()
	for alias, id := range cfg.TeamAliases {
		roster.AddAlias(alias, id)
	}
	a.Roster = roster
	client := transport.NewClient(transport.ClientOptions{
		CacheTTL: cfg.HTTPCacheTTL,
		CABundle: cfg.CABundle,
		Timeout:  httpTimeout,
	})
	uopts := updater.Options{
		Fallback: datasource.NewBDFutbolScraper(client, roster),
		Official: official,
		Roster:   roster,
	}
	if cfg.APIFootballKey != "" {
		uopts.API = datasource.NewAPIFootballClient(client, cfg.APIFootballKey, cfg.APIFootballSeason, roster)
	} else {
		logger.Warn("API_FOOTBALL_KEY is not set, results will be scraped from BDFutbol")
	}
	if cfg.DiscordToken != "" {
		n, err := notify.NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			a.Close()
			return nil, err
		}
		uopts.Notifier = n
	}
	a.Updater = updater.New(uopts)
	a.API = api.NewHandler(a.Service, a.Updater, cfg.CronSecret, cfg.Dev)

	return a, nil
}

func (a *App) officialStore(ctx context.Context) (store.OfficialStore, error) {
	if a.Config.RedisAddr == "" {
		return store.NewFileOfficialStore(a.Config.OfficialResultsFile()), nil
	}
	client, err := store.NewRedisClient(ctx, a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return store.NewRedisOfficialStore(client), nil
}

// Close releases the stores in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Error during shutdown", err)
		}
	}
	a.closers = nil
}
