package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/richard-senior/rfef/internal/logger"
)

// Config holds the runtime settings of the service. Every field can be set
// through the environment; a .env file in the working directory is read
// first when present.
type Config struct {
	ListenAddr string

	// Redis holds official results when RedisAddr is set, otherwise they go
	// to a JSON file under DataDir
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DataDir string
	// TeamsFile replaces the embedded base table with a JSON array of teams
	TeamsFile string
	// TeamAliases adds spellings used by the result sources, from
	// TEAM_ALIASES="Los Pucelanos=8;UD Logrones=3"
	TeamAliases map[string]int
	// SQLitePath is used for saved scenarios, snapshots and (optionally)
	// historical matches
	SQLitePath string
	// HistoricalBackend is "file" or "sqlite"
	HistoricalBackend string

	CronSecret string
	// Dev relaxes the cron authorization check
	Dev bool

	APIFootballKey    string
	APIFootballSeason int
	UpdateInterval    time.Duration
	HTTPCacheTTL      time.Duration
	// CABundle is an extra PEM bundle trusted by outbound requests, for
	// networks behind an intercepting proxy
	CABundle string

	ExportBucket string

	DiscordToken     string
	DiscordChannelID string

	LogLevel  logger.LogLevel
	LogOutput rune
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Could not read .env file", err)
	}

	c := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":3000"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		DataDir:           getEnv("DATA_DIR", "./data"),
		TeamsFile:         getEnv("TEAMS_FILE", ""),
		HistoricalBackend: strings.ToLower(getEnv("HISTORICAL_BACKEND", "file")),
		CronSecret:        getEnv("CRON_SECRET", ""),
		Dev:               strings.EqualFold(getEnv("APP_ENV", ""), "development"),
		APIFootballKey:    getEnv("API_FOOTBALL_KEY", ""),
		CABundle:          getEnv("CA_BUNDLE", ""),
		ExportBucket:      getEnv("EXPORT_BUCKET", ""),
		DiscordToken:      getEnv("DISCORD_TOKEN", ""),
		DiscordChannelID:  getEnv("DISCORD_CHANNEL_ID", ""),
	}
	c.SQLitePath = getEnv("SQLITE_PATH", filepath.Join(c.DataDir, "rfef.db"))

	var err error
	if c.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if c.APIFootballSeason, err = strconv.Atoi(getEnv("API_FOOTBALL_SEASON", "2025")); err != nil {
		return nil, fmt.Errorf("API_FOOTBALL_SEASON: %w", err)
	}
	if c.UpdateInterval, err = time.ParseDuration(getEnv("UPDATE_INTERVAL", "6h")); err != nil {
		return nil, fmt.Errorf("UPDATE_INTERVAL: %w", err)
	}
	if c.HTTPCacheTTL, err = time.ParseDuration(getEnv("HTTP_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("HTTP_CACHE_TTL: %w", err)
	}
	if c.TeamAliases, err = parseAliases(getEnv("TEAM_ALIASES", "")); err != nil {
		return nil, fmt.Errorf("TEAM_ALIASES: %w", err)
	}
	if c.LogLevel, err = logger.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	out := getEnv("LOG_OUTPUT", "c")
	c.LogOutput = rune(out[0])

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.HistoricalBackend != "file" && c.HistoricalBackend != "sqlite" {
		return fmt.Errorf("HISTORICAL_BACKEND must be file or sqlite, got %q", c.HistoricalBackend)
	}
	if c.UpdateInterval < time.Minute {
		return fmt.Errorf("UPDATE_INTERVAL must be at least 1m, got %s", c.UpdateInterval)
	}
	if c.HTTPCacheTTL < 0 {
		return fmt.Errorf("HTTP_CACHE_TTL must not be negative")
	}
	if (c.DiscordToken == "") != (c.DiscordChannelID == "") {
		return fmt.Errorf("DISCORD_TOKEN and DISCORD_CHANNEL_ID must be set together")
	}
	switch c.LogOutput {
	case 'c', 'f', 'b':
	default:
		return fmt.Errorf("LOG_OUTPUT must be one of c, f, b")
	}
	return nil
}

// OfficialResultsFile is the JSON file used when Redis is not configured
func (c *Config) OfficialResultsFile() string {
	return filepath.Join(c.DataDir, "official-results.json")
}

// HistoricalMatchesFile is the JSON file behind the "file" historical backend
func (c *Config) HistoricalMatchesFile() string {
	return filepath.Join(c.DataDir, "historical-matches.json")
}

// parseAliases reads "name=id" pairs separated by semicolons
func parseAliases(s string) (map[string]int, error) {
	aliases := make(map[string]int)
	for _, pair := range strings.Split(s, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, idStr, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=id, got %q", pair)
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid team id in %q", pair)
		}
		aliases[name] = id
	}
	return aliases, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
