package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrInvalidConfig         = errors.New("invalid config value")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v1.0.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Review session stores.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Bot    BotConfig
}

// CommonConfig contains configuration shared between the bot and the db tool.
type CommonConfig struct {
	// Version of the common config.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	Storage    Storage    `koanf:"storage"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	Telemetry  Telemetry  `koanf:"telemetry"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version    int        `koanf:"version"`
	Discord    Discord    `koanf:"discord"`
	Access     Access     `koanf:"access"`
	Game       Game       `koanf:"game"`
	Moderation Moderation `koanf:"moderation"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log session directories to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// Storage selects where documents are persisted.
type Storage struct {
	// Backend is one of file, redis, postgres or sqlite.
	Backend string `koanf:"backend"`
	// Base directory for the file backend.
	DataDir string `koanf:"data_dir"`
	// Per-document file paths for the file backend, keyed by document key.
	Paths map[string]string `koanf:"paths"`
	// Database file for the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`
	// Key prefix for the redis backend.
	RedisPrefix string `koanf:"redis_prefix"`
	// Run pending migrations on startup for the postgres backend.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Telemetry contains tracing configuration.
type Telemetry struct {
	// Uptrace DSN. Tracing export is disabled when empty.
	UptraceDSN string `koanf:"uptrace_dsn"`
	// Service name reported with spans.
	ServiceName string `koanf:"service_name"`
	// Deployment environment reported with spans.
	Environment string `koanf:"environment"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
	// Guild that receives commands instantly during development (0 to disable).
	DevGuildID uint64 `koanf:"dev_guild_id"`
	// Register commands globally.
	SyncGlobal bool `koanf:"sync_global"`
}

// Access lists the users allowed to run owner-only commands.
type Access struct {
	// Discord user IDs of the bot owners.
	OwnerIDs []uint64 `koanf:"owner_ids"`
}

// Game contains play command tuning.
type Game struct {
	// Cooldown between accepted play actions per user, in milliseconds.
	CooldownMS int `koanf:"cooldown_ms"`
	// Number of tracked users after which the cooldown table is cleared.
	CooldownMaxEntries int `koanf:"cooldown_max_entries"`
	// Draw attempts for a play command.
	StartAttempts int `koanf:"start_attempts"`
	// Draw attempts for a next button.
	NextAttempts int `koanf:"next_attempts"`
	// Probability in [0,1] of appending the tip line to a prompt.
	TipChance float64 `koanf:"tip_chance"`
	// Tip line appended to prompts.
	TipText string `koanf:"tip_text"`
}

// Moderation contains review workflow configuration.
type Moderation struct {
	// Minimum similarity ratio for potential duplicates.
	DuplicateThreshold float64 `koanf:"duplicate_threshold"`
	// Maximum number of potential duplicates shown.
	DuplicateLimit int `koanf:"duplicate_limit"`
	// Where review sessions are kept (memory or redis).
	SessionStore string `koanf:"session_store"`
	// Idle lifetime of a review session in minutes (0 keeps sessions until stopped).
	SessionTimeout int `koanf:"session_timeout"`
}

// LoadConfig loads the configuration files from the first search path that has them.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadConfigFrom(
		".tickle",
		filepath.Join(homeDir, ".tickle", "config"),
		"/etc/tickle/config",
		"/app/config",
		"config",
		".",
	)
}

// LoadConfigFrom loads common.toml and bot.toml from the given search paths.
func LoadConfigFrom(configPaths ...string) (*Config, string, error) {
	var (
		config         Config
		usedConfigPath string
	)

	targets := []struct {
		name   string
		target any
	}{
		{"common", &config.Common},
		{"bot", &config.Bot},
	}

	for _, t := range targets {
		k := koanf.New(".")
		configLoaded := false

		for _, path := range configPaths {
			configPath := filepath.Join(path, t.name+".toml")
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, t.name)
		}

		if err := k.Unmarshal("", t.target); err != nil {
			return nil, "", fmt.Errorf("error unmarshaling %s config: %w", t.name, err)
		}
	}

	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// applyDefaults fills unset values with the behaviour of earlier releases.
func (c *Config) applyDefaults() {
	if c.Common.Debug.LogLevel == "" {
		c.Common.Debug.LogLevel = "info"
	}
	if c.Common.Debug.MaxLogsToKeep <= 0 {
		c.Common.Debug.MaxLogsToKeep = 10
	}
	if c.Common.Debug.MaxLogLines <= 0 {
		c.Common.Debug.MaxLogLines = 10000
	}
	if c.Common.Storage.Backend == "" {
		c.Common.Storage.Backend = BackendFile
	}
	if c.Common.Storage.DataDir == "" {
		c.Common.Storage.DataDir = "."
	}
	if c.Common.Storage.SQLitePath == "" {
		c.Common.Storage.SQLitePath = filepath.Join("data", "tickle.db")
	}
	if c.Common.Telemetry.ServiceName == "" {
		c.Common.Telemetry.ServiceName = "tickle"
	}

	game := &c.Bot.Game
	if game.CooldownMS <= 0 {
		game.CooldownMS = 2000
	}
	if game.CooldownMaxEntries <= 0 {
		game.CooldownMaxEntries = 1000
	}
	if game.StartAttempts <= 0 {
		game.StartAttempts = 15
	}
	if game.NextAttempts <= 0 {
		game.NextAttempts = 10
	}
	if game.TipText == "" {
		game.TipText = "Tip: Use /suggest to suggest new questions dares wyr ect !!"
	}

	moderation := &c.Bot.Moderation
	if moderation.DuplicateThreshold <= 0 {
		moderation.DuplicateThreshold = 0.7
	}
	if moderation.DuplicateLimit <= 0 {
		moderation.DuplicateLimit = 3
	}
	if moderation.SessionStore == "" {
		moderation.SessionStore = SessionStoreMemory
	}
}

// validate rejects values that cannot be defaulted.
func (c *Config) validate() error {
	switch c.Common.Storage.Backend {
	case BackendFile, BackendRedis, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("%w: storage.backend %q", ErrInvalidConfig, c.Common.Storage.Backend)
	}

	switch c.Bot.Moderation.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("%w: moderation.session_store %q", ErrInvalidConfig, c.Bot.Moderation.SessionStore)
	}

	if c.Bot.Game.TipChance < 0 || c.Bot.Game.TipChance > 1 {
		return fmt.Errorf("%w: game.tip_chance must be within [0, 1]", ErrInvalidConfig)
	}

	if c.Bot.Moderation.DuplicateThreshold > 1 {
		return fmt.Errorf("%w: moderation.duplicate_threshold must be within (0, 1]", ErrInvalidConfig)
	}

	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/tickle/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
