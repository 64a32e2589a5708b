package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"rolekeeper/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration (optional - enables config persistence)
	DatabaseURL  string
	DatabaseName string

	// NATS configuration (optional - enables notification publishing)
	NATSServers string // NATS server addresses (comma-separated)

	// Reaction handling
	RoleCallTimeout      time.Duration // Bound on every role mutation round-trip
	DispatchWorkers      int           // Shard workers for reaction events
	DefaultMaxSelections int           // Selection limit given to new guilds
	VerifyEmoji          string        // Verification emoji given to new guilds

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// HasDatabase reports whether persistence is configured
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasNATS reports whether notification publishing is configured
func (c *Config) HasNATS() bool {
	return c.NATSServers != ""
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the bot runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		RoleCallTimeout:      5 * time.Second,
		DispatchWorkers:      16,
		DefaultMaxSelections: 5,
		VerifyEmoji:          getEnvWithDefault("VERIFY_EMOJI", "✅"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	// Override defaults if environment variables are set
	if timeout := os.Getenv("ROLE_CALL_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("ROLE_CALL_TIMEOUT must be a positive duration, got %q", timeout)
		}
		config.RoleCallTimeout = parsed
	}
	if workers := os.Getenv("DISPATCH_WORKERS"); workers != "" {
		parsed, err := strconv.Atoi(workers)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("DISPATCH_WORKERS must be a positive integer, got %q", workers)
		}
		config.DispatchWorkers = parsed
	}
	if limit := os.Getenv("DEFAULT_MAX_SELECTIONS"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("DEFAULT_MAX_SELECTIONS must be a positive integer, got %q", limit)
		}
		config.DefaultMaxSelections = parsed
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:         "test-token",
		RoleCallTimeout:      time.Second,
		DispatchWorkers:      2,
		DefaultMaxSelections: 5,
		VerifyEmoji:          "✅",
		LogLevel:             "debug",
		Environment:          "test",
	}
}
