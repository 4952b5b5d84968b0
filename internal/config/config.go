package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved shopdesk configuration.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	RetryCount     int // zero disables retries
	RetryDelay     time.Duration
	PageSize       int
	SearchDebounce time.Duration
	PollInterval   time.Duration
	DataDir        string
	LogLevel       string
	LogFile        string
}

const (
	defaultConfigPath     = "~/.config/shopdesk/config.toml"
	defaultDataDir        = "~/.local/share/shopdesk"
	defaultAPIURL         = "http://localhost:5000"
	defaultTimeoutSeconds = 15
	defaultRetryCount     = 2
	defaultRetryDelayMS   = 1000
	defaultPageSize       = 12
	defaultDebounceMS     = 500
	defaultPollSeconds    = 30
	defaultLogLevel       = "info"
	logFileName           = "shopdesk.log"
	dotenvFile            = ".env"
)

// Environment variables that override the file.
const (
	EnvAPIURL   = "SHOPDESK_API_URL"
	EnvDataDir  = "SHOPDESK_DATA_DIR"
	EnvLogLevel = "SHOPDESK_LOG_LEVEL"
)

type fileConfig struct {
	APIURL                string `toml:"api_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	RetryCount            *int   `toml:"retry_count"`
	RetryDelayMS          int    `toml:"retry_delay_ms"`
	PageSize              int    `toml:"page_size"`
	SearchDebounceMS      int    `toml:"search_debounce_ms"`
	PollSeconds           int    `toml:"poll_seconds"`
	DataDir               string `toml:"data_dir"`
	LogLevel              string `toml:"log_level"`
	LogFile               string `toml:"log_file"`
}

// Load reads the config file at path (the default location when empty),
// then applies .env in the working directory and the process environment.
// A missing file or .env is not an error.
func Load(path string) (Config, error) {
	return load(path, dotenvFile, os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return Config{}, err
	}
	env := func(key string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(dotenv[key])
	}

	cfg := Config{
		APIURL:         firstNonEmpty(env(EnvAPIURL), raw.APIURL, defaultAPIURL),
		RequestTimeout: seconds(raw.RequestTimeoutSeconds, defaultTimeoutSeconds),
		RetryCount:     defaultRetryCount,
		RetryDelay:     millis(raw.RetryDelayMS, defaultRetryDelayMS),
		PageSize:       positiveOr(raw.PageSize, defaultPageSize),
		SearchDebounce: millis(raw.SearchDebounceMS, defaultDebounceMS),
		PollInterval:   seconds(raw.PollSeconds, defaultPollSeconds),
		LogLevel:       strings.ToLower(firstNonEmpty(env(EnvLogLevel), raw.LogLevel, defaultLogLevel)),
	}
	if raw.RetryCount != nil && *raw.RetryCount >= 0 {
		cfg.RetryCount = *raw.RetryCount
	}

	cfg.DataDir = mustExpand(firstNonEmpty(env(EnvDataDir), raw.DataDir, defaultDataDir))
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	} else {
		cfg.LogFile = filepath.Join(cfg.DataDir, logFileName)
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return raw, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return raw, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

// readDotenv parses the .env file without touching the process environment.
func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

// ClientRetries is the retry count in the form shopapi.Options expects,
// where zero means the default and negative disables retries.
func (c Config) ClientRetries() int {
	if c.RetryCount <= 0 {
		return -1
	}
	return c.RetryCount
}

// StoreDir is the directory of the on-device key-value documents.
func (c Config) StoreDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return filepath.Join(mustExpand(defaultDataDir), "store")
	}
	return filepath.Join(c.DataDir, "store")
}

// LogPath returns the shopdesk log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogFile) != "" {
		return c.LogFile
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/" + logFileName)
	}
	return filepath.Join(c.DataDir, logFileName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func seconds(v, fallback int) time.Duration {
	return time.Duration(positiveOr(v, fallback)) * time.Second
}

func millis(v, fallback int) time.Duration {
	return time.Duration(positiveOr(v, fallback)) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

