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
	"gopkg.in/yaml.v3"
)

const envPrefix = "REVIEWSCRAPER_"

// Config holds all configuration options for reviewscraper
type Config struct {
	// Review site endpoints
	Site SiteConfig `yaml:"site" json:"site"`

	// Headless browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Target company list
	Input InputConfig `yaml:"input" json:"input"`

	// Progress store locations
	Output OutputConfig `yaml:"output" json:"output"`

	// Flush, snapshot and pacing settings
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// News search API settings
	News NewsConfig `yaml:"news" json:"news"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig holds the review site URLs
type SiteConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	SearchPath string `yaml:"search_path" json:"search_path"`
	DetailPath string `yaml:"detail_path" json:"detail_path"`
}

// BrowserConfig controls the browser sessions opened for every company
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	DisableGPU     bool          `yaml:"disable_gpu" json:"disable_gpu"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	ExecPath       string        `yaml:"exec_path" json:"exec_path"`
	WaitTimeout    time.Duration `yaml:"wait_timeout" json:"wait_timeout"`
	URLTimeout     time.Duration `yaml:"url_timeout" json:"url_timeout"`
	SessionTimeout time.Duration `yaml:"session_timeout" json:"session_timeout"`
}

// InputConfig describes the company list table
type InputConfig struct {
	File        string `yaml:"file" json:"file"`
	OwnerColumn string `yaml:"owner_column" json:"owner_column"`
	OwnerValue  string `yaml:"owner_value" json:"owner_value"`
	NameColumn  string `yaml:"name_column" json:"name_column"`
}

// OutputConfig holds progress store file names
type OutputConfig struct {
	Directory    string `yaml:"directory" json:"directory"`
	ProgressFile string `yaml:"progress_file" json:"progress_file"`
	ErrorFile    string `yaml:"error_file" json:"error_file"`
	ProgressLog  string `yaml:"progress_log" json:"progress_log"`
}

// ScheduleConfig holds the periodic persistence and pacing settings
type ScheduleConfig struct {
	FlushEvery    int           `yaml:"flush_every" json:"flush_every"`
	SnapshotEvery int           `yaml:"snapshot_every" json:"snapshot_every"`
	ItemDelay     time.Duration `yaml:"item_delay" json:"item_delay"`
}

// NewsConfig holds news search API settings
type NewsConfig struct {
	Endpoint          string        `yaml:"endpoint" json:"endpoint"`
	Display           int           `yaml:"display" json:"display"`
	Start             int           `yaml:"start" json:"start"`
	Sort              string        `yaml:"sort" json:"sort"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	OutputPrefix      string        `yaml:"output_prefix" json:"output_prefix"`
	ClientID          string        `yaml:"client_id" json:"client_id"`
	ClientSecret      string        `yaml:"client_secret" json:"client_secret"`
	Account           string        `yaml:"account" json:"account"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the values the crawler was tuned with
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:    "https://www.jobplanet.co.kr",
			SearchPath: "/search/companies?query=",
			DetailPath: "/companies/",
		},
		Browser: BrowserConfig{
			Headless:       true,
			DisableGPU:     true,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
			WaitTimeout:    20 * time.Second,
			URLTimeout:     3 * time.Second,
			SessionTimeout: 90 * time.Second,
		},
		Input: InputConfig{
			File:        "enterprise_df_10k_utf8_data.csv",
			OwnerColumn: "담당",
			OwnerValue:  "1번",
			NameColumn:  "기업명",
		},
		Output: OutputConfig{
			Directory:    ".",
			ProgressFile: "jobplanet_crawling_progress.csv",
			ErrorFile:    "jobplanet_crawling_error.csv",
			ProgressLog:  "progress.log",
		},
		Schedule: ScheduleConfig{
			FlushEvery:    10,
			SnapshotEvery: 50,
			ItemDelay:     time.Second,
		},
		News: NewsConfig{
			Endpoint:          "https://openapi.naver.com/v1/search/news.json",
			Display:           10,
			Start:             1,
			Sort:              "sim",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 5,
			OutputPrefix:      "naver_news_final",
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from REVIEWSCRAPER_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(envPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(envPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	setBool := func(name string, dst *bool) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = strings.ToLower(v) == "true" || v == "1"
		}
	}

	setString("BASE_URL", &c.Site.BaseURL)
	setBool("HEADLESS", &c.Browser.Headless)
	setString("USER_AGENT", &c.Browser.UserAgent)
	setString("CHROME_PATH", &c.Browser.ExecPath)
	setDuration("WAIT_TIMEOUT", &c.Browser.WaitTimeout)

	setString("INPUT_FILE", &c.Input.File)
	setString("OWNER_VALUE", &c.Input.OwnerValue)
	setString("OUTPUT_DIR", &c.Output.Directory)

	setInt("FLUSH_EVERY", &c.Schedule.FlushEvery)
	setInt("SNAPSHOT_EVERY", &c.Schedule.SnapshotEvery)
	setDuration("ITEM_DELAY", &c.Schedule.ItemDelay)

	setString("NAVER_CLIENT_ID", &c.News.ClientID)
	setString("NAVER_CLIENT_SECRET", &c.News.ClientSecret)

	setBool("NOTIFICATIONS_ENABLED", &c.Notifications.Enabled)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".reviewscraper.yaml",
		".reviewscraper.yml",
		filepath.Join(home, ".config", "reviewscraper", "config.yaml"),
		filepath.Join(home, ".config", "reviewscraper", "config.yml"),
		filepath.Join(home, ".reviewscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Site.BaseURL == "" {
		errs = append(errs, errors.New("site base URL is required"))
	}
	if c.Browser.WaitTimeout <= 0 {
		errs = append(errs, errors.New("browser wait timeout must be positive"))
	}
	if c.Browser.URLTimeout <= 0 {
		errs = append(errs, errors.New("browser url timeout must be positive"))
	}

	if c.Input.File == "" {
		errs = append(errs, errors.New("input file is required"))
	}
	if c.Input.NameColumn == "" {
		errs = append(errs, errors.New("input name column is required"))
	}

	if c.Output.ProgressFile == "" || c.Output.ErrorFile == "" {
		errs = append(errs, errors.New("progress and error file names are required"))
	}
	if c.Output.ProgressFile == c.Output.ErrorFile {
		errs = append(errs, errors.New("progress and error files must differ"))
	}

	if c.Schedule.FlushEvery <= 0 {
		errs = append(errs, errors.New("flush period must be positive"))
	}
	if c.Schedule.SnapshotEvery <= 0 {
		errs = append(errs, errors.New("snapshot period must be positive"))
	} else if c.Schedule.FlushEvery > 0 && c.Schedule.SnapshotEvery%c.Schedule.FlushEvery != 0 {
		errs = append(errs, errors.New("snapshot period must be a multiple of the flush period"))
	}
	if c.Schedule.ItemDelay < 0 {
		errs = append(errs, errors.New("item delay cannot be negative"))
	}

	if c.News.Display <= 0 || c.News.Display > 100 {
		errs = append(errs, errors.New("news display must be between 1 and 100"))
	}
	if c.News.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("news requests per second cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["input"].(string); ok && v != "" {
		c.Input.File = v
	}
	if v, ok := flags["owner"].(string); ok && v != "" {
		c.Input.OwnerValue = v
	}
	if v, ok := flags["output-dir"].(string); ok && v != "" {
		c.Output.Directory = v
	}
	if v, ok := flags["flush-every"].(int); ok && v > 0 {
		c.Schedule.FlushEvery = v
	}
	if v, ok := flags["snapshot-every"].(int); ok && v > 0 {
		c.Schedule.SnapshotEvery = v
	}
	if v, ok := flags["delay"].(time.Duration); ok && v >= 0 {
		c.Schedule.ItemDelay = v
	}
	if v, ok := flags["wait-timeout"].(time.Duration); ok && v > 0 {
		c.Browser.WaitTimeout = v
	}
	if v, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = v
	}
	if v, ok := flags["account"].(string); ok && v != "" {
		c.News.Account = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok && v != "" {
		c.Logging.File = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".reviewscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ProgressPath returns the canonical results path
func (c *Config) ProgressPath() string {
	return filepath.Join(c.Output.Directory, c.Output.ProgressFile)
}

// ErrorPath returns the canonical errors path
func (c *Config) ErrorPath() string {
	return filepath.Join(c.Output.Directory, c.Output.ErrorFile)
}
