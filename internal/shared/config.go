package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// AppName names the XDG subdirectories owned by the application.
const AppName = "ytbeets"

//go:embed config.example.toml
var exampleConf []byte

var fieldPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Paths     PathsConfig     `toml:"paths"`
	Database  DatabaseConfig  `toml:"database"`
	Metadata  MetadataConfig  `toml:"metadata"`
	Download  DownloadConfig  `toml:"download"`
	Import    ImportConfig    `toml:"import"`
	Behaviour BehaviourConfig `toml:"behaviour"`
}

// PathsConfig contains filesystem locations owned by ytbeets.
type PathsConfig struct {
	CacheDir string `toml:"cache_dir"`
	LogFile  string `toml:"log_file"`
}

// DatabaseConfig contains download history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// MetadataConfig contains settings for the YouTube Music proxy.
type MetadataConfig struct {
	ProxyURL  string        `toml:"proxy_url"`
	AuthFile  string        `toml:"auth_file"`
	UserAgent string        `toml:"user_agent"`
	RateLimit time.Duration `toml:"rate_limit"`
	Timeout   time.Duration `toml:"timeout"`
	Cache     bool          `toml:"cache"`
}

// DownloadConfig contains yt-dlp invocation settings.
type DownloadConfig struct {
	Binary          string        `toml:"binary"`
	Format          string        `toml:"format"`
	AudioFormat     string        `toml:"audio_format"`
	OutputTemplate  string        `toml:"output_template"`
	EmbedMetadata   bool          `toml:"embed_metadata"`
	ExtraArgs       string        `toml:"extra_args"`
	Concurrency     int           `toml:"concurrency"`
	Timeout         time.Duration `toml:"timeout"`
	PlaylistURL     string        `toml:"playlist_url"`
	WatchURL        string        `toml:"watch_url"`
	SplitChapters   bool          `toml:"split_chapters"`
	ChapterTemplate string        `toml:"chapter_template"`
}

// ImportConfig contains beets invocation settings.
//
// Field is the flexible attribute (and tag) holding the source identifier.
type ImportConfig struct {
	Enabled   bool          `toml:"enabled"`
	Binary    string        `toml:"binary"`
	Config    string        `toml:"config"`
	Library   string        `toml:"library"`
	Field     string        `toml:"field"`
	ExtraArgs string        `toml:"extra_args"`
	Timeout   time.Duration `toml:"timeout"`
}

// BehaviourConfig contains defaults for per-run flags.
type BehaviourConfig struct {
	Verbose   bool `toml:"verbose"`
	KeepFiles bool `toml:"keep_files"`
	Force     bool `toml:"force"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults. Empty paths are resolved against XDG directories.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ResolvePaths()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ResolvePaths()
	return &config
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/ytbeets/config.toml
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// ResolvePaths fills empty path settings with their XDG locations.
func (c *Config) ResolvePaths() {
	if c.Paths.CacheDir == "" {
		c.Paths.CacheDir = filepath.Join(xdg.CacheHome, AppName)
	}
	if c.Paths.LogFile == "" {
		c.Paths.LogFile = filepath.Join(xdg.StateHome, AppName, AppName+".log")
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(xdg.DataHome, AppName, AppName+".db")
	}
	if c.Import.Library == "" {
		c.Import.Library = filepath.Join(xdg.ConfigHome, "beets", "library.db")
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Metadata.ProxyURL == "":
		return fmt.Errorf("%w: metadata.proxy_url is empty", ErrInvalidConfig)
	case c.Download.Binary == "":
		return fmt.Errorf("%w: download.binary is empty", ErrInvalidConfig)
	case c.Download.AudioFormat == "":
		return fmt.Errorf("%w: download.audio_format is empty", ErrInvalidConfig)
	case c.Download.OutputTemplate == "":
		return fmt.Errorf("%w: download.output_template is empty", ErrInvalidConfig)
	case c.Download.Concurrency < 1 || c.Download.Concurrency > 8:
		return fmt.Errorf("%w: download.concurrency must be between 1 and 8, got %d", ErrInvalidConfig, c.Download.Concurrency)
	case c.Import.Binary == "":
		return fmt.Errorf("%w: import.binary is empty", ErrInvalidConfig)
	case !fieldPattern.MatchString(c.Import.Field):
		return fmt.Errorf("%w: import.field %q must be a lowercase identifier", ErrInvalidConfig, c.Import.Field)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
