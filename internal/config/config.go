// Package config handles TOML-based configuration loading and validation.
// The file is parsed as data only; flags are merged on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values like "45s" decode directly.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration.
type Config struct {
	Base     string         `toml:"base"`
	Debug    bool           `toml:"debug"`
	Player   string         `toml:"player"` // used by --play
	Server   ServerConfig   `toml:"server"`
	Browser  BrowserConfig  `toml:"browser"`
	Resolver ResolverConfig `toml:"resolver"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen       string   `toml:"listen"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// ProxyHosts pre-authorizes upstream hosts for /proxy.
	ProxyHosts []string `toml:"proxy_hosts"`
}

// BrowserConfig configures the shared headless browser.
type BrowserConfig struct {
	Bin             string `toml:"bin"`
	Headless        bool   `toml:"headless"`
	NoSandbox       bool   `toml:"no_sandbox"`
	Stealth         bool   `toml:"stealth"`
	ExtensionDir    string `toml:"extension_dir"` // unpacked ad-block extension
	BlockDecorative bool   `toml:"block_decorative"`
	WarmupURL       string `toml:"warmup_url"`
}

// ResolverConfig bounds each resolution.
type ResolverConfig struct {
	MaxSessions    int      `toml:"max_sessions"`
	ResolveTimeout Duration `toml:"resolve_timeout"`
	StepTimeout    Duration `toml:"step_timeout"`
	SettleDelay    Duration `toml:"settle_delay"`
	QualityFrom    string   `toml:"quality_from"`
	QualityTo      string   `toml:"quality_to"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LogConfig configures optional file logging with rotation.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"` // megabytes
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Compress   bool   `toml:"compress"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Base:   "fmovies.ps",
		Player: "mpv",
		Server: ServerConfig{
			Listen:       ":3000",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{90 * time.Second},
		},
		Browser: BrowserConfig{
			Headless:        true,
			Stealth:         true,
			BlockDecorative: true,
			WarmupURL:       "https://google.com",
		},
		Resolver: ResolverConfig{
			MaxSessions:    4,
			ResolveTimeout: Duration{45 * time.Second},
			StepTimeout:    Duration{20 * time.Second},
			SettleDelay:    Duration{500 * time.Millisecond},
			QualityFrom:    "360",
			QualityTo:      "1080",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Log: LogConfig{
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     14,
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "videoapi"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "videoapi"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the default config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path and merges it with defaults.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Base) == "" {
		return fmt.Errorf("base host cannot be empty")
	}
	if strings.Contains(c.Base, "://") || strings.Contains(c.Base, "/") {
		return fmt.Errorf("base must be a bare host like fmovies.ps, got %q", c.Base)
	}

	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true,
	}
	if !validPlayers[c.Player] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", c.Player)
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server listen address cannot be empty")
	}

	r := c.Resolver
	if r.MaxSessions < 1 || r.MaxSessions > 64 {
		return fmt.Errorf("max_sessions must be between 1 and 64, got %d", r.MaxSessions)
	}
	if r.ResolveTimeout.Duration < 5*time.Second {
		return fmt.Errorf("resolve_timeout must be at least 5s, got %s", r.ResolveTimeout.Duration)
	}
	if r.StepTimeout.Duration <= 0 || r.StepTimeout.Duration > r.ResolveTimeout.Duration {
		return fmt.Errorf("step_timeout must be positive and not exceed resolve_timeout, got %s", r.StepTimeout.Duration)
	}
	if r.SettleDelay.Duration < 0 {
		return fmt.Errorf("settle_delay cannot be negative")
	}

	validQualities := map[string]bool{
		"360": true, "480": true, "720": true, "1080": true,
	}
	if !validQualities[r.QualityFrom] {
		return fmt.Errorf("unsupported quality_from %q (valid: 360, 480, 720, 1080)", r.QualityFrom)
	}
	if !validQualities[r.QualityTo] {
		return fmt.Errorf("unsupported quality_to %q (valid: 360, 480, 720, 1080)", r.QualityTo)
	}

	if c.Log.File != "" && c.Log.MaxSize <= 0 {
		return fmt.Errorf("log max_size must be positive when a log file is set")
	}

	return nil
}

// ExpandPath resolves ~ in a configured path.
func ExpandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Abs(p)
}

// CachePath returns the path to the result cache database.
// An explicit cache.path wins over the XDG data directory.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return ExpandPath(c.Cache.Path)
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "videoapi", "cache.db"), nil
}
