// Package config resolves runtime settings from flags, TODO_* environment
// variables, an optional config.json and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyDataDir     = "data_dir"
	KeySeedURL     = "seed_url"
	KeyHTTPTimeout = "http_timeout"
	KeyTheme       = "theme"
	KeyLogFile     = "log_file"
	KeyGroup       = "group"
)

const (
	DefaultDataDir = "~/.todo"
	DefaultSeedURL = "https://dummyjson.com/todos"
	DefaultTimeout = 30 * time.Second
	DefaultTheme   = "classic"
)

const envPrefix = "TODO"

// flag name per key
var flagNames = map[string]string{
	KeyDataDir:     "data-dir",
	KeySeedURL:     "seed-url",
	KeyHTTPTimeout: "timeout",
	KeyTheme:       "theme",
	KeyLogFile:     "log-file",
	KeyGroup:       "group",
}

type Config struct {
	DataDir     string
	SeedURL     string
	HTTPTimeout time.Duration
	Theme       string
	LogFile     string
	Group       bool
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDataDir, DefaultDataDir)
	v.SetDefault(KeySeedURL, DefaultSeedURL)
	v.SetDefault(KeyHTTPTimeout, DefaultTimeout)
	v.SetDefault(KeyTheme, DefaultTheme)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyGroup, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags ties the flags present in fs to their keys. Missing flags are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagNames {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads config.json from the data dir (or the working directory) when
// present and returns the validated result.
func Load(v *viper.Viper) (Config, error) {
	dir, err := expandHome(v.GetString(KeyDataDir))
	if err != nil {
		return Config{}, err
	}
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	dir, err = expandHome(v.GetString(KeyDataDir))
	if err != nil {
		return Config{}, err
	}
	c := Config{
		DataDir:     dir,
		SeedURL:     strings.TrimSpace(v.GetString(KeySeedURL)),
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
		Theme:       strings.TrimSpace(v.GetString(KeyTheme)),
		LogFile:     strings.TrimSpace(v.GetString(KeyLogFile)),
		Group:       v.GetBool(KeyGroup),
	}
	if c.LogFile != "" {
		if c.LogFile, err = expandHome(c.LogFile); err != nil {
			return Config{}, err
		}
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data dir is empty")
	}
	u, err := url.Parse(c.SeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: seed url %q must be an http(s) URL", c.SeedURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

// Path joins name onto the data dir.
func (c Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

func expandHome(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
