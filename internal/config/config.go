package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the knowledge-base API queried when none is configured.
const DefaultBaseURL = "https://support.swarmica.com/api"

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	UI       UIConfig       `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout of zero leaves requests to the transport defaults.
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CategoriesLimit int           `mapstructure:"categories_limit"`
	PublicOnly      bool          `mapstructure:"public_only"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Statuses []string      `mapstructure:"statuses"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
	// Style is a glamour style name; empty picks one from the terminal.
	Style  string `mapstructure:"style"`
	Opener string `mapstructure:"opener"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Viewed    string `mapstructure:"viewed"`
	Warning   string `mapstructure:"warning"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type ArticleConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

// KeyBindings are letters combined with the modifier, except Toggle,
// NextPage, PrevPage and Back which are used bare.
type KeyBindings struct {
	Quit       string `mapstructure:"quit"`
	Locale     string `mapstructure:"locale"`
	Categories string `mapstructure:"categories"`
	Statuses   string `mapstructure:"statuses"`
	Refresh    string `mapstructure:"refresh"`
	OpenLinks  string `mapstructure:"open_links"`
	Debug      string `mapstructure:"debug"`
	Toggle     string `mapstructure:"toggle"`
	NextPage   string `mapstructure:"next_page"`
	PrevPage   string `mapstructure:"prev_page"`
	Back       string `mapstructure:"back"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".kbsearch")

	return &Config{
		API: APIConfig{
			BaseURL:         DefaultBaseURL,
			UserAgent:       "kbsearch/1.0 (https://github.com/pders01/kbsearch)",
			CategoriesLimit: 100,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(dataDir, "kbsearch.db"),
			Timeout: 1 * time.Second,
		},
		Search: SearchConfig{
			Debounce: 500 * time.Millisecond,
			Statuses: []string{},
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Viewed:    "#64748B",
				Warning:   "#FACC15",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Article: ArticleConfig{
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
			Opener: getDefaultOpener(),
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(dataDir, "debug.log"),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:       "c",
				Locale:     "l",
				Categories: "t",
				Statuses:   "s",
				Refresh:    "r",
				OpenLinks:  "o",
				Debug:      "d",
				Toggle:     "enter",
				NextPage:   "n",
				PrevPage:   "p",
				Back:       "esc",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "rundll32"
	default:
		return "xdg-open"
	}
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "kbsearch", "config.toml")
}

// toMap flattens cfg into viper keys. Durations are written as strings so
// the TOML stays readable.
func toMap(cfg *Config) map[string]any {
	return map[string]any{
		"api.base_url":         cfg.API.BaseURL,
		"api.timeout":          cfg.API.Timeout.String(),
		"api.user_agent":       cfg.API.UserAgent,
		"api.cache_ttl":        cfg.API.CacheTTL.String(),
		"api.categories_limit": cfg.API.CategoriesLimit,
		"api.public_only":      cfg.API.PublicOnly,

		"database.path":    cfg.Database.Path,
		"database.timeout": cfg.Database.Timeout.String(),

		"search.debounce": cfg.Search.Debounce.String(),
		"search.statuses": cfg.Search.Statuses,

		"ui.colors.primary":              cfg.UI.Colors.Primary,
		"ui.colors.secondary":            cfg.UI.Colors.Secondary,
		"ui.colors.accent":               cfg.UI.Colors.Accent,
		"ui.colors.text":                 cfg.UI.Colors.Text,
		"ui.colors.muted":                cfg.UI.Colors.Muted,
		"ui.colors.viewed":               cfg.UI.Colors.Viewed,
		"ui.colors.warning":              cfg.UI.Colors.Warning,
		"ui.colors.error":                cfg.UI.Colors.Error,
		"ui.colors.success":              cfg.UI.Colors.Success,
		"ui.article.word_wrap_max_width": cfg.UI.Article.WordWrapMaxWidth,
		"ui.article.word_wrap_min_width": cfg.UI.Article.WordWrapMinWidth,
		"ui.style":                       cfg.UI.Style,
		"ui.opener":                      cfg.UI.Opener,

		"log.level": cfg.Log.Level,
		"log.path":  cfg.Log.Path,

		"keys.modifier":            cfg.Keys.Modifier,
		"keys.bindings.quit":       cfg.Keys.Bindings.Quit,
		"keys.bindings.locale":     cfg.Keys.Bindings.Locale,
		"keys.bindings.categories": cfg.Keys.Bindings.Categories,
		"keys.bindings.statuses":   cfg.Keys.Bindings.Statuses,
		"keys.bindings.refresh":    cfg.Keys.Bindings.Refresh,
		"keys.bindings.open_links": cfg.Keys.Bindings.OpenLinks,
		"keys.bindings.debug":      cfg.Keys.Bindings.Debug,
		"keys.bindings.toggle":     cfg.Keys.Bindings.Toggle,
		"keys.bindings.next_page":  cfg.Keys.Bindings.NextPage,
		"keys.bindings.prev_page":  cfg.Keys.Bindings.PrevPage,
		"keys.bindings.back":       cfg.Keys.Bindings.Back,
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range toMap(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KBSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range toMap(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
