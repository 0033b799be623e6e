package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1/api"
	cfg.API.UserAgent = "kbsearch-test/1.0"
	cfg.Database = DatabaseConfig{
		Path:    ":memory:",
		Timeout: 1 * time.Second,
	}
	cfg.Search.Debounce = 0
	cfg.UI.Style = "notty"
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
