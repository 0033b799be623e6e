package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "rundll32",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "xdg-open" {
		t.Errorf("getDefaultOpener() = %s, want 'xdg-open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %s, want %s", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("API.Timeout = %v, want 0", cfg.API.Timeout)
	}
	if cfg.API.CacheTTL != 0 {
		t.Errorf("API.CacheTTL = %v, want 0", cfg.API.CacheTTL)
	}
	if cfg.API.CategoriesLimit != 100 {
		t.Errorf("API.CategoriesLimit = %d, want 100", cfg.API.CategoriesLimit)
	}
	if cfg.API.UserAgent == "" {
		t.Error("API.UserAgent should not be empty")
	}

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}
	if filepath.Base(cfg.Database.Path) != "kbsearch.db" {
		t.Errorf("Database.Path = %s, want kbsearch.db", cfg.Database.Path)
	}

	if cfg.Search.Debounce != 500*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 500ms", cfg.Search.Debounce)
	}

	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %s, want 'off'", cfg.Log.Level)
	}
	if cfg.UI.Opener == "" {
		t.Error("UI.Opener should not be empty")
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Keys.Bindings.Refresh != "r" {
		t.Errorf("Keys.Bindings.Refresh = %s, want 'r'", cfg.Keys.Bindings.Refresh)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Search.Debounce != 500*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 500ms", cfg.Search.Debounce)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %s, want %s", cfg.API.BaseURL, DefaultBaseURL)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[api]
base_url = "https://kb.example.com/api"
timeout = "15s"
cache_ttl = "5m"
public_only = true

[database]
path = "/tmp/test.db"
timeout = "10s"

[search]
debounce = "250ms"
statuses = ["PUBLISHED"]

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://kb.example.com/api" {
		t.Errorf("API.BaseURL = %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("API.Timeout = %v, want 15s", cfg.API.Timeout)
	}
	if cfg.API.CacheTTL != 5*time.Minute {
		t.Errorf("API.CacheTTL = %v, want 5m", cfg.API.CacheTTL)
	}
	if !cfg.API.PublicOnly {
		t.Error("API.PublicOnly = false, want true")
	}
	if cfg.API.CategoriesLimit != 100 {
		t.Errorf("API.CategoriesLimit = %d, want default 100", cfg.API.CategoriesLimit)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.Search.Debounce != 250*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 250ms", cfg.Search.Debounce)
	}
	if len(cfg.Search.Statuses) != 1 || cfg.Search.Statuses[0] != "PUBLISHED" {
		t.Errorf("Search.Statuses = %v, want [PUBLISHED]", cfg.Search.Statuses)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
	if cfg.UI.Colors.Secondary != "#4ECDC4" {
		t.Errorf("UI.Colors.Secondary = %s, want default", cfg.UI.Colors.Secondary)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KBSEARCH_API_BASE_URL", "https://env.example.com/api")
	t.Setenv("KBSEARCH_LOG_LEVEL", "debug")

	configPath := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(configPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com/api" {
		t.Errorf("API.BaseURL = %s, want env override", cfg.API.BaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want 'debug'", cfg.Log.Level)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[api\nbase_url ="), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for malformed TOML")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := expandPath("~/kb.db"); got != filepath.Join(home, "kb.db") {
		t.Errorf("expandPath(~/kb.db) = %s", got)
	}
	if got := expandPath(":memory:"); got != ":memory:" {
		t.Errorf("expandPath(:memory:) = %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %s", got)
	}
	if got := expandPath("rel.db"); !filepath.IsAbs(got) {
		t.Errorf("expandPath(rel.db) = %s, want absolute", got)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := defaultConfig()
	cfg.API.BaseURL = "https://saved.example.com/api"
	cfg.API.Timeout = 45 * time.Second
	cfg.Database.Path = "/test/path.db"
	cfg.Search.Debounce = time.Second
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(tmpDir, "nested", "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("Loaded API.BaseURL = %s, want %s", loaded.API.BaseURL, cfg.API.BaseURL)
	}
	if loaded.API.Timeout != cfg.API.Timeout {
		t.Errorf("Loaded API.Timeout = %v, want %v", loaded.API.Timeout, cfg.API.Timeout)
	}
	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.Search.Debounce != cfg.Search.Debounce {
		t.Errorf("Loaded Search.Debounce = %v, want %v", loaded.Search.Debounce, cfg.Search.Debounce)
	}
	if loaded.Keys.Modifier != cfg.Keys.Modifier {
		t.Errorf("Loaded Keys.Modifier = %s, want %s", loaded.Keys.Modifier, cfg.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Search.Debounce != 500*time.Millisecond {
		t.Errorf("Generated config has Search.Debounce = %v, want 500ms", cfg.Search.Debounce)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("TestConfig Database.Path = %s, want ':memory:'", cfg.Database.Path)
	}
	if cfg.API.UserAgent != "kbsearch-test/1.0" {
		t.Errorf("TestConfig API.UserAgent = %s, want 'kbsearch-test/1.0'", cfg.API.UserAgent)
	}
	if cfg.Search.Debounce != 0 {
		t.Errorf("TestConfig Search.Debounce = %v, want 0", cfg.Search.Debounce)
	}
}
