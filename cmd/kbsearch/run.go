package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/kbsearch/internal/api"
	"github.com/pders01/kbsearch/internal/config"
	"github.com/pders01/kbsearch/internal/debuglog"
	"github.com/pders01/kbsearch/internal/filters"
	"github.com/pders01/kbsearch/internal/i18n"
	"github.com/pders01/kbsearch/internal/query"
	"github.com/pders01/kbsearch/internal/storage"
	"github.com/pders01/kbsearch/internal/tui"
	"github.com/pders01/kbsearch/internal/validation"
	"github.com/spf13/cobra"
)

const memoryDB = ":memory:"

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tui.ApplyColors(cfg.UI.Colors)

	baseURL, err := validation.NewAPIURLValidator().ValidateBaseURL(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}

	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if flagDebug {
		level = debuglog.LevelDebug
	}
	if err := debuglog.Setup(level, cfg.Log.Path); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer debuglog.Close()
	logger := debuglog.Logger()

	apiClient := api.NewClient(baseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent),
	)
	client := query.NewClient(apiClient, query.NewCache(query.WithTTL(cfg.API.CacheTTL)))
	defer client.Close()
	defer apiClient.Close()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	bundle, err := i18n.New()
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}

	state, err := initialState(flagQuery, store, cfg.Search.Statuses)
	if err != nil {
		return err
	}
	if store != nil {
		state.OnChange(func(encoded string) {
			if err := store.SaveQuery(encoded); err != nil {
				logger.Warn("saving query", "error", err)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := tui.Deps{
		Context: ctx,
		Config:  cfg,
		Query:   client,
		Filters: filters.NewCoordinator(state, bundle),
		I18n:    bundle,
		Logger:  logger,
		Debug:   flagDebug,
	}
	if store != nil {
		deps.History = store
	}

	logger.Info("starting", "version", version, "base_url", baseURL, "query", state.Encode())

	p := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	final := state.Encode()
	if store != nil {
		if err := store.SaveQuery(final); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: saving query: %v\n", err)
		}
	}
	if final != "" {
		fmt.Println("?" + final)
	}
	return nil
}

// loadConfig loads the configuration and applies the --db override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	return cfg, nil
}

// openStore opens the configured database. It returns nil without error
// when storage is disabled with ":memory:".
func openStore(cfg *config.Config) (*storage.Store, error) {
	if cfg.Database.Path == memoryDB {
		return nil, nil
	}
	validator := validation.NewFilePathValidator()
	if flagDB != "" {
		validator = validation.NewPermissiveFilePathValidator()
	}
	path, err := validator.EnsureParent(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	store, err := storage.NewStore(path, storage.WithTimeout(cfg.Database.Timeout))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return store, nil
}

// initialState picks the starting query: the --query flag, otherwise the
// query saved by the last session. Configured default statuses apply when
// the query names none.
func initialState(flag string, store *storage.Store, statuses []string) (*filters.URLState, error) {
	raw := flag
	if raw == "" && store != nil {
		saved, err := store.LoadQuery()
		if err != nil {
			return nil, fmt.Errorf("loading saved query: %w", err)
		}
		raw = saved
	}

	state, err := filters.ParseURLState(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", raw, err)
	}
	applyDefaultStatuses(state, statuses)
	return state, nil
}

func applyDefaultStatuses(state *filters.URLState, statuses []string) {
	if state.Has(filters.ParamStatus) || len(statuses) == 0 {
		return
	}
	parsed := filters.ParseStatuses(strings.Join(statuses, ","))
	names := make([]string, len(parsed))
	for i, s := range parsed {
		names[i] = string(s)
	}
	state.Set(filters.ParamStatus, strings.Join(names, ","))
}
