package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/kbsearch/internal/api"
	"github.com/pders01/kbsearch/internal/query"
)

type instanceMsg struct {
	inst *api.Instance
	err  error
}

type categoriesMsg struct {
	resp *api.CategoriesResponse
	err  error
}

// searchMsg carries the key it was issued for so a response to an older
// request can be recognized and dropped.
type searchMsg struct {
	key  query.Key
	page int
	resp *api.SearchArticlesResponse
	err  error
}

type viewedMsg struct {
	id  int
	err error
}

type openedMsg struct {
	url string
	err error
}

func (a *App) fetchInstance() tea.Cmd {
	ctx, client, logger := a.ctx, a.query, a.logger
	return func() tea.Msg {
		inst, err := client.Instance(ctx)
		if err != nil {
			logger.Warn("instance request failed", "error", err)
		}
		return instanceMsg{inst: inst, err: wrapErr("instance", err)}
	}
}

func (a *App) categoriesParams() api.CategoriesParams {
	p := api.CategoriesParams{Ordering: "id"}
	if a.config.API.CategoriesLimit > 0 {
		limit := a.config.API.CategoriesLimit
		p.Limit = &limit
	}
	if a.config.API.PublicOnly {
		public := true
		p.Public = &public
	}
	return p
}

func (a *App) fetchCategories() tea.Cmd {
	ctx, client, logger := a.ctx, a.query, a.logger
	params := a.categoriesParams()
	return func() tea.Msg {
		resp, err := client.Categories(ctx, params)
		if err != nil {
			logger.Warn("categories request failed", "error", err)
		}
		return categoriesMsg{resp: resp, err: wrapErr("categories", err)}
	}
}

// runSearch points the result slot at the current phrase, filters and
// cursor. Without a settled phrase the slot is detached and no request is
// made.
func (a *App) runSearch() tea.Cmd {
	params := a.filters.SearchParams(a.debounce.Value(), a.cursor)
	if !params.Enabled() {
		a.results.Reset()
		a.refreshResults()
		return nil
	}

	key := query.SearchKey(params)
	page := a.page
	if a.pendingPage > 0 {
		page = a.pendingPage
	}
	a.results.Begin(key)
	a.refreshResults()

	ctx, client, logger := a.ctx, a.query, a.logger
	return func() tea.Msg {
		logger.Debug("search", "key", string(key))
		resp, err := client.SearchArticles(ctx, params)
		if err != nil && !errors.Is(err, query.ErrDisabled) {
			logger.Warn("search request failed", "key", string(key), "error", err)
		}
		return searchMsg{key: key, page: page, resp: resp, err: err}
	}
}

func (a *App) markViewed(id int) tea.Cmd {
	if a.history == nil {
		return nil
	}
	history := a.history
	return func() tea.Msg {
		_, err := history.MarkViewed(id)
		return viewedMsg{id: id, err: err}
	}
}

func (a *App) openLink(url string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		return openedMsg{url: url, err: opener.Open(url)}
	}
}

// refresh drops cached reference data and the current search, then fetches
// them again.
func (a *App) refresh() tea.Cmd {
	cache := a.query.Cache()
	cache.Invalidate(query.InstanceKey())
	cache.Invalidate(query.CategoriesKey(a.categoriesParams()))
	if a.results.Key != "" {
		cache.Invalidate(a.results.Key)
	}
	clear(a.lastErr)

	return tea.Batch(
		a.setStatus(a.i18n.T("toast.refreshed"), StatusInfo, a.toastTTL),
		a.fetchInstance(),
		a.fetchCategories(),
		a.runSearch(),
	)
}
