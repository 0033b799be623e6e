package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/kbsearch/internal/api"
	"github.com/pders01/kbsearch/internal/config"
	"github.com/pders01/kbsearch/internal/debounce"
	"github.com/pders01/kbsearch/internal/filters"
	"github.com/pders01/kbsearch/internal/i18n"
	"github.com/pders01/kbsearch/internal/launcher"
	"github.com/pders01/kbsearch/internal/markup"
	"github.com/pders01/kbsearch/internal/query"
)

// History records which articles have been expanded. It outlives the
// process when backed by storage.Store.
type History interface {
	MarkViewed(id int) (bool, error)
	ViewedIDs() (map[int]bool, error)
}

// Opener hands a link to an external program.
type Opener interface {
	Open(url string) error
}

// Deps are the collaborators of the App. Config, Query and I18n are
// required; the rest have defaults.
type Deps struct {
	Context context.Context
	Config  *config.Config
	Query   *query.Client
	Filters *filters.Coordinator
	I18n    *i18n.Bundle
	Markup  *markup.Renderer
	Opener  Opener
	// History may be nil, in which case viewed articles are only kept in
	// memory.
	History History
	Logger  *slog.Logger
	// Debug enables the debug panel toggle.
	Debug bool
}

type App struct {
	ctx        context.Context
	config     *config.Config
	query      *query.Client
	filters    *filters.Coordinator
	i18n       *i18n.Bundle
	markup     *markup.Renderer
	opener     Opener
	history    History
	logger     *slog.Logger
	keyHandler *KeyHandler

	searchInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	picker      *picker
	debounce    *debounce.Debouncer

	view         View
	previousView View
	width        int
	height       int

	results    query.Observer[*api.SearchArticlesResponse]
	cursor      string
	page        int
	pendingPage int
	selected   int
	expanded   map[int]bool
	viewed     map[int]bool
	rendered   map[int]string
	entryLines []int

	lastErr    map[string]string
	status     string
	statusKind StatusKind
	statusSeq  int
	toastTTL   time.Duration

	debug     bool
	showDebug bool
}

func NewApp(deps Deps) *App {
	cfg := deps.Config
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	coord := deps.Filters
	if coord == nil {
		coord = filters.NewCoordinator(filters.NewURLState(), deps.I18n)
	}
	renderer := deps.Markup
	if renderer == nil {
		renderer = markup.NewRenderer(
			markup.WithStyle(cfg.UI.Style),
			markup.WithImageLabel(deps.I18n.T("image")),
		)
	}
	opener := deps.Opener
	if opener == nil {
		opener = launcher.New(cfg.UI.Opener, launcher.WithLogger(logger))
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 256
	text := coord.SearchText()
	ti.SetValue(text)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	deb := debounce.New("search", cfg.Search.Debounce)
	deb.Seed(text)

	app := &App{
		ctx:         ctx,
		config:      cfg,
		query:       deps.Query,
		filters:     coord,
		i18n:        deps.I18n,
		markup:      renderer,
		opener:      opener,
		history:     deps.History,
		logger:      logger,
		searchInput: ti,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		debounce:    deb,
		view:        ViewLoading,
		page:        1,
		expanded:    make(map[int]bool),
		viewed:      make(map[int]bool),
		rendered:    make(map[int]string),
		lastErr:     make(map[string]string),
		toastTTL:    toastTTL,
		debug:       deps.Debug,
	}

	if app.history != nil {
		ids, err := app.history.ViewedIDs()
		if err != nil {
			logger.Warn("loading viewed articles", "error", err)
		} else {
			for id := range ids {
				app.viewed[id] = true
			}
		}
	}

	app.keyHandler = NewKeyHandler(app, cfg)
	app.relabel()

	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.fetchInstance(),
		a.fetchCategories(),
		textinput.Blink,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width != a.width {
			clear(a.rendered)
		}
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.refreshResults()
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case instanceMsg:
		return a, a.onInstance(msg)

	case categoriesMsg:
		if msg.err != nil {
			return a, a.toastError("categories", "toast.categories_error", msg.err)
		}
		delete(a.lastErr, "categories")
		a.filters.OnCategories(msg.resp)
		a.refreshResults()
		return a, nil

	case debounce.FireMsg:
		if _, ok := a.debounce.Settle(msg); !ok {
			return a, nil
		}
		a.resetPaging()
		if a.view == ViewLoading {
			return a, nil
		}
		return a, a.runSearch()

	case searchMsg:
		if !a.results.Resolve(msg.key, msg.resp, msg.err) {
			a.logger.Debug("dropping stale search result", "key", string(msg.key))
			return a, nil
		}
		if msg.err == nil && msg.page > 0 {
			a.page = msg.page
			a.pendingPage = 0
		}
		a.selected = 0
		clear(a.expanded)
		clear(a.rendered)
		a.refreshResults()
		a.viewport.GotoTop()
		return a, nil

	case viewedMsg:
		if msg.err != nil {
			a.logger.Warn("recording viewed article", "id", msg.id, "error", msg.err)
			return a, a.setStatus(describeError(msg.err), StatusError, a.toastTTL)
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			return a, a.setStatus(a.i18n.Tf("toast.open_failed", describeError(msg.err)), StatusError, a.toastTTL)
		}
		return a, a.setStatus(a.i18n.Tf("toast.opened", truncateMiddle(msg.url, 60)), StatusSuccess, a.toastTTL)

	case clearStatusMsg:
		a.clearStatus(msg)
		return a, nil
	}

	var cmds []tea.Cmd
	if a.picker != nil {
		cmds = append(cmds, a.picker.update(msg))
	}
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a *App) onInstance(msg instanceMsg) tea.Cmd {
	var cmds []tea.Cmd
	if msg.err != nil {
		cmds = append(cmds, a.toastError("instance", "toast.instance_error", msg.err))
	} else {
		delete(a.lastErr, "instance")
		if a.filters.OnInstance(msg.inst) && a.view != ViewLoading {
			a.resetPaging()
			cmds = append(cmds, a.runSearch())
		}
	}

	if a.view == ViewLoading {
		a.view = ViewSearch
		a.searchInput.Focus()
		cmds = append(cmds, a.runSearch())
	}
	a.relabel()
	return tea.Batch(cmds...)
}

// onSearchInput mirrors an edited phrase into the query string and re-arms
// the debouncer.
func (a *App) onSearchInput(prev string) tea.Cmd {
	value := a.searchInput.Value()
	if value == prev {
		return nil
	}
	a.filters.SetSearchText(value)
	return a.debounce.Trigger(strings.TrimSpace(value))
}

func (a *App) resetPaging() {
	a.cursor = ""
	a.page = 1
	a.pendingPage = 0
}

// relabel refreshes every string that depends on the display language.
func (a *App) relabel() {
	a.searchInput.Placeholder = a.i18n.T("enter_phrase")
	a.markup.SetImageLabel(a.i18n.T("image"))
	clear(a.rendered)
	a.refreshResults()
}

func (a *App) layout() {
	inputWidth := a.width - 8
	if inputWidth < 10 {
		inputWidth = a.width - 4
	}
	a.searchInput.Width = inputWidth
	a.viewport.Width = a.width
	// header, input frame and status bar
	a.viewport.Height = a.height - 7
	if a.viewport.Height < 3 {
		a.viewport.Height = 3
	}
	if a.picker != nil {
		a.picker.setSize(a.width, a.height-3)
	}
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewLoading:
		content = renderCentered(a.width, a.height-3, lipgloss.JoinVertical(
			lipgloss.Center,
			GetCompactBanner(a.i18n.T("knowledge_base")),
			"",
			a.spinner.View()+" "+a.i18n.T("loading"),
		))
	case ViewLocalePicker, ViewCategoryPicker, ViewStatusPicker, ViewLinks:
		if a.picker != nil {
			content = a.picker.view()
		}
	default:
		content = a.searchView()
	}

	statusBar := a.getCustomStatusBar()
	if statusBar == "" {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width-1), statusBar)
}

func (a *App) searchView() string {
	header := renderHeader(CompactLogo+" "+a.i18n.T("knowledge_base"), a.filterSummary(), a.width)
	input := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)

	rows := []string{header, input}
	if a.debug && a.showDebug {
		rows = append(rows, a.debugPanel())
	}

	used := 0
	for _, r := range rows {
		used += lipgloss.Height(r)
	}
	bodyHeight := a.height - used - 2
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	a.viewport.Height = bodyHeight
	rows = append(rows, a.resultsView(bodyHeight))

	return lipgloss.NewStyle().
		Width(a.width).
		MaxHeight(a.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Top, rows...))
}

// filterSummary renders the active locale, categories and statuses.
func (a *App) filterSummary() string {
	t := a.i18n.T
	locale := t("na")
	if code := a.filters.Locale(); code != "" {
		locale = filters.LocaleLabel(code)
	}

	categories := t("all")
	if selected := a.filters.SelectedCategories(); len(selected) > 0 {
		labels := make([]string, len(selected))
		for i, c := range selected {
			labels[i] = categoryLabel(c)
		}
		categories = strings.Join(labels, ", ")
	} else if ids := a.filters.SelectedCategoryIDs(); len(ids) > 0 {
		categories = filters.JoinIDs(ids)
	}

	statuses := t("all")
	if selected := a.filters.Statuses(); len(selected) > 0 {
		labels := make([]string, len(selected))
		for i, s := range selected {
			labels[i] = a.statusLabel(s)
		}
		statuses = strings.Join(labels, ", ")
	}

	return strings.Join([]string{
		t("locale") + ": " + locale,
		t("category") + ": " + categories,
		t("status") + ": " + statuses,
	}, " · ")
}

func (a *App) getCustomStatusBar() string {
	style := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(MutedColor)

	if a.status != "" {
		text := a.status
		if a.statusKind == StatusError {
			text = "✗ " + text
		}
		return style.Render(a.statusKind.style().Render(truncateEnd(text, a.width-2)))
	}

	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	return style.Render(truncateEnd(strings.Join(commands, " • "), a.width-2))
}
