package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/kbsearch/internal/config"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	keys        config.KeyBindings
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, keys: cfg.Keys.Bindings, modifierKey: modifierKey}
}

// chord returns the key string of letter pressed with the modifier.
func (kh *KeyHandler) chord(letter string) string {
	return kh.modifierKey + letter
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" || key == kh.chord(kh.keys.Quit) {
		return kh.app, tea.Quit
	}

	switch kh.app.view {
	case ViewLoading:
		return kh.app, nil
	case ViewLocalePicker, ViewCategoryPicker, ViewStatusPicker, ViewLinks:
		return kh.handlePickerKeys(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	return kh.handleResultsKeys(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewSearch && kh.app.searchInput.Focused()
}

// handleCustomKeys handles the modifier chords available while searching
// and browsing results.
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	switch key {
	case kh.chord(kh.keys.Locale):
		app.openLocalePicker()
		return app, nil, true
	case kh.chord(kh.keys.Categories):
		app.openCategoryPicker()
		return app, nil, true
	case kh.chord(kh.keys.Statuses):
		app.openStatusPicker()
		return app, nil, true
	case kh.chord(kh.keys.Refresh):
		return app, app.refresh(), true
	case kh.chord(kh.keys.OpenLinks):
		return app, app.openLinkPicker(), true
	case kh.chord(kh.keys.Debug):
		if !app.debug {
			return app, nil, false
		}
		app.showDebug = !app.showDebug
		return app, nil, true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	switch msg.String() {
	case kh.keys.Back:
		if app.searchInput.Value() == "" {
			return app, nil
		}
		prev := app.searchInput.Value()
		app.searchInput.SetValue("")
		return app, app.onSearchInput(prev)
	case "tab", "down", "enter":
		if app.resultState() == ResultList {
			kh.focusResults()
		}
		return app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput passes the key to the search input and re-arms the
// debouncer when the phrase changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	prev := app.searchInput.Value()
	var cmd tea.Cmd
	app.searchInput, cmd = app.searchInput.Update(msg)
	return app, tea.Batch(cmd, app.onSearchInput(prev))
}

func (kh *KeyHandler) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	switch msg.String() {
	case kh.keys.Back, "/", "tab", "shift+tab":
		return kh.navigateBack()
	case "up", "k":
		if app.selected == 0 {
			return kh.navigateBack()
		}
		app.moveSelection(-1)
		return app, nil
	case "down", "j":
		app.moveSelection(1)
		return app, nil
	case kh.keys.Toggle, " ":
		return app, app.toggleSelected()
	case kh.keys.NextPage:
		return app, app.turnPage(1)
	case kh.keys.PrevPage:
		return app, app.turnPage(-1)
	case "q":
		return app, tea.Quit
	default:
		return kh.delegateToCharm(msg)
	}
}

func (kh *KeyHandler) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	if app.picker == nil {
		return kh.navigateBack()
	}
	if app.picker.filtering() {
		return app, app.picker.update(msg)
	}
	switch msg.String() {
	case kh.keys.Back:
		return kh.navigateBack()
	case kh.keys.Toggle:
		return app, app.applyPicker()
	case " ":
		app.picker.toggle()
		return app, nil
	default:
		return app, app.picker.update(msg)
	}
}

// delegateToCharm lets the viewport scroll the result list.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	kh.app.viewport, cmd = kh.app.viewport.Update(msg)
	return kh.app, cmd
}

func (kh *KeyHandler) focusResults() {
	kh.app.view = ViewResults
	kh.app.searchInput.Blur()
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	app := kh.app
	switch app.view {
	case ViewLocalePicker, ViewCategoryPicker, ViewStatusPicker, ViewLinks:
		app.closePicker()
	case ViewResults:
		app.view = ViewSearch
		app.searchInput.Focus()
	}
	return app, nil
}

// GetHelpForCurrentView returns the key hints shown in the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	t := kh.app.i18n.T
	mod := kh.modifierKey
	filterHelp := []string{
		mod + kh.keys.Locale + ": " + t("help.locale"),
		mod + kh.keys.Categories + ": " + t("help.categories"),
		mod + kh.keys.Statuses + ": " + t("help.statuses"),
		mod + kh.keys.Refresh + ": " + t("help.reload"),
	}

	switch kh.app.view {
	case ViewSearch:
		help := append([]string{"↓: " + t("help.results")}, filterHelp...)
		if kh.app.debug {
			help = append(help, mod+kh.keys.Debug+": "+t("help.debug"))
		}
		return append(help, mod+kh.keys.Quit+": "+t("help.quit"))

	case ViewResults:
		return append([]string{
			"↑/↓: " + t("help.move"),
			kh.keys.Toggle + ": " + t("help.toggle"),
			kh.keys.NextPage + "/" + kh.keys.PrevPage + ": " + t("help.page"),
			mod + kh.keys.OpenLinks + ": " + t("help.open"),
			kh.keys.Back + ": " + t("help.search"),
		}, filterHelp...)

	case ViewCategoryPicker, ViewStatusPicker:
		return []string{
			"space: " + t("help.toggle"),
			kh.keys.Toggle + ": " + t("help.apply"),
			kh.keys.Back + ": " + t("help.cancel"),
		}

	case ViewLocalePicker, ViewLinks:
		return []string{
			kh.keys.Toggle + ": " + t("help.select"),
			kh.keys.Back + ": " + t("help.cancel"),
		}

	default:
		return []string{}
	}
}
