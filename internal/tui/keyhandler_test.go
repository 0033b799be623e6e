package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/kbsearch/internal/api"
	"github.com/pders01/kbsearch/internal/filters"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
}

func TestKeyHandler_CustomModifier(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}), func(d *Deps) {
		d.Config.Keys.Modifier = "alt"
	})
	ready(app)

	send(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l"), Alt: true})
	assert.Equal(t, ViewLocalePicker, app.view)

	help := strings.Join(app.keyHandler.GetHelpForCurrentView(), " ")
	assert.Contains(t, help, "enter: select")
}

func TestKeyHandler_Navigation(t *testing.T) {
	tests := []struct {
		name         string
		initialView  View
		msg          tea.KeyMsg
		expectedView View
	}{
		{
			name:         "ViewSearch to ViewLocalePicker on ctrl+l",
			initialView:  ViewSearch,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlL},
			expectedView: ViewLocalePicker,
		},
		{
			name:         "ViewSearch to ViewCategoryPicker on ctrl+t",
			initialView:  ViewSearch,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlT},
			expectedView: ViewCategoryPicker,
		},
		{
			name:         "ViewSearch to ViewStatusPicker on ctrl+s",
			initialView:  ViewSearch,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlS},
			expectedView: ViewStatusPicker,
		},
		{
			name:         "ViewResults to ViewSearch on Escape",
			initialView:  ViewResults,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewSearch,
		},
		{
			name:         "ViewResults to ViewSearch on slash",
			initialView:  ViewResults,
			msg:          tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")},
			expectedView: ViewSearch,
		},
		{
			name:         "ViewSearch stays without results on down",
			initialView:  ViewSearch,
			msg:          tea.KeyMsg{Type: tea.KeyDown},
			expectedView: ViewSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))
			ready(app)
			app.view = tt.initialView

			updatedModel, _ := app.Update(tt.msg)
			updatedApp, ok := updatedModel.(*App)
			require.True(t, ok, "model should be *App")

			assert.Equal(t, tt.expectedView, updatedApp.view,
				"expected view to be %v but got %v", tt.expectedView, updatedApp.view)
		})
	}
}

func TestKeyHandler_PickersNeedReferenceData(t *testing.T) {
	endpoints := newRecordingAPI(&api.SearchArticlesResponse{})
	app := newTestApp(t, endpoints)
	app.view = ViewSearch

	send(app, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, ViewSearch, app.view, "no locales before instance metadata")

	send(app, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, ViewSearch, app.view, "no categories before the listing")
}

func TestKeyHandler_LocalePickerRelabels(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))
	ready(app)
	app.filters.SelectCategories([]int{3, 7})

	send(app, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Equal(t, ViewLocalePicker, app.view)
	send(app, tea.KeyMsg{Type: tea.KeyDown})
	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ViewSearch, app.view)
	assert.Equal(t, "ru", app.filters.URL().Get(filters.ParamLocale))
	assert.Equal(t, "ru", app.i18n.Language())
	assert.Equal(t, []filters.CategoryOption{{Value: 3, Label: "Оплата"}, {Value: 7, Label: "АПИ"}}, app.filters.SelectedCategories())
	assert.Equal(t, "Введите фразу для поиска", app.searchInput.Placeholder)
}

func TestKeyHandler_CategoryPickerMultiSelect(t *testing.T) {
	endpoints := newRecordingAPI(&api.SearchArticlesResponse{})
	app := newTestApp(t, endpoints)
	ready(app)

	send(app, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, ViewCategoryPicker, app.view)

	send(app, tea.KeyMsg{Type: tea.KeySpace})
	send(app, tea.KeyMsg{Type: tea.KeyDown})
	send(app, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, []string{"3", "7"}, app.picker.chosen())

	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ViewSearch, app.view)
	assert.Equal(t, "3,7", app.filters.URL().Get(filters.ParamCategory))
	assert.Equal(t, 0, endpoints.searchCount(), "filters alone do not search")
}

func TestKeyHandler_StatusPickerCancel(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))
	ready(app)

	send(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	send(app, tea.KeyMsg{Type: tea.KeySpace})
	send(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ViewSearch, app.view)
	assert.Nil(t, app.picker)
	assert.Empty(t, app.filters.Statuses())
	assert.False(t, app.filters.URL().Has(filters.ParamStatus))
}

func TestKeyHandler_StatusFilterResearches(t *testing.T) {
	endpoints := newRecordingAPI(&api.SearchArticlesResponse{Results: []api.Article{article(1, api.StatusPublished)}})
	app := newTestApp(t, endpoints)
	ready(app)
	for _, cmd := range typeText(app, "vpn") {
		pump(app, cmd)
	}
	require.Equal(t, 1, endpoints.searchCount())

	send(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	for i := 0; i < 3; i++ {
		send(app, tea.KeyMsg{Type: tea.KeyDown})
	}
	send(app, tea.KeyMsg{Type: tea.KeySpace})
	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, 2, endpoints.searchCount())
	assert.Equal(t, []api.ArticleStatus{api.StatusPublished}, endpoints.lastSearch().Status)
	assert.Equal(t, "PUBLISHED", app.filters.URL().Get(filters.ParamStatus))
}

func TestKeyHandler_EscClearsSearch(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))
	ready(app)
	for _, cmd := range typeText(app, "vpn") {
		pump(app, cmd)
	}

	send(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, "", app.searchInput.Value())
	assert.False(t, app.filters.URL().Has(filters.ParamSearch))
	assert.Equal(t, ResultIdle, app.resultState())
}

func TestKeyHandler_Quit(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeyHandler_DebugToggleRequiresFlag(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))
	ready(app)

	send(app, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.False(t, app.showDebug)
}

func TestKeyHandler_HelpForViews(t *testing.T) {
	app := newTestApp(t, newRecordingAPI(&api.SearchArticlesResponse{}))

	assert.Empty(t, app.keyHandler.GetHelpForCurrentView(), "no help behind the gate")

	ready(app)
	help := strings.Join(app.keyHandler.GetHelpForCurrentView(), " • ")
	assert.Contains(t, help, "ctrl+l: locale")
	assert.Contains(t, help, "ctrl+r: reload")
	assert.NotContains(t, help, "ctrl+d")

	app.view = ViewResults
	help = strings.Join(app.keyHandler.GetHelpForCurrentView(), " • ")
	assert.Contains(t, help, "n/p: page")
	assert.Contains(t, help, "ctrl+o: open links")
}
