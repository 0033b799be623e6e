package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/kbsearch/internal/api"
)

type pickerItem struct {
	value    string
	label    string
	selected bool
	multi    bool
}

func (i pickerItem) Title() string {
	if !i.multi {
		return i.label
	}
	if i.selected {
		return "[x] " + i.label
	}
	return "[ ] " + i.label
}

func (i pickerItem) Description() string { return i.value }
func (i pickerItem) FilterValue() string { return i.label }

// picker is a list of options shown full screen. A multi picker toggles
// entries with space and applies all marked entries; a single picker
// applies the highlighted one.
type picker struct {
	list  list.Model
	multi bool
}

func newPicker(title string, multi bool, items []pickerItem, width, height int) *picker {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	listItems := make([]list.Item, len(items))
	for i, it := range items {
		it.multi = multi
		listItems[i] = it
	}

	l := list.New(listItems, delegate, width, height)
	l.Title = "› " + title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(len(items) > 10)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return &picker{list: l, multi: multi}
}

// focus highlights the first item whose value is value.
func (p *picker) focus(value string) {
	for i, it := range p.list.Items() {
		if it.(pickerItem).value == value {
			p.list.Select(i)
			return
		}
	}
}

func (p *picker) filtering() bool {
	return p.list.FilterState() == list.Filtering
}

// toggle flips the mark of the highlighted item.
func (p *picker) toggle() {
	if !p.multi {
		return
	}
	current, ok := p.list.SelectedItem().(pickerItem)
	if !ok {
		return
	}
	for i, it := range p.list.Items() {
		item := it.(pickerItem)
		if item.value == current.value {
			item.selected = !item.selected
			p.list.SetItem(i, item)
			return
		}
	}
}

// chosen returns the marked values of a multi picker, or the highlighted
// value of a single picker.
func (p *picker) chosen() []string {
	if !p.multi {
		if it, ok := p.list.SelectedItem().(pickerItem); ok {
			return []string{it.value}
		}
		return nil
	}
	var out []string
	for _, it := range p.list.Items() {
		if item := it.(pickerItem); item.selected {
			out = append(out, item.value)
		}
	}
	return out
}

func (p *picker) setSize(width, height int) {
	p.list.SetSize(width, height)
}

func (p *picker) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

func (p *picker) view() string {
	return p.list.View()
}

func (a *App) openPicker(view View, p *picker) {
	if a.view != view {
		a.previousView = a.view
	}
	a.picker = p
	a.view = view
	a.searchInput.Blur()
}

func (a *App) closePicker() {
	a.picker = nil
	a.view = a.previousView
	if a.view == ViewSearch {
		a.searchInput.Focus()
	}
}

func (a *App) openLocalePicker() {
	opts := a.filters.LocaleOptions()
	if len(opts) == 0 {
		return
	}
	items := make([]pickerItem, len(opts))
	for i, o := range opts {
		items[i] = pickerItem{value: o.Value, label: o.Label}
	}
	p := newPicker(a.i18n.T("select_locale"), false, items, a.width, a.height-3)
	p.focus(a.filters.Locale())
	a.openPicker(ViewLocalePicker, p)
}

func (a *App) openCategoryPicker() {
	opts := a.filters.CategoryOptions()
	if len(opts) == 0 {
		return
	}
	selected := make(map[int]bool)
	for _, id := range a.filters.SelectedCategoryIDs() {
		selected[id] = true
	}
	items := make([]pickerItem, len(opts))
	for i, o := range opts {
		items[i] = pickerItem{
			value:    strconv.Itoa(o.Value),
			label:    categoryLabel(o),
			selected: selected[o.Value],
		}
	}
	a.openPicker(ViewCategoryPicker, newPicker(a.i18n.T("select_categories"), true, items, a.width, a.height-3))
}

func (a *App) openStatusPicker() {
	selected := make(map[api.ArticleStatus]bool)
	for _, s := range a.filters.Statuses() {
		selected[s] = true
	}
	items := make([]pickerItem, len(api.AllStatuses))
	for i, s := range api.AllStatuses {
		items[i] = pickerItem{value: string(s), label: a.statusLabel(s), selected: selected[s]}
	}
	a.openPicker(ViewStatusPicker, newPicker(a.i18n.T("select_statuses"), true, items, a.width, a.height-3))
}

func (a *App) openLinkPicker() tea.Cmd {
	links := a.selectedLinks()
	if len(links) == 0 {
		return a.setStatus(a.i18n.T("toast.no_links"), StatusWarn, a.toastTTL)
	}
	if len(links) == 1 {
		return a.openLink(links[0])
	}
	items := make([]pickerItem, len(links))
	for i, l := range links {
		items[i] = pickerItem{value: l, label: truncateMiddle(l, a.width-6)}
	}
	a.openPicker(ViewLinks, newPicker(a.i18n.T("links"), false, items, a.width, a.height-3))
	return nil
}

// applyPicker commits the picker selection through the filter coordinator
// and closes the picker.
func (a *App) applyPicker() tea.Cmd {
	if a.picker == nil {
		return nil
	}
	values := a.picker.chosen()
	view := a.view
	a.closePicker()

	switch view {
	case ViewLocalePicker:
		if len(values) == 0 || values[0] == a.filters.Locale() {
			return nil
		}
		if err := a.filters.SelectLocale(values[0]); err != nil {
			return a.setStatus(a.i18n.Tf("toast.unsupported_locale", values[0]), StatusWarn, a.toastTTL)
		}
		a.relabel()
	case ViewCategoryPicker:
		ids := make([]int, 0, len(values))
		for _, v := range values {
			if id, err := strconv.Atoi(v); err == nil {
				ids = append(ids, id)
			}
		}
		a.filters.SelectCategories(ids)
	case ViewStatusPicker:
		statuses := make([]api.ArticleStatus, 0, len(values))
		for _, v := range values {
			statuses = append(statuses, api.ArticleStatus(v))
		}
		a.filters.SelectStatuses(statuses)
	case ViewLinks:
		if len(values) == 1 {
			return a.openLink(values[0])
		}
		return nil
	default:
		return nil
	}

	a.resetPaging()
	return a.runSearch()
}
