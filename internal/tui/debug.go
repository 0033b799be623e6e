package tui

import (
	"fmt"
	"strings"

	"github.com/pders01/kbsearch/internal/filters"
)

// debugPanel shows the query string and the local state behind the view.
func (a *App) debugPanel() string {
	statuses := make([]string, 0)
	for _, s := range a.filters.Statuses() {
		statuses = append(statuses, string(s))
	}

	lines := []string{
		"query:      ?" + a.filters.URL().Encode(),
		fmt.Sprintf("locale:     %q (ui %q)", a.filters.Locale(), a.i18n.Language()),
		"categories: " + filters.JoinIDs(a.filters.SelectedCategoryIDs()),
		"statuses:   " + strings.Join(statuses, ","),
		fmt.Sprintf("settled:    %q pending=%t", a.debounce.Value(), a.debounce.Pending(strings.TrimSpace(a.searchInput.Value()))),
		fmt.Sprintf("results:    %s key=%s", a.resultState(), a.results.Key),
		fmt.Sprintf("page:       %d cursor=%q", a.page, a.cursor),
		fmt.Sprintf("cache:      %d entries, viewed %d, expanded %d", a.query.Cache().Len(), len(a.viewed), countTrue(a.expanded)),
	}
	for i, l := range lines {
		lines[i] = truncateEnd(l, a.width-4)
	}
	return DebugStyle.Render(strings.Join(lines, "\n"))
}

func countTrue(m map[int]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
