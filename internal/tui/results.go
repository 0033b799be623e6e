package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/kbsearch/internal/api"
	"github.com/pders01/kbsearch/internal/filters"
	"github.com/pders01/kbsearch/internal/markup"
)

const bodyField = "body"

func (a *App) resultState() ResultState {
	r := &a.results
	switch {
	case r.Key == "":
		return ResultIdle
	case r.Loading:
		return ResultLoading
	case r.Err != nil:
		return ResultError
	case !r.HasData || r.Data == nil || len(r.Data.Results) == 0:
		return ResultEmpty
	default:
		return ResultList
	}
}

func (a *App) articles() []api.Article {
	if a.resultState() != ResultList {
		return nil
	}
	return a.results.Data.Results
}

func (a *App) selectedArticle() (api.Article, bool) {
	arts := a.articles()
	if a.selected < 0 || a.selected >= len(arts) {
		return api.Article{}, false
	}
	return arts[a.selected], true
}

func (a *App) resultsView(height int) string {
	t := a.i18n.T
	switch a.resultState() {
	case ResultIdle:
		return renderCentered(a.width, height, renderMuted(t("enter_phrase")))
	case ResultLoading:
		return renderCentered(a.width, height, a.spinner.View()+" "+t("loading"))
	case ResultError:
		return renderCentered(a.width, height, lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render("✗ "+t("error_loading")),
			renderMuted(describeError(a.results.Err)),
		))
	case ResultEmpty:
		return renderCentered(a.width, height, renderMuted(t("no_data")))
	default:
		return a.viewport.View()
	}
}

// refreshResults rebuilds the result list content and keeps the selected
// entry in view.
func (a *App) refreshResults() {
	arts := a.articles()
	if len(arts) == 0 {
		a.entryLines = nil
		a.viewport.SetContent("")
		return
	}
	if a.selected >= len(arts) {
		a.selected = len(arts) - 1
	}

	var b strings.Builder
	a.entryLines = make([]int, len(arts))
	line := 0
	for i, art := range arts {
		a.entryLines[i] = line
		entry := a.renderEntry(art, i == a.selected)
		b.WriteString(entry)
		b.WriteString("\n\n")
		line += lipgloss.Height(entry) + 1
	}
	b.WriteString(a.renderPager())

	a.viewport.SetContent(b.String())
	a.scrollToSelected()
}

func (a *App) scrollToSelected() {
	if a.selected >= len(a.entryLines) || a.viewport.Height <= 0 {
		return
	}
	start := a.entryLines[a.selected]
	end := a.viewport.TotalLineCount()
	if a.selected+1 < len(a.entryLines) {
		end = a.entryLines[a.selected+1] - 1
	}
	switch {
	case start < a.viewport.YOffset:
		a.viewport.SetYOffset(start)
	case end > a.viewport.YOffset+a.viewport.Height:
		offset := end - a.viewport.Height
		if offset > start {
			offset = start
		}
		a.viewport.SetYOffset(offset)
	}
}

func (a *App) renderEntry(art api.Article, selected bool) string {
	t := a.i18n.T

	marker := "  "
	idText := "#" + strconv.Itoa(art.ID)
	switch {
	case selected:
		marker = SelectedItemStyle.Render("› ")
		idText = SelectedItemStyle.Render(idText)
	case a.viewed[art.ID]:
		idText = ViewedItemStyle.Render(idText)
	}

	heading := []string{idText, a.renderStatus(art.Status)}
	if a.viewed[art.ID] {
		heading = append(heading, ViewedItemStyle.Render("✓ "+t("viewed")))
	}

	extID := t("na")
	if art.ExtID != nil {
		extID = strconv.Itoa(*art.ExtID)
	}
	author := art.Author
	if author == "" {
		author = t("na")
	}

	rows := []string{
		marker + strings.Join(heading, " · "),
		"  " + strings.Join([]string{
			renderField(t("ext_id"), extID),
			renderField(t("rank"), fmt.Sprintf("%.3f", art.Rank)),
			renderField(t("author"), truncateEnd(author, 40)),
		}, "  "),
		"  " + TimeStyle.Render(strings.Join([]string{
			t("created_at") + ": " + a.i18n.FormatDateTime(art.CreatedAt),
			t("updated_at") + ": " + a.i18n.FormatDateTime(art.UpdatedAt),
			t("published_at") + ": " + a.i18n.FormatOptional(art.PublishedAt),
		}, "  ")),
	}

	if a.expanded[art.ID] {
		rows = append(rows, "  "+renderHelp("▾ "+t("highlight.hide")), a.renderHighlight(art))
	} else {
		rows = append(rows, "  "+renderHelp("▸ "+t("highlight.open")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderStatus(status api.ArticleStatus) string {
	label := a.statusLabel(status)
	if status == api.StatusPublished {
		return PublishedStyle.Render(label)
	}
	return UnpublishedStyle.Render(label)
}

func (a *App) statusLabel(status api.ArticleStatus) string {
	key := "article_status." + string(status)
	if label := a.i18n.T(key); label != key {
		return label
	}
	return string(status)
}

// renderHighlight renders the highlight panel of art. The body snippet goes
// through the markup renderer; other fields are shown as plain text.
func (a *App) renderHighlight(art api.Article) string {
	if cached, ok := a.rendered[art.ID]; ok {
		return cached
	}

	width := a.wrapWidth()
	var parts []string
	for _, f := range art.Highlight {
		label := LabelStyle.Render(f.Field)
		if f.Field == bodyField {
			body, err := a.markup.Render(f.Snippet, width)
			if err != nil {
				a.logger.Warn("rendering body highlight", "id", art.ID, "error", err)
				body = markup.PlainText(f.Snippet)
			}
			parts = append(parts, label, strings.TrimRight(body, "\n"))
			continue
		}
		parts = append(parts, label+" "+markup.PlainText(f.Snippet))
	}
	if len(parts) == 0 {
		parts = append(parts, renderMuted(a.i18n.T("no_data")))
	}

	out := PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	a.rendered[art.ID] = out
	return out
}

// wrapWidth is the word-wrap width for rendered bodies.
func (a *App) wrapWidth() int {
	maxW := a.config.UI.Article.WordWrapMaxWidth
	minW := a.config.UI.Article.WordWrapMinWidth
	w := (a.width * 9) / 10
	if maxW > 0 && w > maxW {
		w = maxW
	}
	if w < minW {
		w = minW
	}
	if a.width < 50 {
		w = a.width - 4
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (a *App) renderPager() string {
	parts := []string{renderMuted(a.i18n.Tf("page", a.page))}
	resp := a.results.Data
	if resp.PreviousCursor() != "" {
		parts = append([]string{renderHelp("‹ " + a.config.Keys.Bindings.PrevPage)}, parts...)
	}
	if resp.NextCursor() != "" {
		parts = append(parts, renderHelp(a.config.Keys.Bindings.NextPage+" ›"))
	}
	return "  " + strings.Join(parts, "  ")
}

func (a *App) moveSelection(delta int) {
	n := len(a.articles())
	if n == 0 {
		return
	}
	a.selected += delta
	if a.selected < 0 {
		a.selected = 0
	}
	if a.selected >= n {
		a.selected = n - 1
	}
	a.refreshResults()
}

// toggleSelected opens or closes the highlight panel of the selected
// article. The first opening records the article as viewed.
func (a *App) toggleSelected() tea.Cmd {
	art, ok := a.selectedArticle()
	if !ok {
		return nil
	}
	a.expanded[art.ID] = !a.expanded[art.ID]

	var cmd tea.Cmd
	if a.expanded[art.ID] && !a.viewed[art.ID] {
		a.viewed[art.ID] = true
		cmd = a.markViewed(art.ID)
	}
	a.refreshResults()
	return cmd
}

// turnPage moves to the next (delta > 0) or previous page when the response
// offers a cursor in that direction. The page number follows only once the
// page has loaded.
func (a *App) turnPage(delta int) tea.Cmd {
	if a.resultState() != ResultList {
		return nil
	}
	resp := a.results.Data
	cursor := resp.NextCursor()
	if delta < 0 {
		cursor = resp.PreviousCursor()
	}
	if cursor == "" {
		return nil
	}
	a.cursor = cursor
	a.pendingPage = max(a.page+delta, 1)
	return a.runSearch()
}

// selectedLinks lists the link targets of the selected article's body.
func (a *App) selectedLinks() []string {
	art, ok := a.selectedArticle()
	if !ok {
		return nil
	}
	body, ok := art.Highlight.Get(bodyField)
	if !ok {
		return nil
	}
	md, err := a.markup.ToMarkdown(body)
	if err != nil {
		a.logger.Warn("converting body for links", "id", art.ID, "error", err)
		return nil
	}
	return markup.Links(md)
}

func categoryLabel(c filters.CategoryOption) string {
	if c.Label != "" {
		return c.Label
	}
	return "#" + strconv.Itoa(c.Value)
}
