// Package filters keeps the locale, category and status filters in sync
// with the query string and with the reference data fetched from the API.
package filters

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pders01/kbsearch/internal/api"
)

// ErrUnsupportedLocale is returned when selecting a locale the instance does
// not offer.
var ErrUnsupportedLocale = errors.New("filters: unsupported locale")

// LanguageSetter switches the display language of the interface.
type LanguageSetter interface {
	SetLanguage(code string)
}

// LocaleOption is a selectable locale.
type LocaleOption struct {
	Value string
	Label string
}

// CategoryOption is a selectable category labelled in the current locale.
type CategoryOption struct {
	Value int
	Label string
}

// Coordinator owns the filter selections. The query string is authoritative
// when reference data arrives; afterwards user selections win and are
// written back to it.
type Coordinator struct {
	url  *URLState
	lang LanguageSetter

	instance   *api.Instance
	categories []api.Category
	catsLoaded bool

	locale   string
	selected []int
	statuses []api.ArticleStatus
}

// NewCoordinator creates a coordinator over state. lang may be nil.
func NewCoordinator(state *URLState, lang LanguageSetter) *Coordinator {
	if state == nil {
		state = NewURLState()
	}
	return &Coordinator{
		url:      state,
		lang:     lang,
		selected: ParseIDs(state.Get(ParamCategory)),
		statuses: ParseStatuses(state.Get(ParamStatus)),
	}
}

// URL returns the query string the coordinator writes to.
func (c *Coordinator) URL() *URLState {
	return c.url
}

// OnInstance applies newly fetched instance metadata. The query-string
// locale is kept when the instance supports it, otherwise the default locale
// is selected; the query string itself is not rewritten. It reports whether
// anything changed: equal metadata arriving again is a no-op.
func (c *Coordinator) OnInstance(inst *api.Instance) bool {
	if inst == nil || c.instance.Equal(inst) {
		return false
	}
	c.instance = inst

	locale := c.url.Get(ParamLocale)
	if !inst.Supports(locale) {
		locale = inst.DefaultLocale
	}
	c.locale = locale
	c.setLanguage(locale)
	return true
}

// OnCategories applies a newly fetched category listing and resolves the
// query-string category ids against it.
func (c *Coordinator) OnCategories(resp *api.CategoriesResponse) {
	if resp == nil {
		return
	}
	c.categories = slices.Clone(resp.Results)
	c.catsLoaded = true
	c.selected = ParseIDs(c.url.Get(ParamCategory))
}

// SelectLocale is a user locale change.
func (c *Coordinator) SelectLocale(code string) error {
	if !c.instance.Supports(code) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLocale, code)
	}
	c.locale = code
	c.url.Set(ParamLocale, code)
	c.setLanguage(code)
	return nil
}

// SelectCategories is a user category change. An empty selection clears the
// query parameter.
func (c *Coordinator) SelectCategories(ids []int) {
	c.selected = dedupe(ids)
	c.url.Set(ParamCategory, JoinIDs(c.selected))
}

// SelectStatuses is a user status-filter change.
func (c *Coordinator) SelectStatuses(statuses []api.ArticleStatus) {
	c.statuses = dedupe(statuses)
	parts := make([]string, len(c.statuses))
	for i, s := range c.statuses {
		parts[i] = string(s)
	}
	c.url.Set(ParamStatus, strings.Join(parts, ","))
}

// SetSearchText mirrors the raw search input into the query string.
func (c *Coordinator) SetSearchText(text string) {
	c.url.Set(ParamSearch, text)
}

// SearchText returns the search phrase from the query string.
func (c *Coordinator) SearchText() string {
	return c.url.Get(ParamSearch)
}

// Locale returns the selected locale, or "" before instance metadata
// arrives.
func (c *Coordinator) Locale() string {
	return c.locale
}

// Instance returns the last applied instance metadata.
func (c *Coordinator) Instance() *api.Instance {
	return c.instance
}

// InstanceLoaded reports whether instance metadata has arrived.
func (c *Coordinator) InstanceLoaded() bool {
	return c.instance != nil
}

// CategoriesLoaded reports whether the category listing has arrived.
func (c *Coordinator) CategoriesLoaded() bool {
	return c.catsLoaded
}

// Loading reports whether either reference dataset is still pending.
func (c *Coordinator) Loading() bool {
	return !c.InstanceLoaded() || !c.CategoriesLoaded()
}

// LocaleOptions lists the instance locales with their native names.
func (c *Coordinator) LocaleOptions() []LocaleOption {
	if c.instance == nil {
		return nil
	}
	opts := make([]LocaleOption, len(c.instance.Locales))
	for i, code := range c.instance.Locales {
		opts[i] = LocaleOption{Value: code, Label: LocaleLabel(code)}
	}
	return opts
}

// CategoryOptions lists every category labelled in the selected locale.
func (c *Coordinator) CategoryOptions() []CategoryOption {
	opts := make([]CategoryOption, len(c.categories))
	for i, cat := range c.categories {
		opts[i] = CategoryOption{Value: cat.ID, Label: cat.Label(c.locale)}
	}
	return opts
}

// SelectedCategories returns the selected categories labelled in the
// selected locale. Labels are looked up on every call so a locale change
// relabels them. Ids missing from the listing get an empty label, and
// nothing is returned until the listing has arrived.
func (c *Coordinator) SelectedCategories() []CategoryOption {
	if !c.catsLoaded {
		return nil
	}
	out := make([]CategoryOption, 0, len(c.selected))
	for _, id := range c.selected {
		opt := CategoryOption{Value: id}
		for _, cat := range c.categories {
			if cat.ID == id {
				opt.Label = cat.Label(c.locale)
				break
			}
		}
		out = append(out, opt)
	}
	return out
}

// SelectedCategoryIDs returns the selected category ids.
func (c *Coordinator) SelectedCategoryIDs() []int {
	return slices.Clone(c.selected)
}

// Statuses returns the selected status filter.
func (c *Coordinator) Statuses() []api.ArticleStatus {
	return slices.Clone(c.statuses)
}

// SearchParams builds the search request for text and cursor.
func (c *Coordinator) SearchParams(text, cursor string) api.SearchArticlesParams {
	return api.SearchArticlesParams{
		Search:   text,
		Category: c.SelectedCategoryIDs(),
		Locale:   c.locale,
		Status:   c.Statuses(),
		Cursor:   cursor,
	}
}

func (c *Coordinator) setLanguage(code string) {
	if c.lang != nil {
		c.lang.SetLanguage(code)
	}
}

// ParseIDs parses a comma-separated id list. Entries that are not integers
// are skipped, as are repeats.
func ParseIDs(s string) []int {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// JoinIDs renders ids as a comma-separated list.
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// ParseStatuses parses a comma-separated status list, skipping unknown
// names.
func ParseStatuses(s string) []api.ArticleStatus {
	var out []api.ArticleStatus
	for _, part := range strings.Split(s, ",") {
		st, err := api.ParseStatus(part)
		if err != nil {
			continue
		}
		if !slices.Contains(out, st) {
			out = append(out, st)
		}
	}
	return out
}

func dedupe[T comparable](in []T) []T {
	var out []T
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
