package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ArticleStatus is the workflow state of a knowledge-base article.
type ArticleStatus string

const (
	StatusDraft      ArticleStatus = "DRAFT"
	StatusUnapproved ArticleStatus = "UNAPPROVED"
	StatusApproved   ArticleStatus = "APPROVED"
	StatusPublished  ArticleStatus = "PUBLISHED"
	StatusArchived   ArticleStatus = "ARCHIVED"
)

// AllStatuses lists every status in workflow order.
var AllStatuses = []ArticleStatus{
	StatusDraft,
	StatusUnapproved,
	StatusApproved,
	StatusPublished,
	StatusArchived,
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (ArticleStatus, error) {
	st := ArticleStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(AllStatuses, st) {
		return "", fmt.Errorf("unknown article status %q", s)
	}
	return st, nil
}

// Instance describes the knowledge-base installation.
type Instance struct {
	Locales       []string `json:"locales"`
	DefaultLocale string   `json:"default_locale"`
	Currency      string   `json:"currency"`
}

// Supports reports whether locale is one of the instance locales.
func (i *Instance) Supports(locale string) bool {
	if i == nil || locale == "" {
		return false
	}
	return slices.Contains(i.Locales, locale)
}

// Equal reports whether two instance descriptions carry the same data.
func (i *Instance) Equal(o *Instance) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.DefaultLocale == o.DefaultLocale &&
		i.Currency == o.Currency &&
		slices.Equal(i.Locales, o.Locales)
}

// Category is a section of the knowledge base with a localized name.
type Category struct {
	ID        int               `json:"id"`
	Name      map[string]string `json:"name"`
	Public    *bool             `json:"public,omitempty"`
	ImagePath string            `json:"image_path"`
}

// Label returns the category name for locale, or "" when it has none.
func (c Category) Label(locale string) string {
	return c.Name[locale]
}

// CategoriesResponse is one page of the categories listing.
type CategoriesResponse struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []Category `json:"results"`
}

// Find returns the category with the given id.
func (r *CategoriesResponse) Find(id int) (Category, bool) {
	if r == nil {
		return Category{}, false
	}
	for _, c := range r.Results {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// HighlightField is one matched field and the snippet around the match.
type HighlightField struct {
	Field   string
	Snippet string
}

// Highlight keeps highlight snippets in the order the server sent them.
type Highlight []HighlightField

// Get returns the snippet for field.
func (h Highlight) Get(field string) (string, bool) {
	for _, f := range h {
		if f.Field == field {
			return f.Snippet, true
		}
	}
	return "", false
}

func (h *Highlight) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*h = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("highlight: expected object, got %v", tok)
	}

	out := Highlight{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var snippet string
		if err := json.Unmarshal(raw, &snippet); err != nil {
			// Non-string values are shown as their JSON text.
			snippet = string(raw)
		}
		out = append(out, HighlightField{Field: key, Snippet: snippet})
	}
	*h = out
	return nil
}

func (h Highlight) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(f.Field)
		v, _ := json.Marshal(f.Snippet)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Article is a single search hit.
type Article struct {
	ID          int           `json:"id"`
	ExtID       *int          `json:"ext_id"`
	Rank        float64       `json:"rank"`
	Status      ArticleStatus `json:"status"`
	Highlight   Highlight     `json:"highlight"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	PublishedAt *time.Time    `json:"published_at"`
	Author      string        `json:"author"`
}

// SearchArticlesResponse is one page of search hits.
type SearchArticlesResponse struct {
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Article `json:"results"`
}

// NextCursor returns the cursor for the following page, if any.
func (r *SearchArticlesResponse) NextCursor() string {
	if r == nil || r.Next == nil {
		return ""
	}
	return CursorFrom(*r.Next)
}

// PreviousCursor returns the cursor for the preceding page, if any.
func (r *SearchArticlesResponse) PreviousCursor() string {
	if r == nil || r.Previous == nil {
		return ""
	}
	return CursorFrom(*r.Previous)
}
