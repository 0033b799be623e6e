package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// CategoriesParams filters the categories listing. Nil fields are omitted.
type CategoriesParams struct {
	Limit    *int
	Offset   *int
	Ordering string // "id" or "-id"
	Public   *bool
}

// Values encodes the parameters as a query string.
func (p CategoriesParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "limit", p.Limit)
	setInt(v, "offset", p.Offset)
	setString(v, "ordering", p.Ordering)
	if p.Public != nil {
		v.Set("public", strconv.FormatBool(*p.Public))
	}
	return v
}

// SearchArticlesParams describes one full-text search request.
type SearchArticlesParams struct {
	Search   string
	Category []int
	Locale   string
	Status   []ArticleStatus
	Cursor   string
}

// Enabled reports whether the parameters describe a request worth sending.
func (p SearchArticlesParams) Enabled() bool {
	return p.Search != ""
}

// Values encodes the parameters as a query string. Lists are comma-joined.
func (p SearchArticlesParams) Values() url.Values {
	v := url.Values{}
	setString(v, "search", p.Search)
	if len(p.Category) > 0 {
		ids := make([]string, len(p.Category))
		for i, id := range p.Category {
			ids[i] = strconv.Itoa(id)
		}
		v.Set("category", strings.Join(ids, ","))
	}
	setString(v, "locale", p.Locale)
	if len(p.Status) > 0 {
		st := make([]string, len(p.Status))
		for i, s := range p.Status {
			st[i] = string(s)
		}
		v.Set("status", strings.Join(st, ","))
	}
	setString(v, "cursor", p.Cursor)
	return v
}

// Instance fetches the installation metadata.
func (c *Client) Instance(ctx context.Context) (*Instance, error) {
	return get[Instance](ctx, c, "/instance/", nil)
}

// Categories fetches one page of categories.
func (c *Client) Categories(ctx context.Context, p CategoriesParams) (*CategoriesResponse, error) {
	return get[CategoriesResponse](ctx, c, "/categories/", p.Values())
}

// SearchArticles runs a full-text article search.
func (c *Client) SearchArticles(ctx context.Context, p SearchArticlesParams) (*SearchArticlesResponse, error) {
	return get[SearchArticlesResponse](ctx, c, "/search/articles/", p.Values())
}

// CursorFrom extracts the opaque cursor from a next/previous link. Links
// that carry a cursor query parameter yield that value; anything else is
// returned verbatim.
func CursorFrom(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme == "" && !strings.Contains(link, "?")) {
		return link
	}
	if c := u.Query().Get("cursor"); c != "" {
		return c
	}
	return link
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func setInt(v url.Values, key string, n *int) {
	if n != nil {
		v.Set(key, strconv.Itoa(*n))
	}
}
