package query

import (
	"context"
	"errors"
	"net/url"

	"github.com/pders01/kbsearch/internal/api"
)

// ErrDisabled is returned for a search that has no phrase.
var ErrDisabled = errors.New("query: search disabled without a phrase")

// API is the set of endpoints the cached client wraps.
type API interface {
	Instance(ctx context.Context) (*api.Instance, error)
	Categories(ctx context.Context, p api.CategoriesParams) (*api.CategoriesResponse, error)
	SearchArticles(ctx context.Context, p api.SearchArticlesParams) (*api.SearchArticlesResponse, error)
}

// InstanceKey is the cache key of the instance metadata.
func InstanceKey() Key {
	return "/instance/"
}

// CategoriesKey is the cache key of a categories listing.
func CategoriesKey(p api.CategoriesParams) Key {
	return keyOf("/categories/", p.Values())
}

// SearchKey is the cache key of an article search.
func SearchKey(p api.SearchArticlesParams) Key {
	return keyOf("/search/articles/", p.Values())
}

// url.Values.Encode sorts by parameter name, so equal parameters give
// equal keys.
func keyOf(endpoint string, v url.Values) Key {
	if enc := v.Encode(); enc != "" {
		return Key(endpoint + "?" + enc)
	}
	return Key(endpoint)
}

// Client serves API requests through a Cache.
type Client struct {
	api   API
	cache *Cache
}

// NewClient wraps endpoints with cache.
func NewClient(endpoints API, cache *Cache) *Client {
	return &Client{api: endpoints, cache: cache}
}

// Cache returns the underlying cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Instance returns the instance metadata.
func (c *Client) Instance(ctx context.Context) (*api.Instance, error) {
	return Do(ctx, c.cache, InstanceKey(), c.api.Instance)
}

// Categories returns a categories listing.
func (c *Client) Categories(ctx context.Context, p api.CategoriesParams) (*api.CategoriesResponse, error) {
	return Do(ctx, c.cache, CategoriesKey(p), func(ctx context.Context) (*api.CategoriesResponse, error) {
		return c.api.Categories(ctx, p)
	})
}

// SearchArticles runs a search. It never reaches the API for an empty phrase.
func (c *Client) SearchArticles(ctx context.Context, p api.SearchArticlesParams) (*api.SearchArticlesResponse, error) {
	if !p.Enabled() {
		return nil, ErrDisabled
	}
	return Do(ctx, c.cache, SearchKey(p), func(ctx context.Context) (*api.SearchArticlesResponse, error) {
		return c.api.SearchArticles(ctx, p)
	})
}

// Close drops all cached data.
func (c *Client) Close() error {
	c.cache.Clear()
	return nil
}
