// Package mock provides function-field test doubles.
package mock

import (
	"context"

	"github.com/pders01/kbsearch/internal/api"
	"github.com/pders01/kbsearch/internal/query"
)

var _ query.API = (*API)(nil)

// API is a mock implementation of query.API.
type API struct {
	InstanceFn       func(ctx context.Context) (*api.Instance, error)
	CategoriesFn     func(ctx context.Context, p api.CategoriesParams) (*api.CategoriesResponse, error)
	SearchArticlesFn func(ctx context.Context, p api.SearchArticlesParams) (*api.SearchArticlesResponse, error)
}

func (m *API) Instance(ctx context.Context) (*api.Instance, error) {
	return m.InstanceFn(ctx)
}

func (m *API) Categories(ctx context.Context, p api.CategoriesParams) (*api.CategoriesResponse, error) {
	return m.CategoriesFn(ctx, p)
}

func (m *API) SearchArticles(ctx context.Context, p api.SearchArticlesParams) (*api.SearchArticlesResponse, error) {
	return m.SearchArticlesFn(ctx, p)
}
