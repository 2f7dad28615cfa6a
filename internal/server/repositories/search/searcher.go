// Package search lists recipe summaries filtered by free text, category and
// owner, newest first, one page at a time.
//
// Two strategies are provided. ComposedSearcher assembles its SQL from the
// filters that are actually present and hydrates category names and rating
// statistics in follow-up batch queries. FastSearcher is the fast path: a
// single fixed parametrized statement per pass that computes rating
// statistics inline and leaves the category list empty. Both must agree on
// filtering, ordering and total count.
package search

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

const (
	StrategyComposed = "composed"
	StrategyFast     = "fast"
)

type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.Page[models.RecipeSummary], error)
}

// likePattern turns a free-text term into an ILIKE substring pattern with
// LIKE metacharacters escaped.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// term returns the trimmed query text and whether it should filter at all.
func term(q models.SearchQuery) (string, bool) {
	t := strings.TrimSpace(q.Query)
	return t, t != ""
}
