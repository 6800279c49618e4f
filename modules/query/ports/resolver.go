package ports

import (
	"context"

	nameresolvermodel "github.com/davidkwan/orggraph/modules/nameresolver/model"
)

// NameResolver is the narrow slice of fuzzy name resolution the query
// service needs to expand a possibly-misspelled query into the set of
// stored names it should actually look up.
type NameResolver interface {
	ResolveSimilarNames(ctx context.Context, nameQuery string, opts nameresolvermodel.Options) ([]string, error)
}
