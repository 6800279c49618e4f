package ports

import (
	"context"

	nrmodel "github.com/davidkwan/orggraph/modules/nameresolver/model"
	peoplemodel "github.com/davidkwan/orggraph/modules/people/model"
)

// PeopleFinder is the narrow slice of people storage the facade needs to
// resolve find_person_by_name, independent of any fuzzy expansion.
type PeopleFinder interface {
	ListByName(ctx context.Context, name string) ([]peoplemodel.Person, error)
}

// NameResolver is the narrow slice of C2 the facade needs to expand a bare
// name into the set of stored spellings before looking people up.
type NameResolver interface {
	ResolveSimilarNames(ctx context.Context, nameQuery string, opts nrmodel.Options) ([]string, error)
}
