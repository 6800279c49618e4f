package ports

import (
	"context"

	peoplemodel "github.com/davidkwan/orggraph/modules/people/model"
)

// PeopleSearcher is the narrow slice of people storage the resolver needs
// for its trigram prefilter stage.
type PeopleSearcher interface {
	SearchFuzzy(ctx context.Context, query string, limit int, minSimilarity float64) ([]peoplemodel.SearchMatch, error)
}
