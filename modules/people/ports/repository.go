package ports

import (
	"context"
	"time"

	"github.com/davidkwan/orggraph/modules/people/model"
)

// PeopleRepository defines the storage operations the people module relies on.
type PeopleRepository interface {
	// Upsert creates a person or, if (name, disambiguation_key) already
	// exists, merges the given fields into the existing row. Returns the id.
	Upsert(ctx context.Context, in model.UpsertInput) (int64, error)

	GetByID(ctx context.Context, id int64) (*model.Person, error)
	GetByName(ctx context.Context, name string) (*model.Person, error)

	// ListByName returns every identity disambiguated under name.
	ListByName(ctx context.Context, name string) ([]model.Person, error)

	// SearchFuzzy runs a trigram-similarity search over name, falling back to
	// ILIKE substring matching when pg_trgm is unavailable.
	SearchFuzzy(ctx context.Context, query string, limit int, minSimilarity float64) ([]model.SearchMatch, error)

	// SearchFuzzyInRange is SearchFuzzy restricted to people created within
	// [from, to].
	SearchFuzzyInRange(ctx context.Context, query string, from, to time.Time, limit int, minSimilarity float64) ([]model.SearchMatch, error)

	Stats(ctx context.Context) (model.NameStats, error)
}
