package ports

import (
	"context"

	disambiguationmodel "github.com/davidkwan/orggraph/modules/disambiguation/model"
)

// Disambiguator is the narrow slice of identity clustering Ingest needs:
// given one name's raw employment records, split them into the distinct
// people they most plausibly belong to.
type Disambiguator interface {
	ClusterEmploymentRecords(ctx context.Context, raw []disambiguationmodel.RawRecord) ([]disambiguationmodel.Cluster, error)
}

// CacheInvalidator is the narrow slice of the colleague-graph cache Ingest
// needs to drop after a batch changes the underlying employment history.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, reason string)
}

// PairsRefresher rebuilds the derived colleague_pairs materialized view
// after a batch of employment rows lands.
type PairsRefresher interface {
	RefreshColleaguePairs(ctx context.Context) error
}
