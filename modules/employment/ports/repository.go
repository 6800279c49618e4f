package ports

import (
	"context"
	"time"

	"github.com/davidkwan/orggraph/modules/employment/model"
)

// EmploymentRepository defines the storage operations the employment module
// relies on.
type EmploymentRepository interface {
	Upsert(ctx context.Context, in model.UpsertInput) (int64, error)

	GetByID(ctx context.Context, id int64) (*model.Enriched, error)
	ListByPersonID(ctx context.Context, personID int64) ([]model.Enriched, error)
	ListByPersonAndOrg(ctx context.Context, personID, orgID int64) ([]model.Employment, error)

	// ListAll returns the entire employment history, joined with person and
	// organization names. Callers building in-memory graphs use this as
	// their single source snapshot.
	ListAll(ctx context.Context) ([]model.Enriched, error)

	// ListActiveAt returns the employment rows whose [StartDate, EndDate]
	// interval contains at, joined with person and organization names.
	ListActiveAt(ctx context.Context, at time.Time) ([]model.Enriched, error)

	MostRecentEndDate(ctx context.Context) (*time.Time, error)

	// RefreshColleaguePairs rebuilds the derived colleague_pairs materialized
	// view. Ingest calls this once per batch, not per record.
	RefreshColleaguePairs(ctx context.Context) error

	// FindOverlapping finds people connected to sourcePersonIDs by working
	// somewhere in the same organization family during an overlapping
	// window. nameFilter, when non-empty, ignores limit.
	FindOverlapping(ctx context.Context, sourcePersonIDs []int64, nameFilter string, limit int) ([]model.OverlappingMatch, error)

	Stats(ctx context.Context) (model.Stats, error)
}
