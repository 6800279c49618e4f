package ports

import (
	"context"

	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
)

// EmploymentLookup is the narrow slice of employment storage the query
// service needs for temporal-overlap and person-history lookups that don't
// go through one of the dedicated storage functions.
type EmploymentLookup interface {
	FindOverlapping(ctx context.Context, sourcePersonIDs []int64, nameFilter string, limit int) ([]employmentmodel.OverlappingMatch, error)
	ListByPersonID(ctx context.Context, personID int64) ([]employmentmodel.Enriched, error)
}
