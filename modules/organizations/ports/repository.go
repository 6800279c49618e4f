package ports

import (
	"context"

	"github.com/davidkwan/orggraph/modules/organizations/model"
)

// OrganizationRepository defines the storage operations the organizations
// module relies on.
type OrganizationRepository interface {
	Upsert(ctx context.Context, in model.UpsertInput) (int64, error)

	GetByID(ctx context.Context, id int64) (*model.Organization, error)
	GetByURL(ctx context.Context, url string) (*model.Organization, error)

	Children(ctx context.Context, parentOrgID int64) ([]model.Organization, error)
	Descendants(ctx context.Context, parentOrgID int64) ([]model.Organization, error)
	DescendantsAtDate(ctx context.Context, parentOrgID int64, at string) ([]model.Organization, error)
	Ancestors(ctx context.Context, orgID int64) ([]model.Organization, error)
	FindByDepth(ctx context.Context, depth int) ([]model.Organization, error)

	// Hierarchy returns every organization's id, name, and parent link --
	// the minimal projection the full-history graph needs to build subunit_of
	// edges without paying for the metadata column.
	Hierarchy(ctx context.Context) ([]model.HierarchyNode, error)

	// TimelineDatesForSubtree returns the sorted, deduplicated set of dates
	// (YYYY-MM-DD) where the subtree rooted at parentOrgID recorded a
	// first_observed or last_observed boundary.
	TimelineDatesForSubtree(ctx context.Context, parentOrgID int64) ([]string, error)

	DescendantsDiffBetweenDates(ctx context.Context, parentOrgID int64, startDate, endDate string) ([]model.DescendantDiffEntry, error)

	UpdateParentLink(ctx context.Context, orgID int64, parentOrgID *int64) error

	Stats(ctx context.Context) (model.Stats, error)
}

// CacheInvalidator is the narrow slice of the colleague-graph cache the
// organizations module needs to drop after a preseed or parent-link update
// changes the underlying hierarchy.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, reason string)
}
