package ports

import (
	"context"

	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
)

// OrgLookup is the narrow slice of organization storage the disambiguator
// needs to resolve a record's top-level parent ministry.
type OrgLookup interface {
	GetByURL(ctx context.Context, url string) (*orgmodel.Organization, error)
	Ancestors(ctx context.Context, orgID int64) ([]orgmodel.Organization, error)
}
