package ports

import (
	"context"

	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
)

// OrgAncestorLookup is the narrow slice of organization storage the query
// service needs to attach a career entry's parent-organization chain.
type OrgAncestorLookup interface {
	Ancestors(ctx context.Context, orgID int64) ([]orgmodel.Organization, error)
}
