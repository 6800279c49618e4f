package ports

import (
	"context"
	"time"

	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
)

// EmploymentSource is the narrow slice of employment storage the graph
// builder needs: the full history, or a single point-in-time snapshot.
type EmploymentSource interface {
	ListAll(ctx context.Context) ([]employmentmodel.Enriched, error)
	ListActiveAt(ctx context.Context, at time.Time) ([]employmentmodel.Enriched, error)
}

// OrgHierarchySource is the narrow slice of organization storage the graph
// builder needs to add subunit-of edges.
type OrgHierarchySource interface {
	Hierarchy(ctx context.Context) ([]orgmodel.HierarchyNode, error)
}
