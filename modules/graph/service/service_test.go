package service

import (
	"context"
	"testing"
	"time"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	"github.com/davidkwan/orggraph/modules/graph/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
	"github.com/stretchr/testify/require"
)

type stubEmploymentSource struct {
	all []employmentmodel.Enriched
}

func (s *stubEmploymentSource) ListAll(ctx context.Context) ([]employmentmodel.Enriched, error) {
	return s.all, nil
}

func (s *stubEmploymentSource) ListActiveAt(ctx context.Context, at time.Time) ([]employmentmodel.Enriched, error) {
	var active []employmentmodel.Enriched
	for _, e := range s.all {
		if !at.Before(e.StartDate) && !at.After(e.EndDate) {
			active = append(active, e)
		}
	}
	return active, nil
}

type stubOrgHierarchySource struct {
	nodes []orgmodel.HierarchyNode
}

func (s *stubOrgHierarchySource) Hierarchy(ctx context.Context) ([]orgmodel.HierarchyNode, error) {
	return s.nodes, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func emp(personID, orgID int64, personName, orgName string, start, end time.Time) employmentmodel.Enriched {
	e := employmentmodel.Enriched{
		PersonName: personName,
		OrgName:    orgName,
	}
	e.PersonID = personID
	e.OrgID = orgID
	e.StartDate = start
	e.EndDate = end
	return e
}

func newTestService(t *testing.T, employment []employmentmodel.Enriched, hierarchy []orgmodel.HierarchyNode) *GraphService {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return NewGraphService(&stubEmploymentSource{all: employment}, &stubOrgHierarchySource{nodes: hierarchy}, log, nil, "")
}

func TestGraphService_FindShortestPath_ConnectsThroughSharedOrg(t *testing.T) {
	employment := []employmentmodel.Enriched{
		emp(1, 10, "Alice", "Ministry A", date(2018, 1, 1), date(2019, 1, 1)),
		emp(2, 10, "Bob", "Ministry A", date(2020, 1, 1), date(2021, 1, 1)),
	}
	svc := newTestService(t, employment, nil)

	path, err := svc.FindShortestPath(context.Background(), []int64{1}, []int64{2}, true)

	require.NoError(t, err)
	require.Len(t, path, 2)
	require.Equal(t, "Alice", path[0].Name)
	require.Equal(t, "Bob", path[1].Name)
}

func TestGraphService_FindShortestPath_NoPathWhenDisconnected(t *testing.T) {
	employment := []employmentmodel.Enriched{
		emp(1, 10, "Alice", "Ministry A", date(2018, 1, 1), date(2019, 1, 1)),
		emp(2, 20, "Bob", "Ministry B", date(2020, 1, 1), date(2021, 1, 1)),
	}
	svc := newTestService(t, employment, nil)

	path, err := svc.FindShortestPath(context.Background(), []int64{1}, []int64{2}, true)

	require.NoError(t, err)
	require.Empty(t, path)
}

func TestGraphService_FindShortestTemporalPath_WeavesInConnectingOrg(t *testing.T) {
	employment := []employmentmodel.Enriched{
		emp(1, 10, "Alice", "Ministry A", date(2018, 1, 1), date(2020, 1, 1)),
		emp(2, 10, "Bob", "Ministry A", date(2019, 1, 1), date(2021, 1, 1)),
	}
	svc := newTestService(t, employment, nil)

	path, err := svc.FindShortestTemporalPath(context.Background(), []int64{1}, []int64{2})

	require.NoError(t, err)
	require.Len(t, path, 3)
	require.Equal(t, model.PersonNode, path[0].Kind)
	require.Equal(t, model.OrgNode, path[1].Kind)
	require.Equal(t, "Ministry A", path[1].Name)
	require.Equal(t, model.PersonNode, path[2].Kind)
}

func TestGraphService_FindShortestTemporalPath_NoOverlapNoPath(t *testing.T) {
	employment := []employmentmodel.Enriched{
		emp(1, 10, "Alice", "Ministry A", date(2010, 1, 1), date(2011, 1, 1)),
		emp(2, 10, "Bob", "Ministry A", date(2020, 1, 1), date(2021, 1, 1)),
	}
	svc := newTestService(t, employment, nil)

	path, err := svc.FindShortestTemporalPath(context.Background(), []int64{1}, []int64{2})

	require.NoError(t, err)
	require.Empty(t, path)
}

func TestGraphService_CalculateCentralityMetrics_CliqueHasZeroBetweenness(t *testing.T) {
	employment := []employmentmodel.Enriched{
		emp(1, 10, "Alice", "Ministry A", date(2018, 1, 1), date(2020, 1, 1)),
		emp(2, 10, "Bob", "Ministry A", date(2018, 1, 1), date(2020, 1, 1)),
		emp(3, 10, "Carol", "Ministry A", date(2018, 1, 1), date(2020, 1, 1)),
		emp(4, 20, "Dave", "Ministry B", date(2018, 1, 1), date(2020, 1, 1)),
	}
	svc := newTestService(t, employment, nil)

	metrics, err := svc.CalculateCentralityMetrics(context.Background())

	require.NoError(t, err)
	for _, v := range metrics.Betweenness {
		require.Zero(t, v)
	}
	require.InDelta(t, 2.0/3.0, metrics.Degree[1], 1e-9)
	require.InDelta(t, 0, metrics.Degree[4], 1e-9)
}

func TestGraphService_CachesGraphAcrossCalls(t *testing.T) {
	employment := []employmentmodel.Enriched{
		emp(1, 10, "Alice", "Ministry A", date(2018, 1, 1), date(2019, 1, 1)),
	}
	svc := newTestService(t, employment, nil)

	first, err := svc.getFullGraph(context.Background())
	require.NoError(t, err)

	svc.employment = &stubEmploymentSource{} // mutate the source; cache should hide this
	second, err := svc.getFullGraph(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)

	svc.Invalidate(context.Background(), "test")
	third, err := svc.getFullGraph(context.Background())
	require.NoError(t, err)
	require.NotSame(t, first, third)
}
