package service

import (
	"context"
	"testing"
	"time"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	facademodel "github.com/davidkwan/orggraph/modules/facade/model"
	graphservice "github.com/davidkwan/orggraph/modules/graph/service"
	nrmodel "github.com/davidkwan/orggraph/modules/nameresolver/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
	orgservice "github.com/davidkwan/orggraph/modules/organizations/service"
	peoplemodel "github.com/davidkwan/orggraph/modules/people/model"
	querymodel "github.com/davidkwan/orggraph/modules/query/model"
	queryservice "github.com/davidkwan/orggraph/modules/query/service"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("error", "console")
	require.NoError(t, err)
	return l
}

// --- stub query-side dependencies (mirrors modules/query/service's own stubs) ---

type stubQueryRepo struct {
	careerByPersonID map[int64][]querymodel.CareerEntry
}

func (s *stubQueryRepo) FindColleaguesAtDate(ctx context.Context, personName string, targetDate time.Time) ([]querymodel.Colleague, error) {
	return nil, nil
}
func (s *stubQueryRepo) FindAllColleagues(ctx context.Context, personName string) ([]querymodel.AllColleague, error) {
	return nil, nil
}
func (s *stubQueryRepo) CareerProgressionByName(ctx context.Context, personName string) ([]querymodel.CareerEntry, error) {
	return nil, nil
}
func (s *stubQueryRepo) CareerProgressionByPersonID(ctx context.Context, personID int64) ([]querymodel.CareerEntry, error) {
	return s.careerByPersonID[personID], nil
}
func (s *stubQueryRepo) NetworkSnapshot(ctx context.Context, targetDate time.Time) ([]querymodel.NetworkSnapshotEntry, error) {
	return nil, nil
}

type stubEmploymentLookup struct{}

func (s *stubEmploymentLookup) FindOverlapping(ctx context.Context, sourcePersonIDs []int64, nameFilter string, limit int) ([]employmentmodel.OverlappingMatch, error) {
	return nil, nil
}
func (s *stubEmploymentLookup) ListByPersonID(ctx context.Context, personID int64) ([]employmentmodel.Enriched, error) {
	return nil, nil
}

type stubResolver struct {
	names []string
}

func (s *stubResolver) ResolveSimilarNames(ctx context.Context, nameQuery string, opts nrmodel.Options) ([]string, error) {
	if s.names != nil {
		return s.names, nil
	}
	return []string{nameQuery}, nil
}

// --- stub organization repository, full ports.OrganizationRepository ---

type stubOrgRepo struct {
	ancestors       map[int64][]orgmodel.Organization
	subtreeAtDate   map[string][]orgmodel.Organization
	timelineDates   []string
}

func (s *stubOrgRepo) Upsert(ctx context.Context, in orgmodel.UpsertInput) (int64, error) { return 0, nil }
func (s *stubOrgRepo) GetByID(ctx context.Context, id int64) (*orgmodel.Organization, error) {
	return nil, orgmodel.ErrOrganizationNotFound
}
func (s *stubOrgRepo) GetByURL(ctx context.Context, url string) (*orgmodel.Organization, error) {
	return nil, orgmodel.ErrOrganizationNotFound
}
func (s *stubOrgRepo) Children(ctx context.Context, parentOrgID int64) ([]orgmodel.Organization, error) {
	return nil, nil
}
func (s *stubOrgRepo) Descendants(ctx context.Context, parentOrgID int64) ([]orgmodel.Organization, error) {
	return nil, nil
}
func (s *stubOrgRepo) DescendantsAtDate(ctx context.Context, parentOrgID int64, at string) ([]orgmodel.Organization, error) {
	return s.subtreeAtDate[at], nil
}
func (s *stubOrgRepo) Ancestors(ctx context.Context, orgID int64) ([]orgmodel.Organization, error) {
	return s.ancestors[orgID], nil
}
func (s *stubOrgRepo) FindByDepth(ctx context.Context, depth int) ([]orgmodel.Organization, error) {
	return nil, nil
}
func (s *stubOrgRepo) Hierarchy(ctx context.Context) ([]orgmodel.HierarchyNode, error) { return nil, nil }
func (s *stubOrgRepo) TimelineDatesForSubtree(ctx context.Context, parentOrgID int64) ([]string, error) {
	return s.timelineDates, nil
}
func (s *stubOrgRepo) DescendantsDiffBetweenDates(ctx context.Context, parentOrgID int64, startDate, endDate string) ([]orgmodel.DescendantDiffEntry, error) {
	return nil, nil
}
func (s *stubOrgRepo) UpdateParentLink(ctx context.Context, orgID int64, parentOrgID *int64) error {
	return nil
}
func (s *stubOrgRepo) Stats(ctx context.Context) (orgmodel.Stats, error) { return orgmodel.Stats{}, nil }

// noopCacheInvalidator is a no-op ports.CacheInvalidator for facade tests
// that never exercise a preseed or parent-link mutation.
type noopCacheInvalidator struct{}

func (noopCacheInvalidator) Invalidate(ctx context.Context, reason string) {}

// --- stub facade-level dependencies ---

type stubPeopleFinder struct {
	byName map[string][]peoplemodel.Person
}

func (s *stubPeopleFinder) ListByName(ctx context.Context, name string) ([]peoplemodel.Person, error) {
	return s.byName[name], nil
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newTestFacade(t *testing.T, orgRepo *stubOrgRepo, careerByPersonID map[int64][]querymodel.CareerEntry, peopleByName map[string][]peoplemodel.Person, resolver *stubResolver) *Facade {
	t.Helper()
	log := newTestLogger(t)

	query := queryservice.NewQueryService(&stubQueryRepo{careerByPersonID: careerByPersonID}, &stubEmploymentLookup{}, orgRepo, resolver, log)
	orgs := orgservice.NewOrganizationService(orgRepo, nil, noopCacheInvalidator{}, log)
	graph := graphservice.NewGraphService(nil, nil, log, nil, "")

	return New(query, graph, orgs, nil, &stubPeopleFinder{byName: peopleByName}, resolver, log)
}

func TestFacade_FindPersonByName_AttachesAncestorsOfMostRecentEmployment(t *testing.T) {
	orgRepo := &stubOrgRepo{
		ancestors: map[int64][]orgmodel.Organization{
			20: {{ID: 2, Name: "Division"}, {ID: 1, Name: "Ministry"}},
		},
	}
	careers := map[int64][]querymodel.CareerEntry{
		42: {
			{PersonID: 42, OrgID: 10, EntityName: "Old Dept", StartDate: date(2015, 1, 1), EndDate: date(2018, 1, 1)},
			{PersonID: 42, OrgID: 20, EntityName: "New Dept", StartDate: date(2018, 1, 1), EndDate: date(2022, 1, 1)},
		},
	}
	people := map[string][]peoplemodel.Person{
		"Tan Wei Ming": {{ID: 42, Name: "Tan Wei Ming"}},
	}

	f := newTestFacade(t, orgRepo, careers, people, &stubResolver{})

	results, err := f.FindPersonByName(context.Background(), "Tan Wei Ming", false, nrmodel.Options{}, false, true)

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, []orgmodel.Organization{{ID: 2, Name: "Division"}, {ID: 1, Name: "Ministry"}}, results[0].Ancestors)
}

func TestFacade_FindPersonByName_FallsBackToUnitAloneWhenNoAncestors(t *testing.T) {
	orgRepo := &stubOrgRepo{ancestors: map[int64][]orgmodel.Organization{}}
	careers := map[int64][]querymodel.CareerEntry{
		42: {{PersonID: 42, OrgID: 99, EntityName: "Top Level Ministry", StartDate: date(2020, 1, 1), EndDate: date(2022, 1, 1)}},
	}
	people := map[string][]peoplemodel.Person{"Tan Wei Ming": {{ID: 42, Name: "Tan Wei Ming"}}}

	f := newTestFacade(t, orgRepo, careers, people, &stubResolver{})

	results, err := f.FindPersonByName(context.Background(), "Tan Wei Ming", false, nrmodel.Options{}, false, true)

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, []orgmodel.Organization{{ID: 99, Name: "Top Level Ministry"}}, results[0].Ancestors)
}

func TestFacade_FindPersonByName_DedupesAcrossFuzzyNames(t *testing.T) {
	orgRepo := &stubOrgRepo{}
	people := map[string][]peoplemodel.Person{
		"Tan Wei Ming": {{ID: 42, Name: "Tan Wei Ming"}},
		"Tan Wei Min":  {{ID: 42, Name: "Tan Wei Ming"}},
	}
	resolver := &stubResolver{names: []string{"Tan Wei Ming", "Tan Wei Min"}}

	f := newTestFacade(t, orgRepo, nil, people, resolver)

	results, err := f.FindPersonByName(context.Background(), "Tan Wei Ming", true, nrmodel.Options{}, false, false)

	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestFacade_GetOrgTimelineDates_CollapsesAdjacentIdenticalSets(t *testing.T) {
	orgRepo := &stubOrgRepo{
		timelineDates: []string{"2020-01-01", "2020-06-01", "2021-01-01"},
		subtreeAtDate: map[string][]orgmodel.Organization{
			"2020-01-01": {{ID: 1}, {ID: 2}},
			"2020-06-01": {{ID: 1}, {ID: 2}},
			"2021-01-01": {{ID: 1}},
		},
	}
	f := newTestFacade(t, orgRepo, nil, nil, &stubResolver{})

	dates, err := f.GetOrgTimelineDates(context.Background(), 1, true)

	require.NoError(t, err)
	require.Equal(t, []string{"2020-01-01", "2021-01-01"}, dates)
}

func TestFacade_ShortestPath_RejectsNilSourceIDs(t *testing.T) {
	careers := map[int64][]querymodel.CareerEntry{
		1: {{PersonID: 1, EntityName: "Ministry A"}},
	}
	f := newTestFacade(t, &stubOrgRepo{}, careers, nil, &stubResolver{})

	// Graph is uninitialized (nil sources), so exercise the validation path
	// instead of a real traversal.
	_, err := f.ShortestPath(context.Background(), nil, []int64{1}, false, false, true)
	require.ErrorIs(t, err, facademodel.ErrNoSourceOrTarget)
}

func TestFacade_FindMostRecentEmployment_NotFoundWhenNoHistory(t *testing.T) {
	f := newTestFacade(t, &stubOrgRepo{}, nil, nil, &stubResolver{})

	_, err := f.FindMostRecentEmployment(context.Background(), 999)

	require.ErrorIs(t, err, facademodel.ErrPersonNotFound)
}
