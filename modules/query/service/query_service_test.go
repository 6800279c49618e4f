package service

import (
	"context"
	"testing"
	"time"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	nameresolvermodel "github.com/davidkwan/orggraph/modules/nameresolver/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
	"github.com/davidkwan/orggraph/modules/query/model"
	"github.com/stretchr/testify/require"
)

type stubQueryRepo struct {
	colleaguesByName map[string][]model.Colleague
	careerByName     map[string][]model.CareerEntry
	careerByID       map[int64][]model.CareerEntry
}

func (s *stubQueryRepo) FindColleaguesAtDate(ctx context.Context, personName string, targetDate time.Time) ([]model.Colleague, error) {
	return s.colleaguesByName[personName], nil
}

func (s *stubQueryRepo) FindAllColleagues(ctx context.Context, personName string) ([]model.AllColleague, error) {
	return nil, nil
}

func (s *stubQueryRepo) CareerProgressionByName(ctx context.Context, personName string) ([]model.CareerEntry, error) {
	return s.careerByName[personName], nil
}

func (s *stubQueryRepo) CareerProgressionByPersonID(ctx context.Context, personID int64) ([]model.CareerEntry, error) {
	return s.careerByID[personID], nil
}

func (s *stubQueryRepo) NetworkSnapshot(ctx context.Context, targetDate time.Time) ([]model.NetworkSnapshotEntry, error) {
	return nil, nil
}

type stubEmploymentLookup struct {
	byPerson map[int64][]employmentmodel.Enriched
}

func (s *stubEmploymentLookup) FindOverlapping(ctx context.Context, sourcePersonIDs []int64, nameFilter string, limit int) ([]employmentmodel.OverlappingMatch, error) {
	return nil, nil
}

func (s *stubEmploymentLookup) ListByPersonID(ctx context.Context, personID int64) ([]employmentmodel.Enriched, error) {
	return s.byPerson[personID], nil
}

type stubOrgAncestors struct{}

func (stubOrgAncestors) Ancestors(ctx context.Context, orgID int64) ([]orgmodel.Organization, error) {
	return []orgmodel.Organization{{ID: orgID - 1, Name: "Parent"}}, nil
}

type stubResolver struct {
	names []string
}

func (s stubResolver) ResolveSimilarNames(ctx context.Context, nameQuery string, opts nameresolvermodel.Options) ([]string, error) {
	return s.names, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("error", "console")
	require.NoError(t, err)
	return l
}

func rankPtr(r string) *string { return &r }

func TestQueryService_FindColleaguesAtDate_DedupesAcrossFuzzyNames(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
	shared := model.Colleague{Name: "Lim Hock Seng", Organization: "Ministry A", Rank: rankPtr("Manager"), StartDate: start, EndDate: end, OverlapDays: 300}

	repo := &stubQueryRepo{colleaguesByName: map[string][]model.Colleague{
		"Tan Wei Ming":  {shared},
		"Tan Wei Meng":  {shared},
	}}
	resolver := stubResolver{names: []string{"Tan Wei Ming", "Tan Wei Meng"}}

	svc := NewQueryService(repo, &stubEmploymentLookup{}, stubOrgAncestors{}, resolver, newTestLogger(t))

	result, err := svc.FindColleaguesAtDate(context.Background(), "Tan Wei Ming", start, model.Fuzzy(nameresolvermodel.DefaultOptions(3)))

	require.NoError(t, err)
	require.Len(t, result, 1)
}

func TestQueryService_CareerProgressionByName_ClustersSameRankAndEntity(t *testing.T) {
	entries := []model.CareerEntry{
		{PersonID: 1, OrgID: 10, EntityName: "Ministry A", Rank: rankPtr("Manager"),
			StartDate: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), SequenceNumber: 1},
		{PersonID: 1, OrgID: 10, EntityName: "Ministry A", Rank: rankPtr("Manager"),
			StartDate: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), SequenceNumber: 2},
	}
	repo := &stubQueryRepo{careerByName: map[string][]model.CareerEntry{"Tan Wei Ming": entries}}
	svc := NewQueryService(repo, &stubEmploymentLookup{}, stubOrgAncestors{}, stubResolver{}, newTestLogger(t))

	result, err := svc.CareerProgressionByName(context.Background(), "Tan Wei Ming", model.ExactMatch(), false, true)

	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, entries[0].StartDate, result[0].StartDate)
	require.Equal(t, entries[1].EndDate, result[0].EndDate)
	require.NotNil(t, result[0].TenureDays)
}

func TestQueryService_CareerProgressionByName_AttachesAncestors(t *testing.T) {
	entries := []model.CareerEntry{
		{PersonID: 1, OrgID: 10, EntityName: "Ministry A", SequenceNumber: 1},
	}
	repo := &stubQueryRepo{careerByName: map[string][]model.CareerEntry{"Tan Wei Ming": entries}}
	svc := NewQueryService(repo, &stubEmploymentLookup{}, stubOrgAncestors{}, stubResolver{}, newTestLogger(t))

	result, err := svc.CareerProgressionByName(context.Background(), "Tan Wei Ming", model.ExactMatch(), true, false)

	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Len(t, result[0].LinkedOrg, 1)
	require.Equal(t, "Parent", result[0].LinkedOrg[0].Name)
}

func TestQueryService_FindEmploymentByPersonID_MostRecentOnly(t *testing.T) {
	older := employmentmodel.Enriched{Employment: employmentmodel.Employment{
		StartDate: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	newer := employmentmodel.Enriched{Employment: employmentmodel.Employment{
		StartDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	lookup := &stubEmploymentLookup{byPerson: map[int64][]employmentmodel.Enriched{1: {older, newer}}}
	svc := NewQueryService(&stubQueryRepo{}, lookup, stubOrgAncestors{}, stubResolver{}, newTestLogger(t))

	result, err := svc.FindEmploymentByPersonID(context.Background(), 1, 50, true)

	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, newer.StartDate, result[0].StartDate)
}

func TestQueryService_FindColleaguesAtDate_NoFuzzyMatchesReturnsEmpty(t *testing.T) {
	svc := NewQueryService(&stubQueryRepo{}, &stubEmploymentLookup{}, stubOrgAncestors{}, stubResolver{names: nil}, newTestLogger(t))

	result, err := svc.FindColleaguesAtDate(context.Background(), "Nobody", time.Now(), model.Fuzzy(nameresolvermodel.DefaultOptions(3)))

	require.NoError(t, err)
	require.Empty(t, result)
}
