package service

import (
	"context"
	"testing"
	"time"

	"github.com/davidkwan/orggraph/modules/disambiguation/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrgLookup struct {
	byURL     map[string]*orgmodel.Organization
	ancestors map[int64][]orgmodel.Organization
}

func (s *stubOrgLookup) GetByURL(ctx context.Context, url string) (*orgmodel.Organization, error) {
	if org, ok := s.byURL[url]; ok {
		return org, nil
	}
	return nil, orgmodel.ErrOrganizationNotFound
}

func (s *stubOrgLookup) Ancestors(ctx context.Context, orgID int64) ([]orgmodel.Organization, error) {
	return s.ancestors[orgID], nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDisambiguator_SplitsOverlappingFullTimeRoles(t *testing.T) {
	orgs := &stubOrgLookup{
		byURL: map[string]*orgmodel.Organization{
			"https://a": {ID: 1, Name: "Ministry A"},
			"https://b": {ID: 2, Name: "Ministry B"},
		},
	}
	d := NewDisambiguator(orgs)

	records := []model.RawRecord{
		{OrgURL: "https://a", Rank: "Manager", StartDate: date(2020, 1, 1), EndDate: date(2021, 1, 1)},
		{OrgURL: "https://b", Rank: "Manager", StartDate: date(2020, 6, 1), EndDate: date(2021, 6, 1)},
	}

	clusters, err := d.ClusterEmploymentRecords(context.Background(), records)

	require.NoError(t, err)
	assert.Len(t, clusters, 2, "overlapping full-time roles cannot belong to the same person")
}

func TestDisambiguator_MergesImmediateSuccessionInSameMinistry(t *testing.T) {
	orgs := &stubOrgLookup{
		byURL: map[string]*orgmodel.Organization{
			"https://a": {ID: 1, Name: "Ministry A"},
		},
	}
	d := NewDisambiguator(orgs)

	records := []model.RawRecord{
		{OrgURL: "https://a", Rank: "Manager", StartDate: date(2020, 1, 1), EndDate: date(2021, 1, 1)},
		{OrgURL: "https://a", Rank: "Senior Manager", StartDate: date(2021, 1, 15), EndDate: date(2022, 1, 1)},
	}

	clusters, err := d.ClusterEmploymentRecords(context.Background(), records)

	require.NoError(t, err)
	require.Len(t, clusters, 1, "a promotion in immediate succession in the same ministry should merge into one person")
	assert.Len(t, clusters[0], 2)
}

func TestDisambiguator_PermitsOverlapForBoardMemberRoles(t *testing.T) {
	orgs := &stubOrgLookup{
		byURL: map[string]*orgmodel.Organization{
			"https://a": {ID: 1, Name: "Ministry A"},
			"https://b": {ID: 2, Name: "Ministry A"},
		},
	}
	d := NewDisambiguator(orgs)

	records := []model.RawRecord{
		{OrgURL: "https://a", Rank: "Director", StartDate: date(2020, 1, 1), EndDate: date(2022, 1, 1)},
		{OrgURL: "https://b", Rank: "Board Member", StartDate: date(2020, 6, 1), EndDate: date(2021, 6, 1)},
	}

	clusters, err := d.ClusterEmploymentRecords(context.Background(), records)

	require.NoError(t, err)
	require.Len(t, clusters, 1, "a permissible-overlap role should not force a hard conflict")
}

func TestDisambiguator_IllogicalDemotionSplitsDistantUnrelatedRoles(t *testing.T) {
	orgs := &stubOrgLookup{
		byURL: map[string]*orgmodel.Organization{
			"https://a": {ID: 1, Name: "Ministry A"},
			"https://b": {ID: 2, Name: "Ministry B"},
		},
	}
	d := NewDisambiguator(orgs)

	records := []model.RawRecord{
		{OrgURL: "https://a", Rank: "Chief", StartDate: date(2015, 1, 1), EndDate: date(2016, 1, 1)},
		{OrgURL: "https://b", Rank: "Intern", StartDate: date(2020, 1, 1), EndDate: date(2021, 1, 1)},
	}

	clusters, err := d.ClusterEmploymentRecords(context.Background(), records)

	require.NoError(t, err)
	assert.Len(t, clusters, 2, "a huge unexplained rank drop across different ministries should not merge")
}
