package service

import (
	"context"
	"testing"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	"github.com/davidkwan/orggraph/modules/organizations/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOrganizationRepository implements ports.OrganizationRepository for
// tests that exercise a read path the service serves straight off its
// injected repo, without needing a transaction.
type mockOrganizationRepository struct{}

func (m *mockOrganizationRepository) Upsert(ctx context.Context, in model.UpsertInput) (int64, error) {
	return 0, nil
}
func (m *mockOrganizationRepository) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	return nil, model.ErrOrganizationNotFound
}
func (m *mockOrganizationRepository) GetByURL(ctx context.Context, url string) (*model.Organization, error) {
	return nil, model.ErrOrganizationNotFound
}
func (m *mockOrganizationRepository) Children(ctx context.Context, parentOrgID int64) ([]model.Organization, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) Descendants(ctx context.Context, parentOrgID int64) ([]model.Organization, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) DescendantsAtDate(ctx context.Context, parentOrgID int64, at string) ([]model.Organization, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) Ancestors(ctx context.Context, orgID int64) ([]model.Organization, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) FindByDepth(ctx context.Context, depth int) ([]model.Organization, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) Hierarchy(ctx context.Context) ([]model.HierarchyNode, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) TimelineDatesForSubtree(ctx context.Context, parentOrgID int64) ([]string, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) DescendantsDiffBetweenDates(ctx context.Context, parentOrgID int64, startDate, endDate string) ([]model.DescendantDiffEntry, error) {
	return nil, nil
}
func (m *mockOrganizationRepository) UpdateParentLink(ctx context.Context, orgID int64, parentOrgID *int64) error {
	return nil
}
func (m *mockOrganizationRepository) Stats(ctx context.Context) (model.Stats, error) {
	return model.Stats{}, nil
}

type stubCacheInvalidator struct{ reasons []string }

func (s *stubCacheInvalidator) Invalidate(ctx context.Context, reason string) {
	s.reasons = append(s.reasons, reason)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestOrganizationService_PreseedOrganizations_ResolvesParentBeforeChild(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	childURL := "https://gov.example/child"
	parentURL := "https://gov.example/parent"

	mock.ExpectBegin()
	mock.ExpectQuery("FROM organizations WHERE url").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO organizations").WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("FROM organizations WHERE url").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO organizations").WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	invalidator := &stubCacheInvalidator{}
	svc := NewOrganizationService(&mockOrganizationRepository{}, mock, invalidator, newTestLogger(t))

	// Deliberately out of order: child first, parent second. The service
	// must still resolve the parent link because it sorts by part count
	// before writing, within the single preseed transaction.
	seeds := []OrgHierarchySeed{
		{Org: "Child Agency", URL: childURL, SubParentOrgURL: &parentURL, Parts: []string{"Parent", "Child"}},
		{Org: "Parent Ministry", URL: parentURL, Parts: []string{"Parent"}},
	}

	result := svc.PreseedOrganizations(context.Background(), seeds)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []string{"organization preseed"}, invalidator.reasons)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_PreseedOrganizations_SkipsMissingFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	invalidator := &stubCacheInvalidator{}
	svc := NewOrganizationService(&mockOrganizationRepository{}, mock, invalidator, newTestLogger(t))

	result := svc.PreseedOrganizations(context.Background(), []OrgHierarchySeed{{Org: "", URL: ""}})

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, invalidator.reasons, "a run that wrote nothing must not invalidate the cache")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_PreseedOrganizations_RollsBackOnBeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(context.DeadlineExceeded)

	invalidator := &stubCacheInvalidator{}
	svc := NewOrganizationService(&mockOrganizationRepository{}, mock, invalidator, newTestLogger(t))

	result := svc.PreseedOrganizations(context.Background(), []OrgHierarchySeed{
		{Org: "Parent Ministry", URL: "https://gov.example/parent", Parts: []string{"Parent"}},
	})

	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, invalidator.reasons)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_ByDepth_RejectsNonPositive(t *testing.T) {
	svc := NewOrganizationService(&mockOrganizationRepository{}, nil, &stubCacheInvalidator{}, newTestLogger(t))

	orgs, err := svc.ByDepth(context.Background(), 0)

	require.NoError(t, err)
	assert.Nil(t, orgs)
}

func TestOrganizationService_UpdateParentOrg_CommitsAndInvalidates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE organizations SET parent_org_id").WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectCommit()

	invalidator := &stubCacheInvalidator{}
	svc := NewOrganizationService(&mockOrganizationRepository{}, mock, invalidator, newTestLogger(t))

	parentID := int64(9)
	err = svc.UpdateParentOrg(context.Background(), 5, &parentID)

	require.NoError(t, err)
	assert.Equal(t, []string{"organization parent-link update"}, invalidator.reasons)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_UpdateParentOrg_NotFoundDoesNotInvalidate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE organizations SET parent_org_id").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	invalidator := &stubCacheInvalidator{}
	svc := NewOrganizationService(&mockOrganizationRepository{}, mock, invalidator, newTestLogger(t))

	err = svc.UpdateParentOrg(context.Background(), 404, nil)

	require.Error(t, err)
	assert.Empty(t, invalidator.reasons)
	require.NoError(t, mock.ExpectationsWereMet())
}
