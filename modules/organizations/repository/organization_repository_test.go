package repository

import (
	"context"
	"testing"
	"time"

	"github.com/davidkwan/orggraph/modules/organizations/model"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationRepository_Upsert_RequiresName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizationRepositoryWithPool(mock)
	_, err = repo.Upsert(context.Background(), model.UpsertInput{})

	assert.ErrorIs(t, err, model.ErrOrganizationNameRequired)
}

func TestOrganizationRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, department").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "department", "url", "parent_org_id", "metadata", "created_at", "updated_at"}))

	repo := NewOrganizationRepositoryWithPool(mock)
	_, err = repo.GetByID(context.Background(), 5)

	assert.ErrorIs(t, err, model.ErrOrganizationNotFound)
}

func TestOrganizationRepository_Ancestors_SortsByDepth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	cols := []string{"id", "name", "department", "url", "parent_org_id", "metadata", "created_at", "updated_at"}
	rows := pgxmock.NewRows(cols).
		AddRow(int64(3), "Division", nil, nil, nil, []byte(`{"parts":["Dept","Division"]}`), now, now).
		AddRow(int64(1), "Department", nil, nil, nil, []byte(`{"parts":["Dept"]}`), now, now)

	mock.ExpectQuery("WITH RECURSIVE org_hierarchy").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	repo := NewOrganizationRepositoryWithPool(mock)
	ancestors, err := repo.Ancestors(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, "Department", ancestors[0].Name)
	assert.Equal(t, "Division", ancestors[1].Name)
}

func TestOrganizationRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("COUNT\\(\\*\\) AS total_orgs").
		WillReturnRows(pgxmock.NewRows([]string{"total_orgs", "unique_departments"}).AddRow(10, 4))

	repo := NewOrganizationRepositoryWithPool(mock)
	stats, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalOrganizations)
	assert.Equal(t, 4, stats.UniqueDepartments)
}
