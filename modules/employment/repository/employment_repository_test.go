package repository

import (
	"context"
	"testing"
	"time"

	"github.com/davidkwan/orggraph/modules/employment/model"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmploymentRepository_Upsert_RejectsInvertedRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmploymentRepositoryWithPool(mock)
	_, err = repo.Upsert(context.Background(), model.UpsertInput{
		StartDate: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(t, err, model.ErrInvalidDateRange)
}

func TestEmploymentRepository_FindOverlapping_EmptySourceReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmploymentRepositoryWithPool(mock)
	matches, err := repo.FindOverlapping(context.Background(), nil, "", 10)

	require.NoError(t, err)
	assert.Nil(t, matches)
}

func TestEmploymentRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("COUNT\\(\\*\\)").
		WillReturnRows(pgxmock.NewRows([]string{"count", "count_distinct_person", "count_distinct_org"}).AddRow(100, 40, 12))

	repo := NewEmploymentRepositoryWithPool(mock)
	stats, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalEmployments)
	assert.Equal(t, 40, stats.TotalPeople)
	assert.Equal(t, 12, stats.TotalOrganizations)
}
