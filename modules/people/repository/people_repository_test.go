package repository

import (
	"context"
	"testing"
	"time"

	"github.com/davidkwan/orggraph/modules/people/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeopleRepository_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO people").
		WithArgs("Jane Doe", "jane doe", pgxmock.AnyArg(), pgxmock.AnyArg(), 1, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	repo := NewPeopleRepositoryWithPool(mock)
	id, err := repo.Upsert(context.Background(), model.UpsertInput{Name: "Jane Doe", CleanName: "jane doe"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeopleRepository_Upsert_RequiresName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPeopleRepositoryWithPool(mock)
	_, err = repo.Upsert(context.Background(), model.UpsertInput{})

	assert.ErrorIs(t, err, model.ErrPersonNameRequired)
}

func TestPeopleRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, clean_name").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "clean_name", "tel", "email", "disambiguation_key", "metadata", "created_at", "updated_at"}))

	repo := NewPeopleRepositoryWithPool(mock)
	_, err = repo.GetByID(context.Background(), 99)

	assert.ErrorIs(t, err, model.ErrPersonNotFound)
}

func TestPeopleRepository_SearchFuzzy_FallsBackWhenTrigramUnavailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	cols := []string{"id", "name", "clean_name", "tel", "email", "disambiguation_key", "metadata", "created_at", "updated_at", "sim_score"}

	mock.ExpectQuery("similarity").
		WithArgs("Jhn Smith", 0.3, 10).
		WillReturnError(&pgconn.PgError{Code: undefinedFunction, Message: "function similarity does not exist"})

	mock.ExpectQuery("ILIKE").
		WithArgs("%Jhn Smith%", 10).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(1), "John Smith", "john smith", nil, nil, 1, []byte(`{}`), now, now, 0.0))

	repo := NewPeopleRepositoryWithPool(mock)
	matches, err := repo.SearchFuzzy(context.Background(), "Jhn Smith", 10, 0.3)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "John Smith", matches[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeopleRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("COUNT\\(DISTINCT name\\)").
		WillReturnRows(pgxmock.NewRows([]string{"unique_names"}).AddRow(7))

	repo := NewPeopleRepositoryWithPool(mock)
	stats, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, stats.UniqueNames)
}
