// Package repository implements ports.PeopleRepository against Postgres.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/davidkwan/orggraph/modules/people/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// undefinedFunction is the Postgres SQLSTATE raised when pg_trgm's
// similarity()/% operator is not installed in the target database.
const undefinedFunction = "42883"

// DBPool is the subset of *pgxpool.Pool the repository needs, narrow enough
// that pgxmock can stand in for it in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type PeopleRepository struct {
	pool DBPool
}

func NewPeopleRepository(pool *pgxpool.Pool) *PeopleRepository {
	return &PeopleRepository{pool: pool}
}

// NewPeopleRepositoryWithPool creates a repository over a custom pool (for testing).
func NewPeopleRepositoryWithPool(pool DBPool) *PeopleRepository {
	return &PeopleRepository{pool: pool}
}

func (r *PeopleRepository) Upsert(ctx context.Context, in model.UpsertInput) (int64, error) {
	if in.Name == "" {
		return 0, model.ErrPersonNameRequired
	}
	key := in.DisambiguationKey
	if key == 0 {
		key = 1
	}
	metadata := in.Metadata
	if metadata == nil {
		metadata = []byte(`{}`)
	}

	const query = `
		INSERT INTO people (name, clean_name, tel, email, disambiguation_key, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name, disambiguation_key) DO UPDATE SET
			clean_name = EXCLUDED.clean_name,
			tel = COALESCE(EXCLUDED.tel, people.tel),
			email = COALESCE(EXCLUDED.email, people.email),
			metadata = people.metadata || EXCLUDED.metadata,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, in.Name, in.CleanName, in.Tel, in.Email, key, metadata).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PeopleRepository) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	const query = `
		SELECT id, name, clean_name, tel, email, disambiguation_key, metadata, created_at, updated_at
		FROM people WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PeopleRepository) GetByName(ctx context.Context, name string) (*model.Person, error) {
	const query = `
		SELECT id, name, clean_name, tel, email, disambiguation_key, metadata, created_at, updated_at
		FROM people WHERE name = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

// ListByName returns every disambiguated identity stored under name,
// ordered by disambiguation_key, since clustering can leave more than one
// distinct person sharing the same spelling.
func (r *PeopleRepository) ListByName(ctx context.Context, name string) ([]model.Person, error) {
	const query = `
		SELECT id, name, clean_name, tel, email, disambiguation_key, metadata, created_at, updated_at
		FROM people WHERE name = $1
		ORDER BY disambiguation_key ASC
	`
	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.CleanName, &p.Tel, &p.Email, &p.DisambiguationKey, &p.Metadata, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return people, nil
}

func (r *PeopleRepository) scanOne(row pgx.Row) (*model.Person, error) {
	var p model.Person
	err := row.Scan(&p.ID, &p.Name, &p.CleanName, &p.Tel, &p.Email, &p.DisambiguationKey, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PeopleRepository) SearchFuzzy(ctx context.Context, query string, limit int, minSimilarity float64) ([]model.SearchMatch, error) {
	const trigramQuery = `
		SELECT id, name, clean_name, tel, email, disambiguation_key, metadata, created_at, updated_at,
			similarity(name, $1) AS sim_score
		FROM people
		WHERE name % $1 AND similarity(name, $1) >= $2
		ORDER BY sim_score DESC
		LIMIT $3
	`
	matches, err := r.queryMatches(ctx, trigramQuery, query, minSimilarity, limit)
	if !isUndefinedFunction(err) {
		return matches, err
	}

	const fallbackQuery = `
		SELECT id, name, clean_name, tel, email, disambiguation_key, metadata, created_at, updated_at,
			0.0 AS sim_score
		FROM people
		WHERE name ILIKE $1
		ORDER BY length(name) ASC, name ASC
		LIMIT $2
	`
	return r.queryMatches(ctx, fallbackQuery, "%"+query+"%", limit)
}

func (r *PeopleRepository) SearchFuzzyInRange(ctx context.Context, query string, from, to time.Time, limit int, minSimilarity float64) ([]model.SearchMatch, error) {
	const trigramQuery = `
		SELECT id, name, clean_name, tel, email, disambiguation_key, metadata, created_at, updated_at,
			similarity(name, $1) AS sim_score
		FROM people
		WHERE name % $1 AND similarity(name, $1) >= $2
			AND created_at >= $3 AND created_at <= $4
		ORDER BY sim_score DESC
		LIMIT $5
	`
	matches, err := r.queryMatches(ctx, trigramQuery, query, minSimilarity, from, to, limit)
	if !isUndefinedFunction(err) {
		return matches, err
	}

	const fallbackQuery = `
		SELECT id, name, clean_name, tel, email, disambiguation_key, metadata, created_at, updated_at,
			0.0 AS sim_score
		FROM people
		WHERE name ILIKE $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY length(name) ASC, name ASC
		LIMIT $4
	`
	return r.queryMatches(ctx, fallbackQuery, "%"+query+"%", from, to, limit)
}

func (r *PeopleRepository) queryMatches(ctx context.Context, sql string, args ...interface{}) ([]model.SearchMatch, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []model.SearchMatch
	for rows.Next() {
		var m model.SearchMatch
		if err := rows.Scan(&m.ID, &m.Name, &m.CleanName, &m.Tel, &m.Email, &m.DisambiguationKey, &m.Metadata, &m.CreatedAt, &m.UpdatedAt, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// isUndefinedFunction reports whether err is a Postgres 42883 error, the
// signal that pg_trgm's similarity()/% operator is not installed.
func isUndefinedFunction(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedFunction
}

func (r *PeopleRepository) Stats(ctx context.Context) (model.NameStats, error) {
	const query = `SELECT COUNT(DISTINCT name) AS unique_names FROM people`
	var stats model.NameStats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.UniqueNames)
	return stats, err
}
