// Package repository implements ports.EmploymentRepository against Postgres.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/davidkwan/orggraph/modules/employment/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool is the subset of *pgxpool.Pool the repository needs.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type EmploymentRepository struct {
	pool DBPool
}

func NewEmploymentRepository(pool *pgxpool.Pool) *EmploymentRepository {
	return &EmploymentRepository{pool: pool}
}

// NewEmploymentRepositoryWithPool creates a repository over a custom pool (for testing).
func NewEmploymentRepositoryWithPool(pool DBPool) *EmploymentRepository {
	return &EmploymentRepository{pool: pool}
}

func (r *EmploymentRepository) Upsert(ctx context.Context, in model.UpsertInput) (int64, error) {
	if in.StartDate.After(in.EndDate) {
		return 0, model.ErrInvalidDateRange
	}
	metadata := in.Metadata
	if metadata == nil {
		metadata = []byte(`{}`)
	}

	const query = `
		INSERT INTO employment (person_id, org_id, rank, start_date, end_date, tenure_days, raw_name, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (person_id, org_id, (COALESCE(rank, ''::character varying)), start_date, end_date)
		DO UPDATE SET
			tenure_days = COALESCE(EXCLUDED.tenure_days, employment.tenure_days),
			raw_name = COALESCE(EXCLUDED.raw_name, employment.raw_name),
			metadata = employment.metadata || EXCLUDED.metadata
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, in.PersonID, in.OrgID, in.Rank, in.StartDate, in.EndDate, in.TenureDays, in.RawName, metadata).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *EmploymentRepository) GetByID(ctx context.Context, id int64) (*model.Enriched, error) {
	const query = `
		SELECT e.id, e.person_id, e.org_id, e.rank, e.start_date, e.end_date, e.tenure_days, e.raw_name, e.metadata, e.created_at,
			p.name, o.name, o.metadata
		FROM employment e
		JOIN people p ON e.person_id = p.id
		JOIN organizations o ON e.org_id = o.id
		WHERE e.id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var en model.Enriched
	err := row.Scan(&en.ID, &en.PersonID, &en.OrgID, &en.Rank, &en.StartDate, &en.EndDate, &en.TenureDays, &en.RawName, &en.Metadata, &en.CreatedAt,
		&en.PersonName, &en.OrgName, &en.OrgMeta)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrEmploymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &en, nil
}

func (r *EmploymentRepository) ListByPersonID(ctx context.Context, personID int64) ([]model.Enriched, error) {
	const query = `
		SELECT e.id, e.person_id, e.org_id, e.rank, e.start_date, e.end_date, e.tenure_days, e.raw_name, e.metadata, e.created_at,
			p.name, o.name, o.metadata
		FROM employment e
		JOIN people p ON e.person_id = p.id
		JOIN organizations o ON e.org_id = o.id
		WHERE e.person_id = $1
		ORDER BY e.start_date
	`

	rows, err := r.pool.Query(ctx, query, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Enriched
	for rows.Next() {
		var en model.Enriched
		if err := rows.Scan(&en.ID, &en.PersonID, &en.OrgID, &en.Rank, &en.StartDate, &en.EndDate, &en.TenureDays, &en.RawName, &en.Metadata, &en.CreatedAt,
			&en.PersonName, &en.OrgName, &en.OrgMeta); err != nil {
			return nil, err
		}
		results = append(results, en)
	}
	return results, rows.Err()
}

func (r *EmploymentRepository) ListByPersonAndOrg(ctx context.Context, personID, orgID int64) ([]model.Employment, error) {
	const query = `
		SELECT id, person_id, org_id, rank, start_date, end_date, tenure_days, raw_name, metadata, created_at
		FROM employment WHERE person_id = $1 AND org_id = $2
		ORDER BY start_date
	`
	rows, err := r.pool.Query(ctx, query, personID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Employment
	for rows.Next() {
		var e model.Employment
		if err := rows.Scan(&e.ID, &e.PersonID, &e.OrgID, &e.Rank, &e.StartDate, &e.EndDate, &e.TenureDays, &e.RawName, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// ListAll returns the entire employment history joined with person and
// organization names, ordered the way the original reporting queries did:
// by organization name, then person name.
func (r *EmploymentRepository) ListAll(ctx context.Context) ([]model.Enriched, error) {
	const query = `
		SELECT e.id, e.person_id, e.org_id, e.rank, e.start_date, e.end_date, e.tenure_days, e.raw_name, e.metadata, e.created_at,
			p.name, o.name, o.metadata
		FROM employment e
		JOIN people p ON e.person_id = p.id
		JOIN organizations o ON e.org_id = o.id
		ORDER BY o.name, p.name
	`
	return r.scanEnrichedRows(ctx, query)
}

// ListActiveAt returns employment rows whose interval contains at.
func (r *EmploymentRepository) ListActiveAt(ctx context.Context, at time.Time) ([]model.Enriched, error) {
	const query = `
		SELECT e.id, e.person_id, e.org_id, e.rank, e.start_date, e.end_date, e.tenure_days, e.raw_name, e.metadata, e.created_at,
			p.name, o.name, o.metadata
		FROM employment e
		JOIN people p ON e.person_id = p.id
		JOIN organizations o ON e.org_id = o.id
		WHERE $1 BETWEEN e.start_date AND e.end_date
		ORDER BY o.name, p.name
	`
	return r.scanEnrichedRows(ctx, query, at)
}

func (r *EmploymentRepository) scanEnrichedRows(ctx context.Context, query string, args ...interface{}) ([]model.Enriched, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Enriched
	for rows.Next() {
		var en model.Enriched
		if err := rows.Scan(&en.ID, &en.PersonID, &en.OrgID, &en.Rank, &en.StartDate, &en.EndDate, &en.TenureDays, &en.RawName, &en.Metadata, &en.CreatedAt,
			&en.PersonName, &en.OrgName, &en.OrgMeta); err != nil {
			return nil, err
		}
		results = append(results, en)
	}
	return results, rows.Err()
}

func (r *EmploymentRepository) MostRecentEndDate(ctx context.Context) (*time.Time, error) {
	const query = `SELECT MAX(end_date) FROM employment`
	var end *time.Time
	err := r.pool.QueryRow(ctx, query).Scan(&end)
	return end, err
}

func (r *EmploymentRepository) FindOverlapping(ctx context.Context, sourcePersonIDs []int64, nameFilter string, limit int) ([]model.OverlappingMatch, error) {
	if len(sourcePersonIDs) == 0 {
		return nil, nil
	}

	query := `
		WITH RECURSIVE
		source_employments AS (
			SELECT org_id, start_date, end_date
			FROM employment
			WHERE person_id = ANY($1)
		),
		descendant_orgs AS (
			SELECT id FROM organizations WHERE id IN (SELECT org_id FROM source_employments)
			UNION ALL
			SELECT o.id FROM organizations o JOIN descendant_orgs d ON o.parent_org_id = d.id
		),
		ancestor_orgs AS (
			SELECT id, parent_org_id FROM organizations WHERE id IN (SELECT org_id FROM source_employments)
			UNION ALL
			SELECT o.id, o.parent_org_id FROM organizations o JOIN ancestor_orgs a ON o.id = a.parent_org_id
		),
		org_family AS (
			SELECT id FROM descendant_orgs
			UNION
			SELECT id FROM ancestor_orgs
		)
		SELECT DISTINCT p.id, p.name, e2.start_date, e2.end_date
		FROM people p
		JOIN employment e2 ON p.id = e2.person_id
		WHERE p.id <> ALL($1)
			AND e2.org_id IN (SELECT id FROM org_family)
			AND EXISTS (
				SELECT 1 FROM source_employments e1
				WHERE daterange(e1.start_date, e1.end_date, '[]') && daterange(e2.start_date, e2.end_date, '[]')
			)
	`
	args := []interface{}{sourcePersonIDs}

	if nameFilter != "" {
		query += " AND p.name ILIKE $2"
		args = append(args, "%"+nameFilter+"%")
	}
	query += " ORDER BY p.name ASC, e2.start_date ASC"
	if nameFilter == "" {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []model.OverlappingMatch
	for rows.Next() {
		var m model.OverlappingMatch
		if err := rows.Scan(&m.PersonID, &m.Name, &m.StartDate, &m.EndDate); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// RefreshColleaguePairs rebuilds the colleague_pairs materialized view.
// Callers run it once per ingest batch, after every cluster's employment
// rows have landed, rather than per row.
func (r *EmploymentRepository) RefreshColleaguePairs(ctx context.Context) error {
	const query = `SELECT refresh_colleague_pairs()`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}

func (r *EmploymentRepository) Stats(ctx context.Context) (model.Stats, error) {
	const query = `
		SELECT COUNT(*), COUNT(DISTINCT person_id), COUNT(DISTINCT org_id) FROM employment
	`
	var stats model.Stats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.TotalEmployments, &stats.TotalPeople, &stats.TotalOrganizations)
	return stats, err
}
