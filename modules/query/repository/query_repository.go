// Package repository implements ports.QueryRepository against Postgres.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/davidkwan/orggraph/modules/query/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool is the subset of *pgxpool.Pool the repository needs.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type QueryRepository struct {
	pool DBPool
}

func NewQueryRepository(pool *pgxpool.Pool) *QueryRepository {
	return &QueryRepository{pool: pool}
}

// NewQueryRepositoryWithPool creates a repository over a custom pool (for testing).
func NewQueryRepositoryWithPool(pool DBPool) *QueryRepository {
	return &QueryRepository{pool: pool}
}

func (r *QueryRepository) FindColleaguesAtDate(ctx context.Context, personName string, targetDate time.Time) ([]model.Colleague, error) {
	const query = `SELECT colleague_name, organization, colleague_rank, start_date, end_date, overlap_days
		FROM find_colleagues_at_date($1, $2)`

	rows, err := r.pool.Query(ctx, query, personName, targetDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Colleague
	for rows.Next() {
		var c model.Colleague
		if err := rows.Scan(&c.Name, &c.Organization, &c.Rank, &c.StartDate, &c.EndDate, &c.OverlapDays); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (r *QueryRepository) FindAllColleagues(ctx context.Context, personName string) ([]model.AllColleague, error) {
	const query = `SELECT colleague_name, organization, colleague_rank,
		colleague_start_date, colleague_end_date, person_start_date, person_end_date,
		overlap_start_date, overlap_end_date, overlap_days
		FROM find_all_colleagues($1)`

	rows, err := r.pool.Query(ctx, query, personName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.AllColleague
	for rows.Next() {
		var c model.AllColleague
		if err := rows.Scan(&c.Name, &c.Organization, &c.Rank,
			&c.ColleagueStartDate, &c.ColleagueEndDate, &c.PersonStartDate, &c.PersonEndDate,
			&c.OverlapStartDate, &c.OverlapEndDate, &c.OverlapDays); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

const careerProgressionQuery = `
	SELECT
		p.name AS person_actual_name,
		p.id AS person_id,
		o.name AS entity_name,
		o.department AS department_name,
		o.id AS org_id,
		po.name AS parent_organization_name,
		o.metadata AS entity_metadata,
		e.rank,
		e.start_date,
		e.end_date,
		e.tenure_days,
		ROW_NUMBER() OVER (PARTITION BY p.id ORDER BY e.start_date) AS sequence_number
	FROM employment e
	JOIN people p ON e.person_id = p.id
	JOIN organizations o ON e.org_id = o.id
	LEFT JOIN organizations po ON o.parent_org_id = po.id
	WHERE %s
	ORDER BY p.id, e.start_date
`

func (r *QueryRepository) CareerProgressionByName(ctx context.Context, personName string) ([]model.CareerEntry, error) {
	query := fmt.Sprintf(careerProgressionQuery, "p.name = $1")
	return r.scanCareerEntries(ctx, query, personName)
}

func (r *QueryRepository) CareerProgressionByPersonID(ctx context.Context, personID int64) ([]model.CareerEntry, error) {
	query := fmt.Sprintf(careerProgressionQuery, "p.id = $1")
	return r.scanCareerEntries(ctx, query, personID)
}

func (r *QueryRepository) scanCareerEntries(ctx context.Context, query string, arg interface{}) ([]model.CareerEntry, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.CareerEntry
	for rows.Next() {
		var e model.CareerEntry
		if err := rows.Scan(&e.PersonActualName, &e.PersonID, &e.EntityName, &e.DepartmentName, &e.OrgID,
			&e.ParentOrganizationName, &e.EntityMetadata, &e.Rank, &e.StartDate, &e.EndDate, &e.TenureDays, &e.SequenceNumber); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func (r *QueryRepository) NetworkSnapshot(ctx context.Context, targetDate time.Time) ([]model.NetworkSnapshotEntry, error) {
	const query = `
		SELECT
			p.id, p.name,
			o.id, o.name,
			e.rank, e.start_date, e.end_date,
			p.tel, p.email
		FROM employment e
		JOIN people p ON e.person_id = p.id
		JOIN organizations o ON e.org_id = o.id
		WHERE $1 BETWEEN e.start_date AND e.end_date
		ORDER BY o.name, p.name
	`

	rows, err := r.pool.Query(ctx, query, targetDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.NetworkSnapshotEntry
	for rows.Next() {
		var n model.NetworkSnapshotEntry
		if err := rows.Scan(&n.PersonID, &n.PersonName, &n.OrgID, &n.OrgName, &n.Rank, &n.StartDate, &n.EndDate, &n.Tel, &n.Email); err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, rows.Err()
}
