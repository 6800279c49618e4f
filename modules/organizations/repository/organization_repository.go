// Package repository implements ports.OrganizationRepository against Postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/davidkwan/orggraph/modules/organizations/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool is the subset of *pgxpool.Pool the repository needs.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type OrganizationRepository struct {
	pool DBPool
}

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

// NewOrganizationRepositoryWithPool creates a repository over a custom pool (for testing).
func NewOrganizationRepositoryWithPool(pool DBPool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

func (r *OrganizationRepository) Upsert(ctx context.Context, in model.UpsertInput) (int64, error) {
	if in.Name == "" {
		return 0, model.ErrOrganizationNameRequired
	}
	metadata := in.Metadata
	if metadata == nil {
		metadata = []byte(`{}`)
	}

	const query = `
		INSERT INTO organizations (name, department, url, parent_org_id, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			department = COALESCE(EXCLUDED.department, organizations.department),
			parent_org_id = COALESCE(EXCLUDED.parent_org_id, organizations.parent_org_id),
			metadata = organizations.metadata || EXCLUDED.metadata,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, in.Name, in.Department, in.URL, in.ParentOrgID, metadata).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	const query = `
		SELECT id, name, department, url, parent_org_id, metadata, created_at, updated_at
		FROM organizations WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *OrganizationRepository) GetByURL(ctx context.Context, url string) (*model.Organization, error) {
	const query = `
		SELECT id, name, department, url, parent_org_id, metadata, created_at, updated_at
		FROM organizations WHERE url = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, url))
}

func (r *OrganizationRepository) scanOne(row pgx.Row) (*model.Organization, error) {
	var o model.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Department, &o.URL, &o.ParentOrgID, &o.Metadata, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepository) Children(ctx context.Context, parentOrgID int64) ([]model.Organization, error) {
	const query = `
		SELECT id, name, department, url, parent_org_id, metadata, created_at, updated_at
		FROM organizations WHERE parent_org_id = $1 ORDER BY name
	`
	return r.queryOrgs(ctx, query, parentOrgID)
}

func (r *OrganizationRepository) Descendants(ctx context.Context, parentOrgID int64) ([]model.Organization, error) {
	const query = `
		WITH RECURSIVE org_hierarchy AS (
			SELECT * FROM organizations WHERE id = $1
			UNION ALL
			SELECT o.* FROM organizations o
			JOIN org_hierarchy h ON o.parent_org_id = h.id
		)
		SELECT id, name, department, url, parent_org_id, metadata, created_at, updated_at
		FROM org_hierarchy WHERE id != $1
	`
	return r.queryOrgs(ctx, query, parentOrgID)
}

func (r *OrganizationRepository) DescendantsAtDate(ctx context.Context, parentOrgID int64, at string) ([]model.Organization, error) {
	const query = `
		WITH RECURSIVE org_hierarchy AS (
			SELECT * FROM organizations WHERE id = $1
			UNION ALL
			SELECT o.* FROM organizations o
			JOIN org_hierarchy h ON o.parent_org_id = h.id
		)
		SELECT id, name, department, url, parent_org_id, metadata, created_at, updated_at
		FROM org_hierarchy
		WHERE id != $1
			AND $2::date >= COALESCE((metadata->>'first_observed')::date, '1900-01-01'::date)
			AND $2::date <= COALESCE((metadata->>'last_observed')::date, '9999-12-31'::date)
	`
	return r.queryOrgs(ctx, query, parentOrgID, at)
}

func (r *OrganizationRepository) Ancestors(ctx context.Context, orgID int64) ([]model.Organization, error) {
	const query = `
		WITH RECURSIVE org_hierarchy AS (
			SELECT * FROM organizations WHERE id = $1
			UNION ALL
			SELECT o.* FROM organizations o
			JOIN org_hierarchy h ON o.id = h.parent_org_id
		)
		SELECT id, name, department, url, parent_org_id, metadata, created_at, updated_at
		FROM org_hierarchy WHERE id != $1
	`
	ancestors, err := r.queryOrgs(ctx, query, orgID)
	if err != nil {
		return nil, err
	}

	// Root-to-leaf order, shallowest ancestor first, matching the depth
	// recorded in each organization's metadata.parts breadcrumb.
	sort.SliceStable(ancestors, func(i, j int) bool {
		return depthOf(ancestors[i]) < depthOf(ancestors[j])
	})
	return ancestors, nil
}

func depthOf(o model.Organization) int {
	var meta struct {
		Parts []string `json:"parts"`
	}
	if err := json.Unmarshal(o.Metadata, &meta); err != nil {
		return 0
	}
	return len(meta.Parts)
}

func (r *OrganizationRepository) queryOrgs(ctx context.Context, query string, args ...interface{}) ([]model.Organization, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Department, &o.URL, &o.ParentOrgID, &o.Metadata, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *OrganizationRepository) FindByDepth(ctx context.Context, depth int) ([]model.Organization, error) {
	const query = `
		SELECT id, name, department, url, parent_org_id, metadata
		FROM find_organizations_by_depth($1)
	`
	rows, err := r.pool.Query(ctx, query, depth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Department, &o.URL, &o.ParentOrgID, &o.Metadata); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *OrganizationRepository) Hierarchy(ctx context.Context) ([]model.HierarchyNode, error) {
	const query = `SELECT id, name, parent_org_id FROM organizations ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []model.HierarchyNode
	for rows.Next() {
		var n model.HierarchyNode
		if err := rows.Scan(&n.ID, &n.Name, &n.ParentOrgID); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *OrganizationRepository) TimelineDatesForSubtree(ctx context.Context, parentOrgID int64) ([]string, error) {
	const query = `
		WITH RECURSIVE org_subtree AS (
			SELECT id, metadata FROM organizations WHERE id = $1
			UNION ALL
			SELECT o.id, o.metadata FROM organizations o
			JOIN org_subtree s ON o.parent_org_id = s.id
		),
		all_event_dates AS (
			SELECT (metadata->>'first_observed')::date AS event_date
			FROM org_subtree
			WHERE metadata->>'first_observed' IS NOT NULL
			UNION
			SELECT (metadata->>'last_observed')::date AS event_date
			FROM org_subtree
			WHERE metadata->>'last_observed' IS NOT NULL
		)
		SELECT event_date FROM all_event_dates ORDER BY event_date ASC
	`

	rows, err := r.pool.Query(ctx, query, parentOrgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *OrganizationRepository) DescendantsDiffBetweenDates(ctx context.Context, parentOrgID int64, startDate, endDate string) ([]model.DescendantDiffEntry, error) {
	const query = `SELECT org_id, name, status, details FROM get_org_descendants_diff($1, $2, $3)`

	rows, err := r.pool.Query(ctx, query, parentOrgID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.DescendantDiffEntry
	for rows.Next() {
		var e model.DescendantDiffEntry
		var status string
		if err := rows.Scan(&e.OrgID, &e.Name, &status, &e.Details); err != nil {
			return nil, err
		}
		e.Status = model.DiffStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *OrganizationRepository) UpdateParentLink(ctx context.Context, orgID int64, parentOrgID *int64) error {
	const query = `
		UPDATE organizations SET parent_org_id = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, parentOrgID, orgID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrOrganizationNotFound
	}
	return err
}

func (r *OrganizationRepository) Stats(ctx context.Context) (model.Stats, error) {
	const query = `
		SELECT COUNT(*) AS total_orgs, COUNT(DISTINCT department) AS unique_departments
		FROM organizations
	`
	var stats model.Stats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.TotalOrganizations, &stats.UniqueDepartments)
	return stats, err
}
