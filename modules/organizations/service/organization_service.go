// Package service implements OrgService: organization preseeding and the
// subtree/timeline/diff queries built on top of the organization hierarchy.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	"github.com/davidkwan/orggraph/modules/organizations/model"
	"github.com/davidkwan/orggraph/modules/organizations/ports"
	orgrepo "github.com/davidkwan/orggraph/modules/organizations/repository"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TxBeginner is the subset of *pgxpool.Pool the organizations service needs:
// the ability to open a transaction around a preseed run or a parent-link
// update. Narrow enough that pgxmock's pool stands in for it in tests.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrgHierarchySeed is one row of the flat hierarchy preseed input: a name,
// its stable URL, and the URL of whichever organization it sits under.
type OrgHierarchySeed struct {
	Org               string
	URL               string
	SubParentOrgURL   *string
	SGDIEntityType    *string
	FirstObserved     *string
	LastObserved      *string
	Parts             []string
}

// PreseedResult reports how many records were created, updated in place, or
// skipped because they were malformed.
type PreseedResult struct {
	Created int
	Updated int
	Failed  int
}

type OrganizationService struct {
	repo  ports.OrganizationRepository
	pool  TxBeginner
	cache ports.CacheInvalidator
	log   *logger.Logger
}

func NewOrganizationService(repo ports.OrganizationRepository, pool TxBeginner, cache ports.CacheInvalidator, log *logger.Logger) *OrganizationService {
	return &OrganizationService{repo: repo, pool: pool, cache: cache, log: log}
}

// PreseedOrganizations bulk-loads a flat hierarchy description inside a
// single transaction, resolving parent links via an in-memory url->id map
// built as it goes so parents always precede children within a single pass.
// Seeds are processed shallowest-first (by part count) so a parent is always
// seeded before any child that references it, matching the dataset's own
// depth ordering. A failure opening or committing the transaction fails the
// whole run rather than leaving a half-applied hierarchy; on success the
// graph cache is invalidated once, since the hierarchy it was built from has
// changed.
func (s *OrganizationService) PreseedOrganizations(ctx context.Context, seeds []OrgHierarchySeed) PreseedResult {
	s.log.Info("starting organization preseed", zap.Int("count", len(seeds)))

	sorted := make([]OrgHierarchySeed, len(seeds))
	copy(sorted, seeds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Parts) < len(sorted[j].Parts)
	})

	result := PreseedResult{}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.log.Error("failed to begin preseed transaction", zap.Error(err))
		result.Failed = len(sorted)
		return result
	}
	defer tx.Rollback(ctx)

	repo := orgrepo.NewOrganizationRepositoryWithPool(tx)
	urlToID := make(map[string]int64, len(sorted))

	for _, seed := range sorted {
		if seed.Org == "" || seed.URL == "" {
			s.log.Warn("skipping preseed record missing name or url")
			result.Failed++
			continue
		}

		existing, err := repo.GetByURL(ctx, seed.URL)
		isUpdate := err == nil && existing != nil

		var parentOrgID *int64
		var department *string
		if seed.SubParentOrgURL != nil {
			if id, ok := urlToID[*seed.SubParentOrgURL]; ok {
				parentOrgID = &id
			} else if parent, err := repo.GetByURL(ctx, *seed.SubParentOrgURL); err == nil && parent != nil {
				parentOrgID = &parent.ID
				department = &parent.Name
			} else {
				s.log.Warn("preseed parent not found, creating as top-level",
					zap.String("org", seed.Org), zap.String("parent_url", *seed.SubParentOrgURL))
			}
		}

		metadata := buildPreseedMetadata(seed)
		id, err := repo.Upsert(ctx, model.UpsertInput{
			Name:        seed.Org,
			Department:  department,
			URL:         &seed.URL,
			ParentOrgID: parentOrgID,
			Metadata:    metadata,
		})
		if err != nil {
			s.log.Error("failed to preseed organization", zap.String("org", seed.Org), zap.Error(err))
			result.Failed++
			continue
		}

		if isUpdate {
			result.Updated++
		} else {
			result.Created++
		}
		urlToID[seed.URL] = id
	}

	if err := tx.Commit(ctx); err != nil {
		s.log.Error("failed to commit organization preseed", zap.Error(err))
		return PreseedResult{Failed: len(sorted)}
	}

	s.log.Info("organization preseed complete",
		zap.Int("created", result.Created), zap.Int("updated", result.Updated), zap.Int("failed", result.Failed))
	if result.Created > 0 || result.Updated > 0 {
		s.cache.Invalidate(ctx, "organization preseed")
	}
	return result
}

// UpdateParentOrg re-parents orgID under parentOrgID (nil to make it
// top-level), inside its own transaction, and invalidates the graph cache on
// success since the hierarchy the full-history graph's subunit_of edges are
// built from has changed.
func (s *OrganizationService) UpdateParentOrg(ctx context.Context, orgID int64, parentOrgID *int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning parent-link transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	repo := orgrepo.NewOrganizationRepositoryWithPool(tx)
	if err := repo.UpdateParentLink(ctx, orgID, parentOrgID); err != nil {
		return fmt.Errorf("updating parent link for org %d: %w", orgID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing parent-link update for org %d: %w", orgID, err)
	}

	s.cache.Invalidate(ctx, "organization parent-link update")
	return nil
}

func buildPreseedMetadata(seed OrgHierarchySeed) json.RawMessage {
	fields := map[string]interface{}{
		"type":   "organization",
		"source": "pre-seeded",
	}
	if seed.SGDIEntityType != nil {
		fields["sgdi_entity_type"] = *seed.SGDIEntityType
	}
	if seed.FirstObserved != nil {
		fields["first_observed"] = *seed.FirstObserved
	}
	if seed.LastObserved != nil {
		fields["last_observed"] = *seed.LastObserved
	}
	if seed.Parts != nil {
		fields["parts"] = seed.Parts
	}
	raw, _ := json.Marshal(fields)
	return raw
}

// Subtree returns every descendant organization under parentOrgID.
func (s *OrganizationService) Subtree(ctx context.Context, parentOrgID int64) ([]model.Organization, error) {
	return s.repo.Descendants(ctx, parentOrgID)
}

// SubtreeAtDate returns descendants active on the given date.
func (s *OrganizationService) SubtreeAtDate(ctx context.Context, parentOrgID int64, at string) ([]model.Organization, error) {
	return s.repo.DescendantsAtDate(ctx, parentOrgID, at)
}

// Timeline returns the sorted set of dates the subtree's structure changed,
// suitable for driving a UI slider over organizational history.
func (s *OrganizationService) Timeline(ctx context.Context, parentOrgID int64) ([]string, error) {
	return s.repo.TimelineDatesForSubtree(ctx, parentOrgID)
}

// DiffBetweenDates reports which descendants were added, removed, or left
// unchanged between two snapshot dates.
func (s *OrganizationService) DiffBetweenDates(ctx context.Context, parentOrgID int64, startDate, endDate string) ([]model.DescendantDiffEntry, error) {
	return s.repo.DescendantsDiffBetweenDates(ctx, parentOrgID, startDate, endDate)
}

// ByDepth returns organizations at the given hierarchical depth (1 = top-level).
func (s *OrganizationService) ByDepth(ctx context.Context, depth int) ([]model.Organization, error) {
	if depth < 1 {
		s.log.Warn("organization depth must be 1 or greater", zap.Int("depth", depth))
		return nil, nil
	}
	return s.repo.FindByDepth(ctx, depth)
}

// Hierarchy returns the flat id/name/parent projection the full-history
// graph builder consumes to construct subunit_of edges.
func (s *OrganizationService) Hierarchy(ctx context.Context) ([]model.HierarchyNode, error) {
	return s.repo.Hierarchy(ctx)
}

// Ancestors returns orgID's chain of parent organizations, shallowest (the
// root) first and the direct parent last.
func (s *OrganizationService) Ancestors(ctx context.Context, orgID int64) ([]model.Organization, error) {
	return s.repo.Ancestors(ctx, orgID)
}
