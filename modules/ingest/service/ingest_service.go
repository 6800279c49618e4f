// Package service implements Ingest: grouping raw source rows by name,
// splitting each group into distinct people via identity disambiguation,
// and persisting the result as people, organizations, and employment rows.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	disambiguationmodel "github.com/davidkwan/orggraph/modules/disambiguation/model"
	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	employmentrepo "github.com/davidkwan/orggraph/modules/employment/repository"
	"github.com/davidkwan/orggraph/modules/ingest/model"
	"github.com/davidkwan/orggraph/modules/ingest/ports"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
	orgrepo "github.com/davidkwan/orggraph/modules/organizations/repository"
	peoplemodel "github.com/davidkwan/orggraph/modules/people/model"
	peoplerepo "github.com/davidkwan/orggraph/modules/people/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TxBeginner is the subset of *pgxpool.Pool Ingest needs: the ability to
// open a transaction per cluster. Narrow enough that pgxmock's pool stands
// in for it in tests.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DefaultBatchSize is the number of records per ingest batch, matching the
// original bulk-load default.
const DefaultBatchSize = 1000

// DefaultClusterConcurrency bounds how many name-groups within a batch have
// a cluster transaction open at once.
const DefaultClusterConcurrency = 8

// Options tunes a batch run.
type Options struct {
	BatchSize   int
	Concurrency int
}

// DefaultOptions returns the batch tuning used when a caller doesn't
// override it.
func DefaultOptions() Options {
	return Options{BatchSize: DefaultBatchSize, Concurrency: DefaultClusterConcurrency}
}

// IngestService loads raw employment records into the store, resolving
// each name's records into distinct people before writing.
type IngestService struct {
	pool           TxBeginner
	disambiguator  ports.Disambiguator
	pairsRefresher ports.PairsRefresher
	cache          ports.CacheInvalidator
	log            *logger.Logger
}

func NewIngestService(pool *pgxpool.Pool, disambiguator ports.Disambiguator, pairsRefresher ports.PairsRefresher, cache ports.CacheInvalidator, log *logger.Logger) *IngestService {
	return NewIngestServiceWithBeginner(pool, disambiguator, pairsRefresher, cache, log)
}

// NewIngestServiceWithBeginner builds an IngestService over a custom
// transaction beginner (for testing).
func NewIngestServiceWithBeginner(pool TxBeginner, disambiguator ports.Disambiguator, pairsRefresher ports.PairsRefresher, cache ports.CacheInvalidator, log *logger.Logger) *IngestService {
	return &IngestService{pool: pool, disambiguator: disambiguator, pairsRefresher: pairsRefresher, cache: cache, log: log}
}

// IngestBatch loads records in chunks of opts.BatchSize. Within each chunk,
// records are grouped by CleanName and every group's clusters are written
// over a bounded-concurrency worker pool; once the whole chunk drains, the
// colleague_pairs view is refreshed once and the colleague-graph cache is
// invalidated once.
func (s *IngestService) IngestBatch(ctx context.Context, records []model.RawRecord, opts Options) (model.BatchResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultClusterConcurrency
	}

	var total model.BatchResult
	for start := 0; start < len(records); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		result, err := s.ingestChunk(ctx, chunk, opts.Concurrency)
		total.Add(result)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *IngestService) ingestChunk(ctx context.Context, chunk []model.RawRecord, concurrency int) (model.BatchResult, error) {
	groups := groupByCleanName(chunk)

	var g errgroup.Group
	g.SetLimit(concurrency)

	results := make([]model.BatchResult, len(groups))
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			r, err := s.ingestNameGroup(ctx, group)
			results[i] = r
			return err
		})
	}

	// Every group failure is contained to its own clusters' rows, so we
	// don't propagate the first error -- we just let Wait surface it for
	// logging and keep the accumulated counts.
	err := g.Wait()
	if err != nil {
		s.log.Warn("ingest chunk completed with errors", zap.Error(err))
	}

	var chunkResult model.BatchResult
	for _, r := range results {
		chunkResult.Add(r)
	}

	if refreshErr := s.pairsRefresher.RefreshColleaguePairs(ctx); refreshErr != nil {
		s.log.Error("failed to refresh colleague_pairs after ingest batch", zap.Error(refreshErr))
		return chunkResult, refreshErr
	}
	s.cache.Invalidate(ctx, "ingest batch")

	return chunkResult, nil
}

func groupByCleanName(records []model.RawRecord) [][]model.RawRecord {
	order := make([]string, 0)
	byName := make(map[string][]model.RawRecord)
	for _, rec := range records {
		if _, ok := byName[rec.CleanName]; !ok {
			order = append(order, rec.CleanName)
		}
		byName[rec.CleanName] = append(byName[rec.CleanName], rec)
	}

	groups := make([][]model.RawRecord, 0, len(order))
	for _, name := range order {
		groups = append(groups, byName[name])
	}
	return groups
}

// ingestNameGroup disambiguates one name's records into clusters and
// writes each cluster in its own transaction, so a failure in one cluster
// never rolls back another person sharing the same name.
func (s *IngestService) ingestNameGroup(ctx context.Context, group []model.RawRecord) (model.BatchResult, error) {
	draft := make([]disambiguationmodel.RawRecord, len(group))
	for i, rec := range group {
		rec := rec
		draft[i] = disambiguationmodel.RawRecord{
			OrgURL:    rec.OrgURL,
			Rank:      rec.Rank,
			StartDate: rec.StartDate,
			EndDate:   rec.EndDate,
			Opaque:    &rec,
		}
	}

	clusters, err := s.disambiguator.ClusterEmploymentRecords(ctx, draft)
	if err != nil {
		return model.BatchResult{TotalProcessed: len(group), Failed: len(group)}, err
	}

	var total model.BatchResult
	var firstErr error
	for i, cluster := range clusters {
		disambiguationKey := i + 1
		result, err := s.ingestCluster(ctx, cluster, disambiguationKey)
		total.Add(result)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return total, firstErr
}

func (s *IngestService) ingestCluster(ctx context.Context, cluster disambiguationmodel.Cluster, disambiguationKey int) (model.BatchResult, error) {
	rows := make([]model.RawRecord, len(cluster))
	for i, rec := range cluster {
		rows[i] = *rec.Opaque.(*model.RawRecord)
	}
	if len(rows) == 0 {
		return model.BatchResult{}, nil
	}

	result := model.BatchResult{TotalProcessed: len(rows)}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		result.Failed = len(rows)
		return result, fmt.Errorf("beginning cluster transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	people := peoplerepo.NewPeopleRepositoryWithPool(tx)
	orgs := orgrepo.NewOrganizationRepositoryWithPool(tx)
	employment := employmentrepo.NewEmploymentRepositoryWithPool(tx)

	personID, err := people.Upsert(ctx, peoplemodel.UpsertInput{
		Name:              rows[0].CleanName,
		CleanName:         rows[0].CleanName,
		Tel:               firstNonNilTel(rows),
		Email:             firstNonNilEmail(rows),
		DisambiguationKey: disambiguationKey,
	})
	if err != nil {
		result.Failed = len(rows)
		return result, fmt.Errorf("upserting person %q: %w", rows[0].CleanName, err)
	}

	for _, row := range rows {
		orgID, err := s.resolveOrg(ctx, orgs, row)
		if err != nil {
			result.Failed++
			s.log.Error("failed to resolve organization", zap.String("org_url", row.OrgURL), zap.Error(err))
			continue
		}

		_, err = employment.Upsert(ctx, employmentmodel.UpsertInput{
			PersonID:   personID,
			OrgID:      orgID,
			Rank:       strOrNil(row.Rank),
			StartDate:  row.StartDate,
			EndDate:    row.EndDate,
			TenureDays: row.TenureDays,
			RawName:    strOrNil(row.RawName),
			Metadata:   row.Metadata,
		})
		if err != nil {
			result.Failed++
			s.log.Error("failed to upsert employment row", zap.String("person", row.CleanName), zap.String("org", row.OrgName), zap.Error(err))
			continue
		}
		result.Successful++
	}

	if err := tx.Commit(ctx); err != nil {
		// The rows already counted successful above never landed, since
		// the commit failed -- reclassify the whole cluster as failed.
		result.Failed = result.TotalProcessed
		result.Successful = 0
		return result, fmt.Errorf("committing cluster for %q: %w", rows[0].CleanName, err)
	}

	return result, nil
}

// resolveOrg finds or creates the record's organization, first resolving
// its immediate parent (by URL) if one is supplied.
func (s *IngestService) resolveOrg(ctx context.Context, orgs *orgrepo.OrganizationRepository, row model.RawRecord) (int64, error) {
	var parentOrgID *int64
	if row.ParentOrgURL != nil && *row.ParentOrgURL != "" {
		id, err := s.resolveOrgByURL(ctx, orgs, *row.ParentOrgURL, orgmodel.UpsertInput{
			Name: derefOr(row.ParentOrgName, *row.ParentOrgURL),
			URL:  row.ParentOrgURL,
		})
		if err != nil {
			return 0, fmt.Errorf("resolving parent org %q: %w", *row.ParentOrgURL, err)
		}
		parentOrgID = &id
	}

	return s.resolveOrgByURL(ctx, orgs, row.OrgURL, orgmodel.UpsertInput{
		Name:        row.OrgName,
		Department:  row.OrgDepartment,
		URL:         &row.OrgURL,
		ParentOrgID: parentOrgID,
		Metadata:    row.Metadata,
	})
}

func (s *IngestService) resolveOrgByURL(ctx context.Context, orgs *orgrepo.OrganizationRepository, url string, in orgmodel.UpsertInput) (int64, error) {
	existing, err := orgs.GetByURL(ctx, url)
	switch {
	case err == nil:
		return existing.ID, nil
	case errors.Is(err, orgmodel.ErrOrganizationNotFound):
		return orgs.Upsert(ctx, in)
	default:
		return 0, err
	}
}

func firstNonNilTel(rows []model.RawRecord) *string {
	for _, r := range rows {
		if r.Tel != nil {
			return r.Tel
		}
	}
	return nil
}

func firstNonNilEmail(rows []model.RawRecord) *string {
	for _, r := range rows {
		if r.Email != nil {
			return r.Email
		}
	}
	return nil
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
