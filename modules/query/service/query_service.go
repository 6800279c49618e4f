// Package service implements QueryService, the read-side aggregate over
// colleagues, career progressions, and network snapshots that the facade
// exposes to callers. Every lookup that takes a bare person name can
// optionally expand it through fuzzy name resolution first, querying every
// plausible stored spelling and merging the results.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	"github.com/davidkwan/orggraph/modules/query/model"
	"github.com/davidkwan/orggraph/modules/query/ports"
	"go.uber.org/zap"
)

// QueryService answers colleague, career-progression, and point-in-time
// network questions over the stored employment history.
type QueryService struct {
	repo       ports.QueryRepository
	employment ports.EmploymentLookup
	orgs       ports.OrgAncestorLookup
	resolver   ports.NameResolver
	log        *logger.Logger
}

func NewQueryService(repo ports.QueryRepository, employment ports.EmploymentLookup, orgs ports.OrgAncestorLookup, resolver ports.NameResolver, log *logger.Logger) *QueryService {
	return &QueryService{repo: repo, employment: employment, orgs: orgs, resolver: resolver, log: log}
}

// namesToQuery expands personName into the set of stored names to look up,
// falling back to [personName] unchanged when fuzzy expansion is disabled
// or finds nothing.
func (s *QueryService) namesToQuery(ctx context.Context, personName string, fuzzy model.FuzzyOptions) ([]string, error) {
	if !fuzzy.Enabled {
		return []string{personName}, nil
	}
	similar, err := s.resolver.ResolveSimilarNames(ctx, personName, fuzzy.Resolve)
	if err != nil {
		return nil, err
	}
	if len(similar) == 0 {
		s.log.Info("no fuzzy matches for name, returning no results", zap.String("query", personName))
		return nil, nil
	}
	return similar, nil
}

// FindColleaguesAtDate returns everyone who shared an organization with
// personName on targetDate, across every name the fuzzy expansion (if
// enabled) resolves to.
func (s *QueryService) FindColleaguesAtDate(ctx context.Context, personName string, targetDate time.Time, fuzzy model.FuzzyOptions) ([]model.Colleague, error) {
	names, err := s.namesToQuery(ctx, personName, fuzzy)
	if err != nil || len(names) == 0 {
		return nil, err
	}

	var all []model.Colleague
	for _, name := range names {
		rows, err := s.repo.FindColleaguesAtDate(ctx, name, targetDate)
		if err != nil {
			return nil, fmt.Errorf("finding colleagues for %q: %w", name, err)
		}
		all = append(all, rows...)
	}
	return dedupeColleagues(all), nil
}

// FindAllColleagues returns everyone whose tenure at a shared organization
// ever overlapped personName's, across every resolved name.
func (s *QueryService) FindAllColleagues(ctx context.Context, personName string, fuzzy model.FuzzyOptions) ([]model.AllColleague, error) {
	names, err := s.namesToQuery(ctx, personName, fuzzy)
	if err != nil || len(names) == 0 {
		return nil, err
	}

	var all []model.AllColleague
	for _, name := range names {
		rows, err := s.repo.FindAllColleagues(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("finding all colleagues for %q: %w", name, err)
		}
		all = append(all, rows...)
	}
	return dedupeAllColleagues(all), nil
}

// CareerProgressionByName returns personName's employment history ordered
// by start date, across every resolved name. When getParentOrgs is set,
// each entry's LinkedOrg is populated with its organization's ancestor
// chain. When clusterByRankAndEntity is set, all entries that share a rank
// and entity name (adjacent or not) are merged into one, extending the
// covered date range and recomputing tenure.
func (s *QueryService) CareerProgressionByName(ctx context.Context, personName string, fuzzy model.FuzzyOptions, getParentOrgs, clusterByRankAndEntity bool) ([]model.CareerEntry, error) {
	names, err := s.namesToQuery(ctx, personName, fuzzy)
	if err != nil || len(names) == 0 {
		return nil, err
	}

	var all []model.CareerEntry
	for _, name := range names {
		entries, err := s.repo.CareerProgressionByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("career progression for %q: %w", name, err)
		}
		all = append(all, entries...)
	}

	if len(all) > 0 && getParentOrgs {
		if err := s.attachAncestors(ctx, all); err != nil {
			return nil, err
		}
	}

	if clusterByRankAndEntity {
		all = clusterCareerEntries(all)
	}

	return dedupeCareerEntries(all), nil
}

// CareerProgressionByPersonID returns the employment history for a single
// person id, with no fuzzy expansion and no rank/entity clustering.
func (s *QueryService) CareerProgressionByPersonID(ctx context.Context, personID int64, getParentOrgs bool) ([]model.CareerEntry, error) {
	entries, err := s.repo.CareerProgressionByPersonID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("career progression for person %d: %w", personID, err)
	}

	if len(entries) > 0 && getParentOrgs {
		if err := s.attachAncestors(ctx, entries); err != nil {
			return nil, err
		}
	}

	return dedupeCareerEntries(entries), nil
}

func (s *QueryService) attachAncestors(ctx context.Context, entries []model.CareerEntry) error {
	for i := range entries {
		ancestors, err := s.orgs.Ancestors(ctx, entries[i].OrgID)
		if err != nil {
			return fmt.Errorf("ancestors for org %d: %w", entries[i].OrgID, err)
		}
		entries[i].LinkedOrg = ancestors
	}
	return nil
}

// NetworkSnapshot returns every employment active at targetDate.
func (s *QueryService) NetworkSnapshot(ctx context.Context, targetDate time.Time) ([]model.NetworkSnapshotEntry, error) {
	return s.repo.NetworkSnapshot(ctx, targetDate)
}

// FindPeopleByTemporalOverlap finds people connected to personID by working
// somewhere in the same organization family during an overlapping window.
func (s *QueryService) FindPeopleByTemporalOverlap(ctx context.Context, personID int64, nameFilter string, limit int) ([]employmentmodel.OverlappingMatch, error) {
	return s.employment.FindOverlapping(ctx, []int64{personID}, nameFilter, limit)
}

// FindEmploymentByPersonID returns personID's employment rows, capped at
// limit. When mostRecentOnly is set, only the single employment with the
// latest start date is returned.
func (s *QueryService) FindEmploymentByPersonID(ctx context.Context, personID int64, limit int, mostRecentOnly bool) ([]employmentmodel.Enriched, error) {
	res, err := s.employment.ListByPersonID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("employment for person %d: %w", personID, err)
	}
	if !mostRecentOnly || len(res) == 0 {
		if limit > 0 && len(res) > limit {
			res = res[:limit]
		}
		return res, nil
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartDate.After(res[j].StartDate)
	})
	return res[:1], nil
}

// derefString returns the empty string for nil, so it's safe to use in a
// composite dedup key without leaking pointer identity into the key.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dedupeColleagues(rows []model.Colleague) []model.Colleague {
	seen := make(map[string]bool, len(rows))
	out := make([]model.Colleague, 0, len(rows))
	for _, r := range rows {
		key := fmt.Sprintf("%s|%s|%s|%s|%s|%d", r.Name, r.Organization, derefString(r.Rank), r.StartDate, r.EndDate, r.OverlapDays)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func dedupeAllColleagues(rows []model.AllColleague) []model.AllColleague {
	seen := make(map[string]bool, len(rows))
	out := make([]model.AllColleague, 0, len(rows))
	for _, r := range rows {
		key := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%d",
			r.Name, r.Organization, derefString(r.Rank),
			r.ColleagueStartDate, r.ColleagueEndDate, r.PersonStartDate, r.PersonEndDate,
			r.OverlapStartDate, r.OverlapEndDate, r.OverlapDays)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func dedupeCareerEntries(rows []model.CareerEntry) []model.CareerEntry {
	seen := make(map[string]bool, len(rows))
	out := make([]model.CareerEntry, 0, len(rows))
	for _, r := range rows {
		key := fmt.Sprintf("%d|%d|%s|%s|%s|%d", r.PersonID, r.OrgID, derefString(r.Rank), r.StartDate, r.EndDate, r.SequenceNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// clusterCareerEntries merges entries that share a rank and entity name,
// extending the covered [StartDate, EndDate] range and recomputing tenure.
// The first entry seen for a (rank, entity) pair anchors its position in
// the output; later matches are folded into it rather than appended.
func clusterCareerEntries(entries []model.CareerEntry) []model.CareerEntry {
	if len(entries) == 0 {
		return entries
	}

	type key struct {
		rank   string
		entity string
	}
	index := make(map[key]int, len(entries))
	out := make([]model.CareerEntry, 0, len(entries))

	for _, e := range entries {
		k := key{rank: derefString(e.Rank), entity: e.EntityName}
		if pos, ok := index[k]; ok {
			existing := &out[pos]
			if e.StartDate.Before(existing.StartDate) {
				existing.StartDate = e.StartDate
			}
			if e.EndDate.After(existing.EndDate) {
				existing.EndDate = e.EndDate
			}
			tenure := int(existing.EndDate.Sub(existing.StartDate).Hours() / 24)
			existing.TenureDays = &tenure
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}
