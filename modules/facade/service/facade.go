// Package service implements the Facade: the single entry point the HTTP
// layer drives, dispatching each public operation to QueryService,
// GraphService, OrganizationService, or IngestService and reshaping their
// results into the uniform contracts callers are promised.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	employmentmodel "github.com/davidkwan/orggraph/modules/employment/model"
	facademodel "github.com/davidkwan/orggraph/modules/facade/model"
	"github.com/davidkwan/orggraph/modules/facade/ports"
	graphmodel "github.com/davidkwan/orggraph/modules/graph/model"
	graphservice "github.com/davidkwan/orggraph/modules/graph/service"
	ingestmodel "github.com/davidkwan/orggraph/modules/ingest/model"
	ingestservice "github.com/davidkwan/orggraph/modules/ingest/service"
	nrmodel "github.com/davidkwan/orggraph/modules/nameresolver/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
	orgservice "github.com/davidkwan/orggraph/modules/organizations/service"
	querymodel "github.com/davidkwan/orggraph/modules/query/model"
	queryservice "github.com/davidkwan/orggraph/modules/query/service"
)

// Facade wires the four read/write services behind the operation names
// callers actually ask for.
type Facade struct {
	query    *queryservice.QueryService
	graph    *graphservice.GraphService
	orgs     *orgservice.OrganizationService
	ingest   *ingestservice.IngestService
	people   ports.PeopleFinder
	resolver ports.NameResolver
	log      *logger.Logger
}

func New(query *queryservice.QueryService, graph *graphservice.GraphService, orgs *orgservice.OrganizationService, ingest *ingestservice.IngestService, people ports.PeopleFinder, resolver ports.NameResolver, log *logger.Logger) *Facade {
	return &Facade{query: query, graph: graph, orgs: orgs, ingest: ingest, people: people, resolver: resolver, log: log}
}

// resolveNames expands name through C2 when fuzzy is set, falling back to
// [name] unchanged otherwise.
func (f *Facade) resolveNames(ctx context.Context, name string, fuzzy bool, opts nrmodel.Options) ([]string, error) {
	if !fuzzy {
		return []string{name}, nil
	}
	names, err := f.resolver.ResolveSimilarNames(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// FindColleagues returns the (name, organization, rank) triples of
// personName's colleagues. When date is nil, every overlap in the person's
// history is considered; otherwise only intervals covering date.
func (f *Facade) FindColleagues(ctx context.Context, personName string, date *time.Time, fuzzy querymodel.FuzzyOptions) ([]facademodel.ColleagueResult, error) {
	if date != nil {
		rows, err := f.query.FindColleaguesAtDate(ctx, personName, *date, fuzzy)
		if err != nil {
			return nil, err
		}
		return dedupeColleagueResults(toColleagueResults(rows)), nil
	}

	rows, err := f.query.FindAllColleagues(ctx, personName, fuzzy)
	if err != nil {
		return nil, err
	}
	return dedupeColleagueResults(toAllColleagueResults(rows)), nil
}

// FindPersonByName resolves name (through C2 when fuzzy is set) and returns
// every stored identity matching any resolved spelling, deduplicated by
// person id, optionally enriched with a career profile and/or the ancestor
// chain of the most recent employment's unit.
func (f *Facade) FindPersonByName(ctx context.Context, name string, fuzzy bool, resolveOpts nrmodel.Options, includeProfile, includeAncestors bool) ([]facademodel.PersonResult, error) {
	names, err := f.resolveNames(ctx, name, fuzzy, resolveOpts)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	seen := make(map[int64]bool)
	var out []facademodel.PersonResult
	for _, n := range names {
		people, err := f.people.ListByName(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("looking up %q: %w", n, err)
		}
		for _, p := range people {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true

			result := facademodel.PersonResult{Person: p}
			if includeProfile || includeAncestors {
				entries, err := f.query.CareerProgressionByPersonID(ctx, p.ID, false)
				if err != nil {
					return nil, fmt.Errorf("career for person %d: %w", p.ID, err)
				}
				if includeProfile {
					result.Profile = entries
				}
				if includeAncestors {
					ancestors, err := f.ancestorsOfMostRecent(ctx, entries)
					if err != nil {
						return nil, err
					}
					result.Ancestors = ancestors
				}
			}
			out = append(out, result)
		}
	}
	return out, nil
}

// ancestorsOfMostRecent returns the ancestor chain of the last (most
// recent, since entries are ascending by start date) entry's unit, falling
// back to that unit alone when it has no recorded ancestors.
func (f *Facade) ancestorsOfMostRecent(ctx context.Context, entries []querymodel.CareerEntry) ([]orgmodel.Organization, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	mostRecent := entries[len(entries)-1]
	chain, err := f.orgs.Ancestors(ctx, mostRecent.OrgID)
	if err != nil {
		return nil, fmt.Errorf("ancestors for org %d: %w", mostRecent.OrgID, err)
	}
	if len(chain) > 0 {
		return chain, nil
	}
	return []orgmodel.Organization{{ID: mostRecent.OrgID, Name: mostRecent.EntityName}}, nil
}

// CareerProgressionByName is the name-keyed career_progression operation.
func (f *Facade) CareerProgressionByName(ctx context.Context, name string, fuzzy querymodel.FuzzyOptions, getParentOrgs, clusterByRankAndEntity bool) ([]querymodel.CareerEntry, error) {
	return f.query.CareerProgressionByName(ctx, name, fuzzy, getParentOrgs, clusterByRankAndEntity)
}

// CareerProgressionByPersonID is the id-keyed career_progression operation.
func (f *Facade) CareerProgressionByPersonID(ctx context.Context, personID int64, getParentOrgs bool) ([]querymodel.CareerEntry, error) {
	return f.query.CareerProgressionByPersonID(ctx, personID, getParentOrgs)
}

// NetworkSnapshot returns every employment active at date.
func (f *Facade) NetworkSnapshot(ctx context.Context, date time.Time) ([]querymodel.NetworkSnapshotEntry, error) {
	return f.query.NetworkSnapshot(ctx, date)
}

// FindPeopleByTemporalOverlap returns people sharing a unit family and an
// overlapping interval with personID.
func (f *Facade) FindPeopleByTemporalOverlap(ctx context.Context, personID int64, nameFilter string, limit int) ([]employmentmodel.OverlappingMatch, error) {
	return f.query.FindPeopleByTemporalOverlap(ctx, personID, nameFilter, limit)
}

// FindMostRecentEmployment returns personID's single latest employment row.
func (f *Facade) FindMostRecentEmployment(ctx context.Context, personID int64) (*employmentmodel.Enriched, error) {
	rows, err := f.query.FindEmploymentByPersonID(ctx, personID, 0, true)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, facademodel.ErrPersonNotFound
	}
	return &rows[0], nil
}

// ShortestPath dispatches to G_colleague (temporal) or G_full (otherwise),
// attaching each person step's career and carrying each unit step's name
// (already resolved onto the step) when includeMetadata is set.
func (f *Facade) ShortestPath(ctx context.Context, aIDs, bIDs []int64, temporal, peopleOnly, includeMetadata bool) ([]facademodel.PathStepWithMetadata, error) {
	if len(aIDs) == 0 || len(bIDs) == 0 {
		return nil, facademodel.ErrNoSourceOrTarget
	}

	var steps []graphmodel.PathStep
	var err error
	if temporal {
		steps, err = f.graph.FindShortestTemporalPath(ctx, aIDs, bIDs)
	} else {
		steps, err = f.graph.FindShortestPath(ctx, aIDs, bIDs, peopleOnly)
	}
	if err != nil {
		return nil, err
	}

	out := make([]facademodel.PathStepWithMetadata, len(steps))
	for i, step := range steps {
		out[i] = facademodel.PathStepWithMetadata{PathStep: step}
		if !includeMetadata || step.Kind != graphmodel.PersonNode {
			continue
		}
		career, err := f.query.CareerProgressionByPersonID(ctx, step.ID, false)
		if err != nil {
			return nil, fmt.Errorf("career metadata for person %d: %w", step.ID, err)
		}
		out[i].Career = career
	}
	return out, nil
}

// GetBaseOrganizations returns the top-level (depth 1) organizations.
func (f *Facade) GetBaseOrganizations(ctx context.Context) ([]orgmodel.Organization, error) {
	return f.orgs.ByDepth(ctx, 1)
}

// GetActiveDescendants returns root's descendants active on date.
func (f *Facade) GetActiveDescendants(ctx context.Context, root int64, date string) ([]orgmodel.Organization, error) {
	return f.orgs.SubtreeAtDate(ctx, root, date)
}

// GetOrgTimelineDates returns root's subtree change dates. When distinct is
// set, adjacent dates whose active descendant sets are identical collapse
// to the earlier date.
func (f *Facade) GetOrgTimelineDates(ctx context.Context, root int64, distinct bool) ([]string, error) {
	dates, err := f.orgs.Timeline(ctx, root)
	if err != nil {
		return nil, err
	}
	if !distinct {
		return dates, nil
	}
	return f.collapseDistinctTimeline(ctx, root, dates)
}

func (f *Facade) collapseDistinctTimeline(ctx context.Context, root int64, dates []string) ([]string, error) {
	if len(dates) == 0 {
		return dates, nil
	}

	sets := make([]map[int64]bool, len(dates))
	for i, d := range dates {
		descendants, err := f.orgs.SubtreeAtDate(ctx, root, d)
		if err != nil {
			return nil, fmt.Errorf("active descendants at %s: %w", d, err)
		}
		set := make(map[int64]bool, len(descendants))
		for _, org := range descendants {
			set[org.ID] = true
		}
		sets[i] = set
	}

	out := []string{dates[0]}
	for i := 1; i < len(dates); i++ {
		if !sameIDSet(sets[i-1], sets[i]) {
			out = append(out, dates[i])
		}
	}
	return out, nil
}

func sameIDSet(a, b map[int64]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}

// GetOrgDescendantsDiff reports the added/removed/unchanged descendants of
// root between two dates.
func (f *Facade) GetOrgDescendantsDiff(ctx context.Context, root int64, startDate, endDate string) ([]orgmodel.DescendantDiffEntry, error) {
	return f.orgs.DiffBetweenDates(ctx, root, startDate, endDate)
}

// UpdateParentOrg re-parents orgID under parentOrgID (nil to make it
// top-level). A mutation, alongside bulk ingest.
func (f *Facade) UpdateParentOrg(ctx context.Context, orgID int64, parentOrgID *int64) error {
	return f.orgs.UpdateParentOrg(ctx, orgID, parentOrgID)
}

// BulkInsertRecords runs the Ingest path over records, chunked at
// batchSize (the Ingest default when batchSize <= 0).
func (f *Facade) BulkInsertRecords(ctx context.Context, records []ingestmodel.RawRecord, batchSize int) (facademodel.BulkInsertResult, error) {
	opts := ingestservice.DefaultOptions()
	if batchSize > 0 {
		opts.BatchSize = batchSize
	}
	result, err := f.ingest.IngestBatch(ctx, records, opts)
	return facademodel.BulkInsertResult{
		TotalProcessed: result.TotalProcessed,
		Successful:     result.Successful,
		Failed:         result.Failed,
	}, err
}

func toColleagueResults(rows []querymodel.Colleague) []facademodel.ColleagueResult {
	out := make([]facademodel.ColleagueResult, len(rows))
	for i, r := range rows {
		out[i] = facademodel.ColleagueResult{Name: r.Name, Organization: r.Organization, Rank: r.Rank}
	}
	return out
}

func toAllColleagueResults(rows []querymodel.AllColleague) []facademodel.ColleagueResult {
	out := make([]facademodel.ColleagueResult, len(rows))
	for i, r := range rows {
		out[i] = facademodel.ColleagueResult{Name: r.Name, Organization: r.Organization, Rank: r.Rank}
	}
	return out
}

func dedupeColleagueResults(rows []facademodel.ColleagueResult) []facademodel.ColleagueResult {
	seen := make(map[string]bool, len(rows))
	out := make([]facademodel.ColleagueResult, 0, len(rows))
	for _, r := range rows {
		key := r.Name + "|" + r.Organization + "|" + derefString(r.Rank)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
