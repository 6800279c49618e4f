// Package service resolves a possibly-misspelled or partial person name into
// the set of stored names it most plausibly refers to.
package service

import (
	"context"
	"sort"
	"strings"

	"github.com/davidkwan/orggraph/internal/platform/logger"
	"github.com/davidkwan/orggraph/modules/nameresolver/model"
	"github.com/davidkwan/orggraph/modules/nameresolver/ports"
	fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"
)

// minPgCandidatePoolSize is the floor on how many trigram candidates are
// fetched from storage, so the fuzzy stages always have a decent pool to
// refine even when LimitResults is small.
const minPgCandidatePoolSize = 20

// pgCandidatePoolMultiplier inflates the storage query limit relative to
// the final result limit, since most prefilter candidates get discarded by
// the stricter fuzzy stages.
const pgCandidatePoolMultiplier = 5

type scoredCandidate struct {
	name         string
	primaryScore int
}

type linkedCandidate struct {
	name         string
	primaryScore int
	strongLinks  int
}

// Resolver finds the stored person names closest to a free-text query.
type Resolver struct {
	people ports.PeopleSearcher
	log    *logger.Logger
}

func NewResolver(people ports.PeopleSearcher, log *logger.Logger) *Resolver {
	return &Resolver{people: people, log: log}
}

// ResolveSimilarNames runs the three-stage pipeline: a Postgres trigram (or
// ILIKE) prefilter, a primary token-set-ratio filter against the query, and
// an optional pairwise cohesion filter among the survivors. It returns the
// surviving names, most relevant first, capped at opts.LimitResults.
func (r *Resolver) ResolveSimilarNames(ctx context.Context, nameQuery string, opts model.Options) ([]string, error) {
	sqlLimit := opts.LimitResults * pgCandidatePoolMultiplier
	if sqlLimit < minPgCandidatePoolSize {
		sqlLimit = minPgCandidatePoolSize
	}

	pgCandidates, err := r.people.SearchFuzzy(ctx, nameQuery, sqlLimit, opts.PgSimilarityThreshold)
	if err != nil {
		r.log.Error("trigram prefilter failed", zap.String("query", nameQuery), zap.Error(err))
		return nil, err
	}
	if len(pgCandidates) == 0 {
		r.log.Info("no trigram candidates found", zap.String("query", nameQuery))
		return nil, nil
	}

	primaryThreshold := int(opts.PrimarySimilarityThreshold * 100)
	queryLower := strings.ToLower(nameQuery)

	primary := make([]scoredCandidate, 0, len(pgCandidates))
	for _, cand := range pgCandidates {
		score := fuzzywuzzy.TokenSetRatio(queryLower, strings.ToLower(cand.Name))
		if score >= primaryThreshold {
			primary = append(primary, scoredCandidate{name: cand.Name, primaryScore: score})
		}
	}
	if len(primary) == 0 {
		r.log.Info("no candidates passed primary filter", zap.String("query", nameQuery), zap.Int("threshold", primaryThreshold))
		return nil, nil
	}

	sort.SliceStable(primary, func(i, j int) bool {
		return primary[i].primaryScore > primary[j].primaryScore
	})

	var finalNames []string
	switch {
	case !opts.EnablePairwiseFilter || len(primary) <= 1:
		finalNames = namesOf(primary)
	case len(primary) <= opts.MinStrongPairwiseLinks:
		r.log.Warn("skipping pairwise filter: too few primary candidates",
			zap.String("query", nameQuery), zap.Int("count", len(primary)), zap.Int("required", opts.MinStrongPairwiseLinks))
		finalNames = namesOf(primary)
	default:
		finalNames = r.pairwiseFilter(primary, opts)
	}

	if len(finalNames) > opts.LimitResults {
		finalNames = finalNames[:opts.LimitResults]
	}
	return finalNames, nil
}

// pairwiseFilter keeps only candidates with enough "strong links" -- other
// stage-two survivors they closely resemble -- ranked by (strong link
// count, primary score) descending.
func (r *Resolver) pairwiseFilter(primary []scoredCandidate, opts model.Options) []string {
	pairwiseThreshold := int(opts.PairwiseSimilarityThreshold * 100)

	linked := make([]linkedCandidate, 0, len(primary))
	for i, candI := range primary {
		strongLinks := 0
		for j, candJ := range primary {
			if i == j {
				continue
			}
			if fuzzywuzzy.TokenSetRatio(strings.ToLower(candI.name), strings.ToLower(candJ.name)) >= pairwiseThreshold {
				strongLinks++
			}
		}
		if strongLinks >= opts.MinStrongPairwiseLinks {
			linked = append(linked, linkedCandidate{name: candI.name, primaryScore: candI.primaryScore, strongLinks: strongLinks})
		}
	}

	sort.SliceStable(linked, func(i, j int) bool {
		if linked[i].strongLinks != linked[j].strongLinks {
			return linked[i].strongLinks > linked[j].strongLinks
		}
		return linked[i].primaryScore > linked[j].primaryScore
	})

	names := make([]string, len(linked))
	for i, c := range linked {
		names[i] = c.name
	}
	return names
}

func namesOf(candidates []scoredCandidate) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}
