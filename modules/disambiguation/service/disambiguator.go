// Package service implements the identity disambiguator: clustering a name's
// employment records into the distinct people who share that name.
package service

import (
	"context"

	"github.com/davidkwan/orggraph/modules/disambiguation/model"
	"github.com/davidkwan/orggraph/modules/disambiguation/ports"
	rank "github.com/davidkwan/orggraph/modules/rank/service"
)

// cohesionScores are the point deltas a candidate record accumulates against
// every existing record already placed in a cluster.
const (
	cohesionSameParentMinistry   = 5
	cohesionLogicalPromotion     = 3
	cohesionLateralMove          = 1
	cohesionIllogicalDemotion    = -10
	cohesionImmediateSuccession  = 4
	cohesionQuickSuccession      = 2
	cohesionPermissibleOverlap   = -2

	// minimumCohesionThreshold is the minimum accumulated score a record
	// must reach against a cluster to be placed there instead of founding
	// a new cluster.
	minimumCohesionThreshold = 1

	// illogicalDemotionGap is how many rank points a record must fall below
	// a cluster's prior role before the drop counts as illogical rather
	// than an ordinary lateral reassignment.
	illogicalDemotionGap = 3
)

const (
	immediateSuccessionDays = 30
	quickSuccessionDays     = 180
)

// enrichedRecord is a RawRecord decorated with the derived fields the
// cohesion heuristics need.
type enrichedRecord struct {
	raw            model.RawRecord
	rankScore      int
	parentMinistry string
}

// Disambiguator clusters a single name's raw employment records into the
// distinct underlying people they belong to.
type Disambiguator struct {
	orgs ports.OrgLookup
}

func NewDisambiguator(orgs ports.OrgLookup) *Disambiguator {
	return &Disambiguator{orgs: orgs}
}

// ClusterEmploymentRecords groups raw records for a single name into the
// distinct people they most likely describe. Records are processed in
// chronological order; each is placed in the existing, compatible cluster it
// is most cohesive with, or founds a new cluster when no cluster reaches the
// minimum cohesion threshold.
func (d *Disambiguator) ClusterEmploymentRecords(ctx context.Context, raw []model.RawRecord) ([]model.Cluster, error) {
	enriched := make([]enrichedRecord, 0, len(raw))
	for _, rec := range raw {
		e, err := d.enrich(ctx, rec)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, e)
	}

	sortByStartDate(enriched)

	var clusters [][]enrichedRecord

	for _, record := range enriched {
		bestIndex := -1
		maxScore := minimumCohesionThreshold - 1000 // start below any real threshold comparison

		for i, cluster := range clusters {
			if hasHardConflict(record, cluster) {
				continue
			}

			score := 0
			for _, clusterRecord := range cluster {
				score += cohesionScore(record, clusterRecord)
			}

			if score > maxScore {
				maxScore = score
				bestIndex = i
			}
		}

		if bestIndex != -1 && maxScore >= minimumCohesionThreshold {
			clusters[bestIndex] = append(clusters[bestIndex], record)
		} else {
			clusters = append(clusters, []enrichedRecord{record})
		}
	}

	result := make([]model.Cluster, len(clusters))
	for i, cluster := range clusters {
		members := make(model.Cluster, len(cluster))
		for j, rec := range cluster {
			members[j] = rec.raw
		}
		result[i] = members
	}
	return result, nil
}

func (d *Disambiguator) enrich(ctx context.Context, raw model.RawRecord) (enrichedRecord, error) {
	parentMinistry := "UNKNOWN"
	if raw.OrgURL != "" {
		org, err := d.orgs.GetByURL(ctx, raw.OrgURL)
		if err == nil && org != nil {
			// Ancestors is sorted shallowest-first, so the first entry is
			// the top-level ministry; an org with no ancestors is itself
			// the top of its tree.
			ancestors, err := d.orgs.Ancestors(ctx, org.ID)
			if err != nil {
				return enrichedRecord{}, err
			}
			if len(ancestors) > 0 {
				parentMinistry = ancestors[0].Name
			} else {
				parentMinistry = org.Name
			}
		}
	}

	return enrichedRecord{
		raw:            raw,
		rankScore:      rank.ParseRank(raw.Rank),
		parentMinistry: parentMinistry,
	}, nil
}

func sortByStartDate(records []enrichedRecord) {
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j].raw.StartDate.Before(records[j-1].raw.StartDate); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}

func hasTemporalOverlap(a, b enrichedRecord) bool {
	return !a.raw.StartDate.After(b.raw.EndDate) && !a.raw.EndDate.Before(b.raw.StartDate)
}

// hasHardConflict reports whether placing candidate in a cluster already
// containing an overlapping, non-permissible role would mean one person
// holding two full-time jobs at once.
func hasHardConflict(candidate enrichedRecord, cluster []enrichedRecord) bool {
	for _, existing := range cluster {
		if !hasTemporalOverlap(candidate, existing) {
			continue
		}
		if !rank.PermitsOverlap(candidate.raw.Rank) && !rank.PermitsOverlap(existing.raw.Rank) {
			return true
		}
	}
	return false
}

// cohesionScore scores how well candidate fits as the same person as
// existing, given they are already known not to hard-conflict.
func cohesionScore(candidate, existing enrichedRecord) int {
	score := 0
	if candidate.parentMinistry == existing.parentMinistry {
		score += cohesionSameParentMinistry
	}

	if hasTemporalOverlap(candidate, existing) {
		// Passed the hard-conflict check, so this overlap is permissible --
		// still a soft signal against the same person holding both roles.
		score += cohesionPermissibleOverlap
		return score
	}

	switch {
	case candidate.rankScore > existing.rankScore:
		score += cohesionLogicalPromotion
	case candidate.rankScore == existing.rankScore:
		score += cohesionLateralMove
	default:
		if existing.rankScore-candidate.rankScore > illogicalDemotionGap {
			score += cohesionIllogicalDemotion
		}
	}

	gapDays := int(candidate.raw.StartDate.Sub(existing.raw.EndDate).Hours() / 24)
	switch {
	case gapDays >= 0 && gapDays < immediateSuccessionDays:
		score += cohesionImmediateSuccession
	case gapDays >= immediateSuccessionDays && gapDays < quickSuccessionDays:
		score += cohesionQuickSuccession
	}

	return score
}
