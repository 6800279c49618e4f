// Package service implements RankParser: a pure, deterministic mapping from
// a free-text job title to a seniority score and a permissible-overlap flag.
package service

import (
	"sort"
	"strings"
)

// levelModifiers adjust the base score additively, scanned last over
// whatever text remains after role/tier matching.
var levelModifiers = map[string]int{
	"junior":     -2,
	"jr":         -2,
	"associate":  -1,
	"assistant":  -1,
	"senior":     2,
	"sr":         2,
	"lead":       3,
	"principal":  4,
	"(covering)": 0,
}

// roleKeyword is a (phrase, score) pair; roleKeywords preserves the
// original lexicon order since the first substring match wins.
type roleKeyword struct {
	phrase string
	value  int
}

var roleKeywords = []roleKeyword{
	{"intern", 1},
	{"officer", 5},
	{"executive", 5},
	{"specialist", 6},
	{"analyst", 6},
	{"engineer", 7},
	{"consultant", 7},
	{"scientist", 8},
	{"counsel", 8},
	{"manager", 10},
}

// managementTiers are matched before role keywords, longest phrase first;
// exactly one contributes to the score.
var managementTiers = map[string]int{
	"head":               15,
	"assistant director": 18,
	"director":           20,
	"deputy director":    19,
	"senior director":    22,
	"vice president":     25,
	"vp":                 25,
	"chief":              30,
}

// permissibleOverlapKeywords mark titles that can be held concurrently with
// another job without forming a hard conflict in the disambiguator.
var permissibleOverlapKeywords = []string{
	"board member",
	"advisor",
	"adviser",
	"consultant",
	"non-executive",
	"fellow",
	"mentor",
}

var sortedManagementTiers = sortedKeysByLengthDesc(managementTiers)

func sortedKeysByLengthDesc(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return len(keys[i]) > len(keys[j])
	})
	return keys
}

// ParseRank calculates a seniority score for a given job title. Returns 0 on
// an empty title.
func ParseRank(title string) int {
	if title == "" {
		return 0
	}

	text := " " + strings.ToLower(title) + " "
	score := 0
	foundRoleBase := false

	// Step 1: high-level management tiers, longest phrase first, at most one.
	for _, tier := range sortedManagementTiers {
		padded := " " + tier + " "
		if strings.Contains(text, padded) {
			score += managementTiers[tier]
			text = strings.Replace(text, padded, " ", 1)
			foundRoleBase = true
			break
		}
	}

	// Step 2: core role keyword, first match wins (lexicon order).
	if !foundRoleBase {
		for _, role := range roleKeywords {
			padded := " " + role.phrase + " "
			if strings.Contains(text, padded) {
				score += role.value
				text = strings.Replace(text, padded, " ", 1)
				break
			}
		}
	}

	// Step 3: level modifiers over whatever remains; multiple may apply.
	for modifier, value := range levelModifiers {
		if strings.Contains(text, " "+modifier+" ") {
			score += value
		}
	}

	return score
}

// PermitsOverlap reports whether a title contains any keyword suggesting the
// role can be held concurrently with another job.
func PermitsOverlap(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, keyword := range permissibleOverlapKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
