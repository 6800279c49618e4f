// Package model defines the node/edge shapes the in-memory organizational
// graphs are built from and the results their traversals return.
package model

import "time"

// NodeKind distinguishes the two kinds of node the full-history graph
// carries. A colleague graph only ever has PersonNode nodes.
type NodeKind string

const (
	PersonNode NodeKind = "person"
	OrgNode    NodeKind = "organization"
)

// NodeID is a type-prefixed identifier, e.g. "person_42" or "org_7", so
// person and organization ids never collide as graph keys.
type NodeID string

// EmploymentEdge describes a person->organization employment span that
// existed for [StartDate, EndDate]. The graph builders do not attach it to
// any edge: full-history graph edges carry no attributes.
type EmploymentEdge struct {
	Rank      string
	StartDate time.Time
	EndDate   time.Time
}

// PathStep is one node along a resolved path, already carrying its display
// name so callers don't need a second lookup.
type PathStep struct {
	Kind NodeKind
	ID   int64
	Name string
}

// CentralityMetrics holds the three measures calculated over the
// person-to-person connectivity graph, keyed by person id.
type CentralityMetrics struct {
	Betweenness map[int64]float64
	Degree      map[int64]float64
	Closeness   map[int64]float64
}
