// Package model defines the organization entity, its self-referential
// hierarchy, and the errors the organizations module can surface.
package model

import (
	"encoding/json"
	"time"
)

// Organization is a node in a forest of organizational units. ParentOrgID is
// nil at the root of each tree (a department, ministry, or top-level body).
type Organization struct {
	ID          int64
	Name        string
	Department  *string
	URL         *string
	ParentOrgID *int64
	Metadata    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpsertInput is the payload accepted by Upsert. Records are deduplicated on
// URL, so URL should be populated whenever the source data carries one.
type UpsertInput struct {
	Name        string
	Department  *string
	URL         *string
	ParentOrgID *int64
	Metadata    json.RawMessage
}

// DescendantDiffEntry describes how one organization's presence under a
// subtree changed between two dates.
type DescendantDiffEntry struct {
	OrgID   int64
	Name    string
	Status  DiffStatus
	Details json.RawMessage
}

// DiffStatus is the classification assigned to a DescendantDiffEntry.
type DiffStatus string

const (
	DiffAdded     DiffStatus = "added"
	DiffRemoved   DiffStatus = "removed"
	DiffUnchanged DiffStatus = "unchanged"
)

// HierarchyNode is the minimal projection of an organization used to build
// the subunit_of edges of the full-history graph.
type HierarchyNode struct {
	ID          int64
	Name        string
	ParentOrgID *int64
}

// Stats summarizes the organizations table for operator dashboards.
type Stats struct {
	TotalOrganizations int
	UniqueDepartments  int
}
