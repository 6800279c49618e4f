// Package model defines the employment entity: a person's tenure at an
// organization under a given rank, for a closed date interval.
package model

import (
	"encoding/json"
	"time"
)

// Employment records that a person held a role at an organization over
// [StartDate, EndDate], both inclusive.
type Employment struct {
	ID         int64
	PersonID   int64
	OrgID      int64
	Rank       *string
	StartDate  time.Time
	EndDate    time.Time
	TenureDays *int
	RawName    *string
	Metadata   json.RawMessage
	CreatedAt  time.Time
}

// Enriched carries the joined person/organization names alongside the
// employment row, as most read paths need them together.
type Enriched struct {
	Employment
	PersonName string
	OrgName    string
	OrgMeta    json.RawMessage
}

// UpsertInput is the payload accepted by Upsert.
type UpsertInput struct {
	PersonID   int64
	OrgID      int64
	Rank       *string
	StartDate  time.Time
	EndDate    time.Time
	TenureDays *int
	RawName    *string
	Metadata   json.RawMessage
}

// OverlappingMatch is a person found working somewhere in a source
// employment's organization family during an overlapping time window.
type OverlappingMatch struct {
	PersonID  int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// Stats summarizes the employment table for operator dashboards.
type Stats struct {
	TotalEmployments  int
	TotalPeople       int
	TotalOrganizations int
}
