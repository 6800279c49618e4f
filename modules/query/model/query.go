// Package model defines the read-side shapes QueryService returns: point
// and whole-history colleague lookups, career progressions, and network
// snapshots.
package model

import (
	"encoding/json"
	"time"

	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
)

// Colleague is one row of find_colleagues_at_date: someone who shared an
// organization with the queried person at a given point in time.
type Colleague struct {
	Name         string
	Organization string
	Rank         *string
	StartDate    time.Time
	EndDate      time.Time
	OverlapDays  int
}

// AllColleague is one row of find_all_colleagues: someone whose employment
// at a shared organization overlapped the queried person's at any point.
type AllColleague struct {
	Name               string
	Organization       string
	Rank               *string
	ColleagueStartDate time.Time
	ColleagueEndDate   time.Time
	PersonStartDate    time.Time
	PersonEndDate      time.Time
	OverlapStartDate   time.Time
	OverlapEndDate     time.Time
	OverlapDays        int
}

// CareerEntry is one step of a person's career progression.
type CareerEntry struct {
	PersonActualName       string
	PersonID               int64
	EntityName             string
	DepartmentName         *string
	OrgID                  int64
	ParentOrganizationName *string
	EntityMetadata         json.RawMessage
	Rank                   *string
	StartDate              time.Time
	EndDate                time.Time
	TenureDays             *int
	SequenceNumber         int

	// LinkedOrg is the ancestor chain of Org, populated when the caller
	// asks for parent organizations. Empty when the org has no ancestors.
	LinkedOrg []orgmodel.Organization
}

// NetworkSnapshotEntry is one employment active at a queried instant.
type NetworkSnapshotEntry struct {
	PersonID   int64
	PersonName string
	OrgID      int64
	OrgName    string
	Rank       *string
	StartDate  time.Time
	EndDate    time.Time
	Tel        *string
	Email      *string
}
