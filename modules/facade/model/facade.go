// Package model defines the result shapes the facade returns, which flatten
// or enrich the underlying modules' own result types into the uniform
// shapes the public query API promises.
package model

import (
	graphmodel "github.com/davidkwan/orggraph/modules/graph/model"
	orgmodel "github.com/davidkwan/orggraph/modules/organizations/model"
	peoplemodel "github.com/davidkwan/orggraph/modules/people/model"
	querymodel "github.com/davidkwan/orggraph/modules/query/model"
)

// ColleagueResult is the triple find_colleagues returns, regardless of
// whether the caller asked for a point-in-time snapshot or any-time overlap.
type ColleagueResult struct {
	Name         string
	Organization string
	Rank         *string
}

// PersonResult is one identity find_person_by_name resolves to, optionally
// carrying its career list and the ancestor chain of its most recent unit.
type PersonResult struct {
	peoplemodel.Person
	Profile   []querymodel.CareerEntry    `json:",omitempty"`
	Ancestors []orgmodel.Organization `json:",omitempty"`
}

// PathStepWithMetadata extends a path step with the career enrichment
// shortest_path attaches to person nodes when include_metadata is set. Unit
// names are already carried on the embedded PathStep.
type PathStepWithMetadata struct {
	graphmodel.PathStep
	Career []querymodel.CareerEntry `json:",omitempty"`
}

// BulkInsertResult is the outcome counts bulk_insert_records reports.
type BulkInsertResult struct {
	TotalProcessed int
	Successful     int
	Failed         int
}
