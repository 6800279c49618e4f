// Package model defines the raw employment record shape the disambiguator
// clusters, ahead of any person_id/disambiguation_key assignment.
package model

import "time"

// RawRecord is one parsed employment observation for a single name, prior
// to identity resolution: we don't yet know which of the name's underlying
// people it belongs to.
type RawRecord struct {
	OrgURL    string
	Rank      string
	StartDate time.Time
	EndDate   time.Time

	// Opaque carries caller-supplied data (ingest source rows, additional
	// fields) through clustering unchanged.
	Opaque interface{}
}

// Cluster is a set of RawRecords judged to belong to the same underlying
// person.
type Cluster []RawRecord
