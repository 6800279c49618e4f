// Package model defines the shapes Ingest consumes and produces: raw
// source rows awaiting identity resolution, and the per-batch outcome
// counts callers use to judge a load.
package model

import (
	"encoding/json"
	"time"
)

// RawRecord is one parsed source row: a person observed at an
// organization, under a rank, for a date interval, prior to any identity
// resolution. CleanName groups records the disambiguator will split or
// merge into one or more underlying people.
type RawRecord struct {
	CleanName string
	RawName   string
	Tel       *string
	Email     *string

	OrgName       string
	OrgDepartment *string
	OrgURL        string
	ParentOrgName *string
	ParentOrgURL  *string

	Rank       string
	StartDate  time.Time
	EndDate    time.Time
	TenureDays *int

	Metadata json.RawMessage
}

// BatchResult summarizes one IngestBatch call at employment-row
// granularity: a cluster that fails to commit counts every one of its
// records as failed, not just the one that triggered the error.
type BatchResult struct {
	TotalProcessed int
	Successful     int
	Failed         int
}

// Add folds other's counts into r.
func (r *BatchResult) Add(other BatchResult) {
	r.TotalProcessed += other.TotalProcessed
	r.Successful += other.Successful
	r.Failed += other.Failed
}
