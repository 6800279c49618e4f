// Package model defines the person entity and the errors the people module
// can surface.
package model

import (
	"encoding/json"
	"time"
)

// Person is a single disambiguated identity in the graph. Two rows can share
// the same Name when DisambiguationKey differs -- that is how the clustering
// pipeline records "these are actually different people with this name".
type Person struct {
	ID                 int64
	Name               string
	CleanName          string
	Tel                *string
	Email              *string
	DisambiguationKey  int
	Metadata           json.RawMessage
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UpsertInput is the payload accepted by Upsert. DisambiguationKey defaults
// to 1 (the first identity recorded under a given name) when zero.
type UpsertInput struct {
	Name              string
	CleanName         string
	Tel               *string
	Email             *string
	DisambiguationKey int
	Metadata          json.RawMessage
}

// SearchMatch is a fuzzy-search result row carrying the similarity score the
// match was found with. Score is 0 when the result came from the ILIKE
// fallback path rather than trigram similarity.
type SearchMatch struct {
	Person
	Score float64
}

// NameStats summarizes the people table for operator dashboards.
type NameStats struct {
	UniqueNames int
}
