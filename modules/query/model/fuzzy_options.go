package model

import nameresolvermodel "github.com/davidkwan/orggraph/modules/nameresolver/model"

// FuzzyOptions controls whether a name-based lookup expands person_name into
// a set of fuzzy matches before querying, and if so with what tuning.
type FuzzyOptions struct {
	Enabled bool
	Resolve nameresolvermodel.Options
}

// ExactMatch disables fuzzy expansion: the query runs against person_name
// as given, with no resolver round-trip.
func ExactMatch() FuzzyOptions {
	return FuzzyOptions{Enabled: false}
}

// Fuzzy enables fuzzy expansion using opts to tune the resolver pipeline.
func Fuzzy(opts nameresolvermodel.Options) FuzzyOptions {
	return FuzzyOptions{Enabled: true, Resolve: opts}
}
