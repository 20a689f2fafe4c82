package model

// MergeReport records what one mix definition did to one unit. Skips are
// not errors; they are listed here and logged.
type MergeReport struct {
	Mix    string
	Target string

	FieldsAdded   []string
	FieldsSkipped []string

	MethodsAdded    []string
	MethodsReplaced []string
	MethodsSkipped  []string

	Injections        []Injection
	InjectionsSkipped []string
}

// Injection records one spliced fragment and how many sites received it.
type Injection struct {
	Source string
	Target string
	At     Location
	Sites  int
}

// Changed reports whether the mix modified the unit.
func (r MergeReport) Changed() bool {
	if len(r.FieldsAdded) > 0 || len(r.MethodsAdded) > 0 || len(r.MethodsReplaced) > 0 {
		return true
	}

	for _, inj := range r.Injections {
		if inj.Sites > 0 {
			return true
		}
	}

	return false
}

// Materialized is the outcome of one materialize call.
type Materialized struct {
	Class   string
	Bytes   []byte
	Patched bool
	Reports []MergeReport
}
