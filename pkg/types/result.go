package types

// TableOutcome records how one table in a run fared.
type TableOutcome struct {
	Table  string
	Cached bool
	Err    error
}

// RunReport aggregates per-table outcomes; the CLI derives its exit
// code from it.
type RunReport struct {
	Outcomes []TableOutcome
}

func (r *RunReport) Add(o TableOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *RunReport) FailureCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

func (r *RunReport) Failed() bool { return r.FailureCount() > 0 }
