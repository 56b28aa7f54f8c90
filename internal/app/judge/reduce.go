package judge

import "codearena/internal/domain/model"

// Reduction is the collapse of per-case outcomes into one submission
// status.
type Reduction struct {
	Overall     model.Verdict
	PassedCount int
}

// Reduce walks outcomes in declared case order. The first failing
// case fixes the overall verdict; later failures never overwrite it.
// All cases passing is the only way to an Accepted overall status.
func Reduce(outcomes []CaseOutcome) Reduction {
	red := Reduction{Overall: model.VerdictAccepted}
	failed := false
	for _, oc := range outcomes {
		if oc.Passed {
			red.PassedCount++
			continue
		}
		if !failed {
			red.Overall = oc.Verdict
			failed = true
		}
	}
	return red
}
