package analysis

import (
	"github.com/jakobhartmann/tensat/egraph"
	"github.com/jakobhartmann/tensat/model"
)

// Merge keeps the metadata of the surviving class and reports no change.
// With strict merging it first checks that both records are interchangeable.
func (a *TensorAnalysis) Merge(to *Metadata, from Metadata) bool {
	if a.strict && !Interchangeable(*to, from) {
		mergeTotal.WithLabelValues("conflict").Inc()
		fatalf(ErrMergeConflict, "%s vs %s", to, from)
	}

	mergeTotal.WithLabelValues("kept").Inc()
	return false
}

// Modify does nothing; the metadata of a class never changes after Make.
func (a *TensorAnalysis) Modify(*egraph.EGraph[model.Node, Metadata], egraph.ID) {}
