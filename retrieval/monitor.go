package retrieval

import "github.com/civica/policyrag/core"

// Monitor provides hooks to observe the retrieval pipeline.
// Implement this interface to trace intermediate stages during a search,
// for debugging or offline relevance evaluation.
type Monitor interface {
	Start(query string)
	AfterVectorRecall(candidates []core.Candidate, err error)
	AfterLexicalRecall(candidates []core.Candidate, err error)
	AfterFusion(candidates []core.Candidate)
	AfterThreshold(candidates []core.Candidate)
	AfterRerank(results []core.RankedResult)
	Finish(results []core.RankedResult)
}

// noopMonitor is a no-op implementation of Monitor.
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterVectorRecall(_ []core.Candidate, _ error)  {}
func (n *noopMonitor) AfterLexicalRecall(_ []core.Candidate, _ error) {}
func (n *noopMonitor) AfterFusion(_ []core.Candidate)                 {}
func (n *noopMonitor) AfterThreshold(_ []core.Candidate)              {}
func (n *noopMonitor) AfterRerank(_ []core.RankedResult)              {}
func (n *noopMonitor) Finish(_ []core.RankedResult)                   {}
