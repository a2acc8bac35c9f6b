package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/cache"
	"github.com/civica/policyrag/core"
)

// recordingMonitor captures which stages fired and what they saw.
type recordingMonitor struct {
	stages        []string
	fusedCount    int
	finishResults []core.RankedResult
}

func (m *recordingMonitor) Start(query string) { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterVectorRecall(candidates []core.Candidate, err error) {
	m.stages = append(m.stages, "vector")
}
func (m *recordingMonitor) AfterLexicalRecall(candidates []core.Candidate, err error) {
	m.stages = append(m.stages, "lexical")
}
func (m *recordingMonitor) AfterFusion(candidates []core.Candidate) {
	m.stages = append(m.stages, "fusion")
	m.fusedCount = len(candidates)
}
func (m *recordingMonitor) AfterThreshold(candidates []core.Candidate) {
	m.stages = append(m.stages, "threshold")
}
func (m *recordingMonitor) AfterRerank(results []core.RankedResult) {
	m.stages = append(m.stages, "rerank")
}
func (m *recordingMonitor) Finish(results []core.RankedResult) {
	m.stages = append(m.stages, "finish")
	m.finishResults = results
}

func TestSearchInvokesMonitorStages(t *testing.T) {
	monitor := &recordingMonitor{}
	engine, _ := newTestEngine(t, WithMonitor(monitor))

	results, err := engine.Search(context.Background(), "garbage collection schedule", 2, core.Location{})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t,
		[]string{"start", "vector", "lexical", "fusion", "threshold", "rerank", "finish"},
		monitor.stages)
	assert.Greater(t, monitor.fusedCount, 0)
	assert.Equal(t, results, monitor.finishResults)
}

func TestCachedSearchSkipsPipelineStages(t *testing.T) {
	local, err := cache.NewLocal()
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	engine, _ := newTestEngine(t, WithCache(local), WithMonitor(monitor))

	ctx := context.Background()
	_, err = engine.Search(ctx, "garbage collection schedule", 2, core.Location{})
	require.NoError(t, err)

	monitor.stages = nil
	_, err = engine.Search(ctx, "garbage collection schedule", 2, core.Location{})
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "finish"}, monitor.stages)
}
