package validation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarnessAllChecksPass(t *testing.T) {
	if testing.Short() {
		t.Skip("runs large Monte Carlo batches")
	}
	h := NewHarness(20260830, zerolog.Nop())
	rep, err := h.Run()
	require.NoError(t, err)
	require.Len(t, rep.Checks, 6)
	for _, c := range rep.Checks {
		assert.True(t, c.Passed, "%s: metric %v tolerance %v", c.Name, c.Metric, c.Tolerance)
	}
	assert.True(t, rep.Passed())
	assert.Empty(t, rep.Failed())
}

func TestHarnessIsReproducible(t *testing.T) {
	if testing.Short() {
		t.Skip("runs large Monte Carlo batches")
	}
	a, err := NewHarness(7, zerolog.Nop()).Run()
	require.NoError(t, err)
	b, err := NewHarness(7, zerolog.Nop()).Run()
	require.NoError(t, err)
	require.Equal(t, len(a.Checks), len(b.Checks))
	for i := range a.Checks {
		assert.Equal(t, a.Checks[i].Metric, b.Checks[i].Metric, a.Checks[i].Name)
	}
}

func TestReportFailedFiltering(t *testing.T) {
	rep := Report{Checks: []CheckResult{
		{Name: "ok", Passed: true},
		{Name: "bad", Passed: false, Metric: 1, Tolerance: 0.5},
	}}
	assert.False(t, rep.Passed())
	require.Len(t, rep.Failed(), 1)
	assert.Equal(t, "bad", rep.Failed()[0].Name)
}
