package scan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforesight/foresight/internal/domain"
	"github.com/codeforesight/foresight/internal/usecase/scan"
)

func TestEvaluateGate(t *testing.T) {
	t.Run("stage 1 fails on any finding", func(t *testing.T) {
		report := domain.Report{
			Stage1: &domain.Stage1Result{Findings: findingsWithCWE("CWE-120", 3)},
		}

		result, err := scan.EvaluateGate(report, scan.StageKnown, 0)
		require.NoError(t, err)

		assert.False(t, result.Passed)
		assert.Contains(t, result.Reason, "3 findings")
	})

	t.Run("stage 1 passes on a clean report", func(t *testing.T) {
		report := domain.Report{Stage1: &domain.Stage1Result{}}

		result, err := scan.EvaluateGate(report, scan.StageKnown, 0)
		require.NoError(t, err)

		assert.True(t, result.Passed)
	})

	t.Run("stage 2 fails on logic findings", func(t *testing.T) {
		report := domain.Report{
			Stage2: &domain.Stage2Result{
				Status:   "ok",
				Findings: []domain.LogicFinding{{Issue: "Coupon applied after checkout"}},
			},
		}

		result, err := scan.EvaluateGate(report, scan.StageLogic, 0)
		require.NoError(t, err)

		assert.False(t, result.Passed)
	})

	t.Run("stage 2 fails when analysis did not complete", func(t *testing.T) {
		result, err := scan.EvaluateGate(domain.Report{}, scan.StageLogic, 0)
		require.NoError(t, err)

		assert.False(t, result.Passed)
		assert.Contains(t, result.Reason, "did not complete")
	})

	t.Run("stage 3 fails at the threshold", func(t *testing.T) {
		report := domain.Report{Stage3: &domain.Stage3Result{Score: 0.5}}

		result, err := scan.EvaluateGate(report, scan.StageFuture, 0.5)
		require.NoError(t, err)

		assert.False(t, result.Passed)
	})

	t.Run("stage 3 passes below the threshold", func(t *testing.T) {
		report := domain.Report{Stage3: &domain.Stage3Result{Score: 0.3}}

		result, err := scan.EvaluateGate(report, scan.StageFuture, 0.5)
		require.NoError(t, err)

		assert.True(t, result.Passed)
	})

	t.Run("stage 3 uses the default threshold when unset", func(t *testing.T) {
		report := domain.Report{Stage3: &domain.Stage3Result{Score: 0.6}}

		result, err := scan.EvaluateGate(report, scan.StageFuture, 0)
		require.NoError(t, err)

		assert.False(t, result.Passed)
	})

	t.Run("gating all stages at once is an error", func(t *testing.T) {
		_, err := scan.EvaluateGate(domain.Report{}, scan.StageAll, 0)

		assert.Error(t, err)
	})
}
