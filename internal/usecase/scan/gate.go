package scan

import (
	"fmt"

	"github.com/codeforesight/foresight/internal/domain"
)

// DefaultStage3Threshold is the forecast score at which the stage 3 gate
// fails when no threshold is supplied.
const DefaultStage3Threshold = 0.5

// GateResult is the outcome of gating a report on one stage.
type GateResult struct {
	Stage  Stage
	Passed bool
	Reason string
}

// EvaluateGate applies the CI gate policy for a single stage: stage 1
// fails on any rule finding, stage 2 fails on any logic finding or a
// non-ok status, stage 3 fails when the risk score reaches threshold.
// StageAll is not a gateable selection.
func EvaluateGate(report domain.Report, stage Stage, threshold float64) (GateResult, error) {
	switch stage {
	case StageKnown:
		findings := report.ActionableFindings()
		if len(findings) > 0 {
			return GateResult{
				Stage:  stage,
				Reason: fmt.Sprintf("stage 1 gate failed: %d findings", len(findings)),
			}, nil
		}
		return GateResult{Stage: stage, Passed: true, Reason: "stage 1 gate passed"}, nil

	case StageLogic:
		if report.Stage2 == nil || report.Stage2.Status != "ok" {
			return GateResult{Stage: stage, Reason: "stage 2 gate failed: analysis did not complete"}, nil
		}
		if n := len(report.Stage2.Findings); n > 0 {
			return GateResult{
				Stage:  stage,
				Reason: fmt.Sprintf("stage 2 gate failed: %d findings", n),
			}, nil
		}
		return GateResult{Stage: stage, Passed: true, Reason: "stage 2 gate passed"}, nil

	case StageFuture:
		if threshold <= 0 {
			threshold = DefaultStage3Threshold
		}
		if report.Stage3 == nil {
			return GateResult{Stage: stage, Reason: "stage 3 gate failed: no forecast"}, nil
		}
		if report.Stage3.Score >= threshold {
			return GateResult{
				Stage:  stage,
				Reason: fmt.Sprintf("stage 3 gate failed: score %.2f >= %.2f", report.Stage3.Score, threshold),
			}, nil
		}
		return GateResult{Stage: stage, Passed: true, Reason: "stage 3 gate passed"}, nil

	default:
		return GateResult{}, fmt.Errorf("gate requires exactly one stage")
	}
}
