// Package scoring implements the run's pure scoring function (spec.md §4.10).
package scoring

import "github.com/codeready-toolchain/healer/pkg/runmodel"

const (
	base              = 100
	speedThresholdMs  = 300_000
	speedBonus        = 10
	fixBonusCap       = 20
	fixBonusPerFix    = 2
	commitFreeQuota   = 20
	commitPenaltyStep = 2
	iterationFreeRuns = 3
	iterationPenalty  = 5
)

// Metrics are the run measurements the scoring function consumes.
// IterationCount excludes iteration 0, the initial analysis (spec.md §4.10).
type Metrics struct {
	TotalTimeMs    int64
	CommitCount    int
	FixCount       int
	IterationCount int
}

// Score computes the breakdown for m. Pure: same input always yields the
// same output, and total is always clamped to a non-negative value.
func Score(m Metrics) runmodel.ScoreBreakdown {
	sb := runmodel.ScoreBreakdown{Base: base}

	if m.TotalTimeMs < speedThresholdMs {
		sb.SpeedBonus = speedBonus
	}

	fixesCounted := m.FixCount
	if fixesCounted > fixBonusCap {
		fixesCounted = fixBonusCap
	}
	sb.FixBonus = fixesCounted * fixBonusPerFix

	if over := m.CommitCount - commitFreeQuota; over > 0 {
		sb.CommitPenalty = -(over * commitPenaltyStep)
	}

	if over := m.IterationCount - iterationFreeRuns; over > 0 {
		sb.IterationPenalty = -(over * iterationPenalty)
	}

	total := sb.Base + sb.SpeedBonus + sb.FixBonus + sb.CommitPenalty + sb.IterationPenalty
	if total < 0 {
		total = 0
	}
	sb.Total = total
	return sb
}
