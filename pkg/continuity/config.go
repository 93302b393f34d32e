package continuity

import (
	"math"
	"strconv"
	"strings"

	"inkwell/pkg/schema"
)

// Clamp bounds for gate thresholds. The derived pass window is narrower than
// the explicit-override window: a review threshold should only nudge the
// gate, while an operator override may push it further.
const (
	defaultRepairAttempts = 1

	derivedPassOffset = 0.6
	derivedPassMin    = 5.8
	derivedPassMax    = 8.2
	overridePassMin   = 4.5
	overridePassMax   = 9.5
	rejectScoreMin    = 3.5
	rejectPassGap     = 0.4
)

// ResolveGateConfig turns a raw workflow document into a fully-resolved gate
// configuration. It never fails: invalid or missing values fall back to
// defaults, every threshold is clamped, and RejectScore < PassScore holds for
// any input.
func ResolveGateConfig(cfg schema.WorkflowConfig) schema.GateConfig {
	gate := cfg.ContinuityGate

	passScore := DefaultPassScore
	if v, ok := toFloat(gate.PassScore); ok {
		passScore = clamp(v, overridePassMin, overridePassMax)
	} else if v, ok := toFloat(cfg.Review.PassThreshold); ok {
		passScore = clamp(v-derivedPassOffset, derivedPassMin, derivedPassMax)
	}

	rejectScore := DefaultRejectScore
	if v, ok := toFloat(gate.RejectScore); ok {
		rejectScore = v
	}
	rejectScore = clamp(rejectScore, rejectScoreMin, passScore-rejectPassGap)

	attempts := defaultRepairAttempts
	if v, ok := toFloat(gate.MaxRepairAttempts); ok {
		attempts = int(math.Max(0, math.Trunc(v)))
	}

	return schema.GateConfig{
		Enabled:           toBool(gate.Enabled, true),
		PassScore:         passScore,
		RejectScore:       rejectScore,
		MaxRepairAttempts: attempts,
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Min(hi, math.Max(lo, v))
}

// toFloat accepts the numeric shapes a hand-edited JSON document produces:
// numbers, integers, and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toBool(v any, fallback bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}
