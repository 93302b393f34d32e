package schema

// WorkflowConfig is the raw per-story workflow document. Numeric fields are
// deliberately untyped: the file is hand-edited and values arrive as numbers
// or as strings, and resolution must never fail on either.
type WorkflowConfig struct {
	Review         ReviewSettings `json:"review"`
	ContinuityGate GateSettings   `json:"continuity_gate"`
}

type ReviewSettings struct {
	PassThreshold any `json:"pass_threshold,omitempty"`
}

type GateSettings struct {
	Enabled           any `json:"enabled,omitempty"`
	PassScore         any `json:"pass_score,omitempty"`
	RejectScore       any `json:"reject_score,omitempty"`
	MaxRepairAttempts any `json:"max_repair_attempts,omitempty"`
}

// GateConfig is the fully-resolved continuity gate configuration. Always
// valid: RejectScore < PassScore and MaxRepairAttempts >= 0 hold for every
// value produced by continuity.ResolveGateConfig.
type GateConfig struct {
	Enabled           bool    `json:"enabled"`
	PassScore         float64 `json:"pass_score"`
	RejectScore       float64 `json:"reject_score"`
	MaxRepairAttempts int     `json:"max_repair_attempts"`
}
