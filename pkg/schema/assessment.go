package schema

type Verdict string

const (
	VerdictPass   Verdict = "pass"
	VerdictRevise Verdict = "revise"
	VerdictReject Verdict = "reject"
)

type IssueType string

const (
	IssueOpeningAnchor IssueType = "opening_anchor"
	IssueEventChain    IssueType = "event_chain"
	IssueHookProgress  IssueType = "hook_progress"
	IssueTimeline      IssueType = "timeline"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Issue is one rule-based finding from the continuity gate.
type Issue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// SignalTotals counts the signals available per category before matching.
type SignalTotals struct {
	Anchors int `json:"anchors"`
	Events  int `json:"events"`
	Hooks   int `json:"hooks"`
}

// AssessmentMetrics exposes the per-category coverage the score was built from.
type AssessmentMetrics struct {
	OpeningCoverage float64      `json:"opening_coverage"`
	EventCoverage   float64      `json:"event_coverage"`
	HookCoverage    float64      `json:"hook_coverage"`
	TimelineCue     bool         `json:"timeline_cue"`
	SignalTotals    SignalTotals `json:"signal_totals"`
}

// MatchedSignals lists the signals found in the candidate, per category.
type MatchedSignals struct {
	Anchors []string `json:"anchors"`
	Events  []string `json:"events"`
	Hooks   []string `json:"hooks"`
}

// ContinuityAssessment is the engine's verdict on one candidate chapter.
// Ephemeral; the pipeline decides accept/repair/reject from it.
type ContinuityAssessment struct {
	Score          float64           `json:"score"`
	Verdict        Verdict           `json:"verdict"`
	Issues         []Issue           `json:"issues"`
	Metrics        AssessmentMetrics `json:"metrics"`
	MatchedSignals MatchedSignals    `json:"matched_signals"`
}
