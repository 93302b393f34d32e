package continuity

import (
	"math"
	"strings"

	"inkwell/pkg/schema"
)

// Default assessment options; numeric overrides come from the resolved gate
// configuration.
const (
	DefaultPassScore     = 6.2
	DefaultRejectScore   = 4.9
	defaultOpeningWindow = 420
	defaultAnchorSignals = 8
	defaultEventSignals  = 10
	defaultHookSignals   = 8
)

// Coverage weights and the score mapping. Coverage in [0,1] maps onto a score
// in [4,10]; 0 is reserved for empty content, 10 falls out naturally when
// there is nothing to check against.
const (
	openingWeight     = 0.45
	eventWeight       = 0.35
	hookWeight        = 0.20
	anchorMatchWeight = 0.75
	timelineCueWeight = 0.25
	scoreFloor        = 4.0
	scoreRange        = 6.0
)

// Issue thresholds. Each rule fires independently of the others.
const (
	minAnchorTotalForIssue = 2
	lowOpeningCoverage     = 0.25
	minEventTotalForIssue  = 4
	lowEventCoverage       = 0.2
	minHookTotalForIssue   = 2
	lowHookCoverage        = 0.2
	breakOpeningCoverage   = 0.2
	breakEventCoverage     = 0.15
	breakHookCoverage      = 0.15
)

// timelineCues are transition phrases whose presence in the opening counts as
// an explicit continuity cue. Checked against normalized text, so multi-word
// phrases are collapsed before the lookup.
var timelineCues = []string{
	"next day", "the next morning", "meanwhile", "shortly after",
	"continuing", "still", "just now", "before long", "later that",
	"moments later", "at the same time",
	"第二天", "次日", "与此同时", "同一时间", "不久", "片刻之后",
	"随后", "此时", "紧接着", "依然", "仍旧", "刚刚",
}

// Options bounds one assessment run. Zero values fall back to defaults so a
// partially-filled struct is always usable.
type Options struct {
	PassScore          float64
	RejectScore        float64
	OpeningWindowChars int
	MaxAnchorSignals   int
	MaxEventSignals    int
	MaxHookSignals     int
}

func (o Options) withDefaults() Options {
	if o.PassScore == 0 {
		o.PassScore = DefaultPassScore
	}
	if o.RejectScore == 0 {
		o.RejectScore = DefaultRejectScore
	}
	if o.OpeningWindowChars <= 0 {
		o.OpeningWindowChars = defaultOpeningWindow
	}
	if o.MaxAnchorSignals <= 0 {
		o.MaxAnchorSignals = defaultAnchorSignals
	}
	if o.MaxEventSignals <= 0 {
		o.MaxEventSignals = defaultEventSignals
	}
	if o.MaxHookSignals <= 0 {
		o.MaxHookSignals = defaultHookSignals
	}
	return o
}

// OptionsFromGate maps a resolved gate config onto assessment options.
func OptionsFromGate(gate schema.GateConfig) Options {
	return Options{PassScore: gate.PassScore, RejectScore: gate.RejectScore}.withDefaults()
}

// Assess decides whether candidateContent plausibly continues the story told
// by chapters and summaries. Pure: identical inputs produce identical output.
func Assess(candidateContent string, chapters []schema.ChapterRef, summaries []schema.ChapterSummary, opts Options) schema.ContinuityAssessment {
	opts = opts.withDefaults()

	if strings.TrimSpace(candidateContent) == "" {
		return schema.ContinuityAssessment{
			Score:   0,
			Verdict: schema.VerdictReject,
			Issues: []schema.Issue{{
				Type:     schema.IssueTimeline,
				Severity: schema.SeverityCritical,
				Message:  "candidate chapter is empty",
			}},
			MatchedSignals: schema.MatchedSignals{},
		}
	}

	signals := CollectSignals(chapters, summaries, opts)
	normalized := NormalizeForMatch(candidateContent)
	opening := openingWindow(normalized, opts.OpeningWindowChars)
	cue := hasTimelineCue(opening)

	if signals.Total() == 0 {
		// No usable history: nothing to check against.
		return schema.ContinuityAssessment{
			Score:   10,
			Verdict: schema.VerdictPass,
			Metrics: schema.AssessmentMetrics{
				OpeningCoverage: 1,
				EventCoverage:   1,
				HookCoverage:    1,
				TimelineCue:     cue,
			},
			MatchedSignals: schema.MatchedSignals{},
		}
	}

	openingMatch := MatchSignals(opening, signals.Anchors)
	eventMatch := MatchSignals(normalized, signals.Events)
	hookMatch := MatchSignals(normalized, signals.Hooks)

	openingCoverage := 1.0
	if len(signals.Anchors) > 0 {
		openingCoverage = openingMatch.Coverage * anchorMatchWeight
		if cue {
			openingCoverage += timelineCueWeight
		}
		openingCoverage = math.Min(1, openingCoverage)
	}
	eventCoverage := eventMatch.Coverage
	hookCoverage := hookMatch.Coverage

	weighted := openingCoverage*openingWeight + eventCoverage*eventWeight + hookCoverage*hookWeight
	score := round2(scoreFloor + weighted*scoreRange)

	issues := detectIssues(openingMatch, eventMatch, hookMatch, openingCoverage, eventCoverage, hookCoverage, cue)
	verdict := resolveVerdict(score, issues, opts.PassScore, opts.RejectScore)

	return schema.ContinuityAssessment{
		Score:   score,
		Verdict: verdict,
		Issues:  issues,
		Metrics: schema.AssessmentMetrics{
			OpeningCoverage: round2(openingCoverage),
			EventCoverage:   round2(eventCoverage),
			HookCoverage:    round2(hookCoverage),
			TimelineCue:     cue,
			SignalTotals: schema.SignalTotals{
				Anchors: openingMatch.Total,
				Events:  eventMatch.Total,
				Hooks:   hookMatch.Total,
			},
		},
		MatchedSignals: schema.MatchedSignals{
			Anchors: openingMatch.Matched,
			Events:  eventMatch.Matched,
			Hooks:   hookMatch.Matched,
		},
	}
}

func hasTimelineCue(normalizedOpening string) bool {
	lowered := strings.ToLower(normalizedOpening)
	for _, cue := range timelineCues {
		if strings.Contains(lowered, NormalizeForMatch(cue)) {
			return true
		}
	}
	return false
}

// detectIssues evaluates the rule table; rules are independent, not
// mutually exclusive.
func detectIssues(openingMatch, eventMatch, hookMatch MatchResult, openingCoverage, eventCoverage, hookCoverage float64, cue bool) []schema.Issue {
	var issues []schema.Issue

	if openingMatch.Total >= minAnchorTotalForIssue && openingCoverage < lowOpeningCoverage {
		issues = append(issues, schema.Issue{
			Type:     schema.IssueOpeningAnchor,
			Severity: schema.SeverityMajor,
			Message:  "opening does not pick up the previous chapter's ending",
		})
	}
	if !cue && openingMatch.Total > 0 && len(openingMatch.Matched) == 0 {
		issues = append(issues, schema.Issue{
			Type:     schema.IssueTimeline,
			Severity: schema.SeverityMinor,
			Message:  "opening has no transition cue and no anchor overlap",
		})
	}
	if eventMatch.Total >= minEventTotalForIssue && eventCoverage < lowEventCoverage {
		issues = append(issues, schema.Issue{
			Type:     schema.IssueEventChain,
			Severity: schema.SeverityMajor,
			Message:  "recent key events are not carried forward",
		})
	}
	if hookMatch.Total >= minHookTotalForIssue && hookCoverage < lowHookCoverage {
		issues = append(issues, schema.Issue{
			Type:     schema.IssueHookProgress,
			Severity: schema.SeverityMajor,
			Message:  "unresolved narrative hooks make no progress",
		})
	}
	if openingCoverage < breakOpeningCoverage && eventCoverage < breakEventCoverage && hookCoverage < breakHookCoverage {
		issues = append(issues, schema.Issue{
			Type:     schema.IssueTimeline,
			Severity: schema.SeverityCritical,
			Message:  "chapter appears disconnected from the story so far",
		})
	}
	return issues
}

func resolveVerdict(score float64, issues []schema.Issue, passScore, rejectScore float64) schema.Verdict {
	hasCritical := false
	hasMajor := false
	for _, issue := range issues {
		switch issue.Severity {
		case schema.SeverityCritical:
			hasCritical = true
		case schema.SeverityMajor:
			hasMajor = true
		}
	}

	switch {
	case hasCritical || score < rejectScore:
		return schema.VerdictReject
	case score < passScore || hasMajor:
		return schema.VerdictRevise
	default:
		return schema.VerdictPass
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
