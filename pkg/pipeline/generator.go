package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"

	"inkwell/pkg/continuity"
	"inkwell/pkg/inference"
	"inkwell/pkg/schema"
	"inkwell/pkg/utils"
)

const (
	// Stage names reported over the progress channel.
	StageGenerating  = "generating"
	StageAssessing   = "assessing"
	StageRepairing   = "repairing"
	StageSummarizing = "summarizing"
	StageDone        = "done"
)

const (
	defaultPromptTokenBudget = 6000
	endingTailRunes          = 1200
	recentContextSummaries   = 8
	contextThreadCap         = 8

	// A repair that barely changes the draft will not change the verdict
	// either; stop burning attempts on it.
	repairSimilarityCeiling = 0.97
)

// Request is one chapter-generation job.
type Request struct {
	StoryID      string
	ChapterOrder int
	Title        string
	Outline      string
	Chapters     []schema.ChapterRef
	Summaries    []schema.ChapterSummary
	Gate         schema.GateConfig
}

// Progress is an advisory stage report streamed to the caller.
type Progress struct {
	Stage   string         `json:"stage"`
	Attempt int            `json:"attempt,omitempty"`
	Score   float64        `json:"score,omitempty"`
	Verdict schema.Verdict `json:"verdict,omitempty"`
}

// Result is the outcome of one generation run. Accepted is false when the
// continuity gate rejected every draft; Rejection then holds the final draft
// and its assessment.
type Result struct {
	Accepted   bool
	Chapter    schema.ChapterRef
	Summary    schema.ChapterSummary
	Assessment schema.ContinuityAssessment
	Revisions  []schema.RevisionEntry
	Rejection  *schema.Rejection
}

// Generator drives one chapter through draft, gate, repair, and summarize.
type Generator struct {
	inf         inference.Inferencer
	summarizer  *Summarizer
	tokenBudget int
}

func NewGenerator(inf inference.Inferencer) *Generator {
	return &Generator{
		inf:         inf,
		summarizer:  NewSummarizer(inf),
		tokenBudget: defaultPromptTokenBudget,
	}
}

// SetTokenBudget bounds the prose context handed to the model.
func (g *Generator) SetTokenBudget(n int) {
	if n > 0 {
		g.tokenBudget = n
	}
}

func (g *Generator) Generate(ctx context.Context, req *Request, report func(Progress)) (*Result, error) {
	storyContext := g.buildStoryContext(req)
	user := storyContext + "\n\nNext chapter outline:\n" + req.Outline

	report(Progress{Stage: StageGenerating})
	params := &openai.ChatCompletionNewParams{
		Temperature:         openai.Float(0.85),
		MaxCompletionTokens: openai.Int(4096 * 2),
	}
	draft, err := g.inf.Infer(ctx, params, writeSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("drafting chapter %d: %w", req.ChapterOrder, err)
	}
	draft = strings.TrimSpace(draft)

	result := &Result{}

	if !req.Gate.Enabled {
		result.Accepted = true
		result.Chapter = schema.ChapterRef{Order: req.ChapterOrder, Title: req.Title, Content: draft}
		g.summarize(ctx, req, draft, result, report)
		report(Progress{Stage: StageDone})
		return result, nil
	}

	opts := continuity.OptionsFromGate(req.Gate)

	report(Progress{Stage: StageAssessing})
	assessment := continuity.Assess(draft, req.Chapters, req.Summaries, opts)
	report(Progress{Stage: StageAssessing, Score: assessment.Score, Verdict: assessment.Verdict})

	for attempt := 1; assessment.Verdict == schema.VerdictRevise && attempt <= req.Gate.MaxRepairAttempts; attempt++ {
		report(Progress{Stage: StageRepairing, Attempt: attempt, Score: assessment.Score})

		repaired, err := g.inf.Repair(ctx, nil, buildRepairSystemPrompt(assessment, storyContext), draft)
		if err != nil {
			log.Warn("repair pass failed, keeping current draft", "chapter", req.ChapterOrder, "attempt", attempt, "error", err)
			break
		}
		repaired = strings.TrimSpace(repaired)
		if utils.Similarity(draft, repaired) >= repairSimilarityCeiling {
			log.Warn("repair pass changed almost nothing, stopping", "chapter", req.ChapterOrder, "attempt", attempt)
			break
		}

		result.Revisions = append(result.Revisions, schema.RevisionEntry{
			ID:        ksuid.New().String(),
			Chapter:   req.ChapterOrder,
			Attempt:   attempt,
			Draft:     draft,
			Repaired:  repaired,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		})
		draft = repaired

		assessment = continuity.Assess(draft, req.Chapters, req.Summaries, opts)
		report(Progress{Stage: StageAssessing, Attempt: attempt, Score: assessment.Score, Verdict: assessment.Verdict})
	}

	result.Assessment = assessment

	if assessment.Verdict == schema.VerdictReject {
		result.Rejection = &schema.Rejection{
			Reason:     rejectionReason(assessment),
			Text:       draft,
			Assessment: assessment,
		}
		report(Progress{Stage: StageDone, Score: assessment.Score, Verdict: assessment.Verdict})
		return result, nil
	}

	// Revise after exhausted attempts is accepted with its assessment
	// attached; the gate blocks hard breaks, not imperfect chapters.
	result.Accepted = true
	result.Chapter = schema.ChapterRef{Order: req.ChapterOrder, Title: req.Title, Content: draft}
	g.summarize(ctx, req, draft, result, report)
	report(Progress{Stage: StageDone, Score: assessment.Score, Verdict: assessment.Verdict})
	return result, nil
}

func (g *Generator) summarize(ctx context.Context, req *Request, content string, result *Result, report func(Progress)) {
	report(Progress{Stage: StageSummarizing})
	summary, err := g.summarizer.Summarize(ctx, content)
	if err != nil {
		log.Warn("summarization failed, storing chapter without digest", "chapter", req.ChapterOrder, "error", err)
		summary = schema.ChapterSummary{}
	}
	summary.ChapterNumber = req.ChapterOrder
	result.Summary = summary
}

// buildStoryContext assembles the prompt context: previous chapter ending,
// recent key events, unresolved threads. Trimmed to the token budget from the
// oldest material backwards.
func (g *Generator) buildStoryContext(req *Request) string {
	tail := endingTail(req.Chapters, endingTailRunes)

	assemble := func(tail string, summaryCount int) string {
		var b strings.Builder
		if tail != "" {
			b.WriteString("Previous chapter ending:\n")
			b.WriteString(tail)
			b.WriteString("\n\n")
		}

		recent := recentSummaries(req.Summaries, summaryCount)
		if len(recent) > 0 {
			b.WriteString("Recent events:\n")
			for _, s := range recent {
				events := s.KeyEvents
				if len(events) == 0 && s.OneLine != "" {
					events = []string{s.OneLine}
				}
				for _, ev := range events {
					fmt.Fprintf(&b, "- (chapter %d) %s\n", s.ChapterNumber, ev)
				}
			}
			b.WriteString("\n")
		}

		threads := continuity.UnresolvedHookDescriptions(req.Summaries)
		if len(threads) > contextThreadCap {
			threads = threads[:contextThreadCap]
		}
		if len(threads) > 0 {
			b.WriteString("Unresolved narrative threads:\n")
			for _, t := range threads {
				b.WriteString("- " + t + "\n")
			}
		}
		return b.String()
	}

	out := assemble(tail, recentContextSummaries)
	if tokens, err := utils.CountTokens(out); err == nil && tokens > g.tokenBudget {
		out = assemble(halveTail(tail), recentContextSummaries/2)
	}
	return out
}

func endingTail(chapters []schema.ChapterRef, limit int) string {
	last := ""
	order := 0
	for _, ch := range chapters {
		if ch.Content != "" && ch.Order >= order {
			last = ch.Content
			order = ch.Order
		}
	}
	runes := []rune(strings.TrimSpace(last))
	if len(runes) > limit {
		runes = runes[len(runes)-limit:]
	}
	return strings.TrimSpace(string(runes))
}

func halveTail(tail string) string {
	runes := []rune(tail)
	return strings.TrimSpace(string(runes[len(runes)/2:]))
}

func recentSummaries(summaries []schema.ChapterSummary, n int) []schema.ChapterSummary {
	if n <= 0 || len(summaries) == 0 {
		return nil
	}
	out := slices.Clone(summaries)
	slices.SortStableFunc(out, func(a, b schema.ChapterSummary) int { return b.ChapterNumber - a.ChapterNumber })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func rejectionReason(a schema.ContinuityAssessment) string {
	for _, issue := range a.Issues {
		if issue.Severity == schema.SeverityCritical {
			return issue.Message
		}
	}
	return fmt.Sprintf("continuity score %.2f below reject threshold", a.Score)
}
