package pipeline

import (
	"fmt"
	"strings"

	"inkwell/pkg/schema"
)

const writeSystemPrompt = `You are a serialized-fiction ghostwriter continuing an ongoing story. You will receive the story context: the ending of the previous chapter, recent key events, and unresolved narrative threads, followed by an outline for the next chapter.

Rules:
- Open the chapter in direct continuity with the previous chapter's ending, or with an explicit time/scene transition.
- Carry forward the recent key events; do not contradict them.
- Make progress on at least one unresolved narrative thread when the outline allows it.
- Do not resolve threads the outline does not ask you to resolve.
- Match the voice and tense of the provided context.
- Output only the chapter prose. No titles, no notes, no markdown.`

const summarizePrompt = `You are a precise extraction system for serialized fiction. Process the provided chapter and return a single JSON object matching the requested schema. Do not add commentary or markdown.

Rules:
- 'key_events': 2-5 short standalone sentences covering the chapter's most important plot events.
- 'character_developments': notable changes or decisions, one short sentence each.
- 'hooks_planted': narrative threads newly introduced in this chapter (foreshadowing, mysteries, promises), each a short description.
- 'hooks_referenced' and 'hooks_resolved': when the chapter touches or resolves a previously planted thread, repeat that thread's original description VERBATIM, character for character. Do not reword it.
- Omit nothing important; invent nothing absent from the text.
- Output only the JSON object.`

// buildRepairSystemPrompt folds the gate's findings into the rewrite
// instructions so the model knows exactly what broke continuity.
func buildRepairSystemPrompt(assessment schema.ContinuityAssessment, storyContext string) string {
	var b strings.Builder
	b.WriteString("You are revising a chapter draft that failed a continuity review. Rewrite the draft so it stays consistent with the story context below. Keep the plot and voice of the draft wherever they do not conflict with the findings.\n\nFindings:\n")
	for _, issue := range assessment.Issues {
		fmt.Fprintf(&b, "- [%s/%s] %s\n", issue.Type, issue.Severity, issue.Message)
	}
	if len(assessment.Issues) == 0 {
		fmt.Fprintf(&b, "- continuity score %.1f is below the acceptance threshold; tie the chapter more tightly to the context\n", assessment.Score)
	}
	b.WriteString("\nStory context:\n")
	b.WriteString(storyContext)
	b.WriteString("\nOutput only the revised chapter prose. No titles, no notes, no markdown.")
	return b.String()
}
