package continuity

import (
	"slices"

	"inkwell/pkg/schema"
)

const (
	recentAnchorChapters = 2
	recentEventSummaries = 8
	keyEventsPerSummary  = 2
	maxUnresolvedHooks   = 8
)

// SignalSet holds the three derived signal categories for one assessment.
type SignalSet struct {
	Anchors []string
	Events  []string
	Hooks   []string
}

func (s SignalSet) Total() int {
	return len(s.Anchors) + len(s.Events) + len(s.Hooks)
}

// CollectSignals derives anchor, event, and hook signals from prior chapters,
// summaries, and (via summaries) unresolved hook descriptions.
func CollectSignals(chapters []schema.ChapterRef, summaries []schema.ChapterSummary, opts Options) SignalSet {
	return SignalSet{
		Anchors: collectAnchorSignals(chapters, opts.MaxAnchorSignals),
		Events:  collectEventSignals(summaries, opts.MaxEventSignals),
		Hooks:   collectHookSignals(summaries, opts.MaxHookSignals),
	}
}

// collectAnchorSignals samples the endings of the most recent chapters, most
// recent first, so an accepted candidate has to pick up where they left off.
func collectAnchorSignals(chapters []schema.ChapterRef, maxSignals int) []string {
	if len(chapters) == 0 || maxSignals <= 0 {
		return nil
	}

	ordered := slices.Clone(chapters)
	slices.SortStableFunc(ordered, func(a, b schema.ChapterRef) int { return a.Order - b.Order })

	var signals []string
	seen := make(map[string]struct{})
	for i := len(ordered) - 1; i >= 0 && len(ordered)-1-i < recentAnchorChapters; i-- {
		snippet := endingSnippet(ordered[i].Content)
		if snippet == "" {
			continue
		}
		for _, sig := range SplitIntoSignals(snippet, maxSignals-len(signals)) {
			if _, ok := seen[sig]; ok {
				continue
			}
			seen[sig] = struct{}{}
			signals = append(signals, sig)
			if len(signals) >= maxSignals {
				return signals
			}
		}
	}
	return signals
}

// collectEventSignals samples key events from the most recent summaries,
// falling back to the one-line digest when a summary lists no events.
func collectEventSignals(summaries []schema.ChapterSummary, maxSignals int) []string {
	if len(summaries) == 0 || maxSignals <= 0 {
		return nil
	}

	recent := slices.Clone(summaries)
	slices.SortStableFunc(recent, func(a, b schema.ChapterSummary) int { return b.ChapterNumber - a.ChapterNumber })
	if len(recent) > recentEventSummaries {
		recent = recent[:recentEventSummaries]
	}

	var signals []string
	seen := make(map[string]struct{})
	for _, summary := range recent {
		sources := summary.KeyEvents
		if len(sources) > keyEventsPerSummary {
			sources = sources[:keyEventsPerSummary]
		}
		if len(sources) == 0 && summary.OneLine != "" {
			sources = []string{summary.OneLine}
		}
		for _, source := range sources {
			for _, sig := range SplitIntoSignals(source, maxSignals-len(signals)) {
				if _, ok := seen[sig]; ok {
					continue
				}
				seen[sig] = struct{}{}
				signals = append(signals, sig)
				if len(signals) >= maxSignals {
					return signals
				}
			}
		}
	}
	return signals
}

func collectHookSignals(summaries []schema.ChapterSummary, maxSignals int) []string {
	descriptions := UnresolvedHookDescriptions(summaries)
	if len(descriptions) > maxUnresolvedHooks {
		descriptions = descriptions[:maxUnresolvedHooks]
	}

	var signals []string
	seen := make(map[string]struct{})
	for _, desc := range descriptions {
		for _, sig := range SplitIntoSignals(desc, maxSignals-len(signals)) {
			if _, ok := seen[sig]; ok {
				continue
			}
			seen[sig] = struct{}{}
			signals = append(signals, sig)
			if len(signals) >= maxSignals {
				return signals
			}
		}
	}
	return signals
}

// UnresolvedHookDescriptions scans summaries newest-to-oldest and keeps every
// planted or referenced hook description that no newer summary resolved.
// Correlation is by exact description text, not by hook ID: the summarization
// stage records descriptions only, so a reworded resolution fails to clear
// its hook. Deliberately preserved; see the repository design notes.
func UnresolvedHookDescriptions(summaries []schema.ChapterSummary) []string {
	ordered := slices.Clone(summaries)
	slices.SortStableFunc(ordered, func(a, b schema.ChapterSummary) int { return b.ChapterNumber - a.ChapterNumber })

	var unresolved []string
	position := make(map[string]int)
	resolved := make(map[string]struct{})

	for _, summary := range ordered {
		for _, desc := range summary.HooksResolved {
			resolved[desc] = struct{}{}
			if at, ok := position[desc]; ok {
				unresolved[at] = ""
				delete(position, desc)
			}
		}
		for _, list := range [][]string{summary.HooksPlanted, summary.HooksReferenced} {
			for _, desc := range list {
				if desc == "" {
					continue
				}
				if _, gone := resolved[desc]; gone {
					continue
				}
				if _, ok := position[desc]; ok {
					continue
				}
				position[desc] = len(unresolved)
				unresolved = append(unresolved, desc)
			}
		}
	}

	out := unresolved[:0]
	for _, desc := range unresolved {
		if desc != "" {
			out = append(out, desc)
		}
	}
	return out
}
