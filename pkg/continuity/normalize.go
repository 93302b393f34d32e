package continuity

import (
	"strings"
	"unicode"
)

// Sentence terminators recognized by the segmenter. The set is bilingual on
// purpose: serialized fiction in this system is English or Chinese and the
// matcher itself is language-agnostic.
const sentenceTerminators = "。！？!?；;\n"

// Characters stripped from a segment before it is considered as a signal.
const strippedPunctuation = "\"'“”‘’「」『』【】()（）《》〈〉<>[]{}*~,，.、。：:；;—–…·-　 \t"

const (
	minSignalRunes    = 4
	shortSignalRunes  = 24
	signalEdgeRunes   = 16
	endingSnippetSize = 240
)

// NormalizeForMatch collapses a string to its whitespace-free form. Matching
// runs entirely on normalized text; display text is never normalized.
func NormalizeForMatch(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

func isTerminator(r rune) bool {
	return strings.ContainsRune(sentenceTerminators, r)
}

func cleanSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, seg)
}

// SplitIntoSignals splits text on sentence terminators and returns up to
// maxSignals short cleaned fragments, head-first, deduplicated in encounter
// order. Long sentences contribute their first and last few characters as two
// separate candidates, a cheap stand-in for their most salient spans.
func SplitIntoSignals(text string, maxSignals int) []string {
	if maxSignals <= 0 {
		return nil
	}

	var signals []string
	seen := make(map[string]struct{})
	emit := func(candidate string) bool {
		if _, ok := seen[candidate]; ok {
			return len(signals) < maxSignals
		}
		seen[candidate] = struct{}{}
		signals = append(signals, candidate)
		return len(signals) < maxSignals
	}

	for _, seg := range strings.FieldsFunc(text, isTerminator) {
		cleaned := cleanSegment(seg)
		runes := []rune(cleaned)
		if len(runes) < minSignalRunes {
			continue
		}
		if len(runes) <= shortSignalRunes {
			if !emit(cleaned) {
				return signals
			}
			continue
		}
		if !emit(string(runes[:signalEdgeRunes])) {
			return signals
		}
		if !emit(string(runes[len(runes)-signalEdgeRunes:])) {
			return signals
		}
	}
	return signals
}

// endingSnippet returns the tail of a chapter, snapped to the first sentence
// boundary inside the window so the snippet starts at a sentence start. Falls
// back to the raw tail when the window holds no boundary.
func endingSnippet(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) > endingSnippetSize {
		runes = runes[len(runes)-endingSnippetSize:]
	}
	for i, r := range runes {
		if isTerminator(r) && i+1 < len(runes) {
			return strings.TrimSpace(string(runes[i+1:]))
		}
	}
	return strings.TrimSpace(string(runes))
}

// openingWindow returns the first n runes of already-normalized content.
func openingWindow(normalized string, n int) string {
	runes := []rune(normalized)
	if len(runes) <= n {
		return normalized
	}
	return string(runes[:n])
}
