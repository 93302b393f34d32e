package continuity

import "strings"

// Fuzzy-match thresholds. The three tiers trade recall for precision
// progressively: short rigid phrases must match near-exactly, longer phrases
// tolerate paraphrase-level drift.
const (
	chunkLenLong       = 6
	chunkLenShort      = 4
	longSignalRunes    = 12
	minChunkRunes      = 4
	minChunkMatches    = 2
	minBigramGrams     = 3
	bigramMatchRatio   = 0.55
	minBigramMatches   = 3
	looseBigramRunes   = 8
	looseBigramRatio   = 0.42
	looseBigramMatches = 4
)

// MatchResult aggregates one category's signal matching.
type MatchResult struct {
	Total    int
	Matched  []string
	Coverage float64
}

// MatchSignals tests every signal against normalizedContent. An empty signal
// list yields coverage 1: a category with no history cannot fail.
func MatchSignals(normalizedContent string, signals []string) MatchResult {
	res := MatchResult{Total: len(signals)}
	if len(signals) == 0 {
		res.Coverage = 1
		return res
	}
	for _, sig := range signals {
		if isSignalMatched(normalizedContent, sig) {
			res.Matched = append(res.Matched, sig)
		}
	}
	res.Coverage = float64(len(res.Matched)) / float64(res.Total)
	return res
}

// isSignalMatched runs the exact → chunk → bigram cascade.
func isSignalMatched(normalizedContent, signal string) bool {
	signal = NormalizeForMatch(signal)
	runes := []rune(signal)
	if len(runes) < minSignalRunes {
		return false
	}
	if strings.Contains(normalizedContent, signal) {
		return true
	}
	if matchByChunks(normalizedContent, runes) {
		return true
	}
	return matchByBigrams(normalizedContent, runes)
}

// matchByChunks splits the signal into fixed-size pieces and requires at
// least half of them (no fewer than two) verbatim in the content.
func matchByChunks(content string, signal []rune) bool {
	chunkLen := chunkLenShort
	if len(signal) >= longSignalRunes {
		chunkLen = chunkLenLong
	}

	var chunks []string
	for i := 0; i < len(signal); i += chunkLen {
		end := i + chunkLen
		if end > len(signal) {
			end = len(signal)
		}
		if end-i < minChunkRunes {
			break
		}
		chunks = append(chunks, string(signal[i:end]))
	}
	if len(chunks) < 2 {
		return false
	}

	needed := (len(chunks) + 1) / 2
	if needed < minChunkMatches {
		needed = minChunkMatches
	}
	matched := 0
	for _, chunk := range chunks {
		if strings.Contains(content, chunk) {
			matched++
			if matched >= needed {
				return true
			}
		}
	}
	return false
}

// matchByBigrams measures what fraction of the signal's distinct two-rune
// grams occur anywhere in the content.
func matchByBigrams(content string, signal []rune) bool {
	grams := make(map[string]struct{}, len(signal))
	for i := 0; i+1 < len(signal); i++ {
		grams[string(signal[i:i+2])] = struct{}{}
	}
	if len(grams) < minBigramGrams {
		return false
	}

	matched := 0
	for gram := range grams {
		if strings.Contains(content, gram) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(grams))
	if ratio >= bigramMatchRatio && matched >= minBigramMatches {
		return true
	}
	return len(signal) >= looseBigramRunes && ratio >= looseBigramRatio && matched >= looseBigramMatches
}
