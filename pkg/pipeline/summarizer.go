package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"

	"inkwell/pkg/flight"
	"inkwell/pkg/inference"
	"inkwell/pkg/schema"
	"inkwell/pkg/utils"
)

const (
	summaryChunkRunes = 8192 * 4
	summarizeTimeout  = 3 * time.Minute
)

// Summarizer extracts a structured ChapterSummary from accepted chapter
// prose. Extraction runs are coalesced and memoized by content hash: the same
// chapter submitted twice is summarized once.
type Summarizer struct {
	inf     inference.Inferencer
	cache   *flight.Cache[string, schema.ChapterSummary]
	pending *utils.SyncMap[map[string]string, string, string]
}

func NewSummarizer(inf inference.Inferencer) *Summarizer {
	s := &Summarizer{
		inf:     inf,
		pending: utils.NewSyncMap[map[string]string](),
	}
	s.cache = flight.NewCache(s.work)
	return s
}

func (s *Summarizer) Summarize(ctx context.Context, content string) (schema.ChapterSummary, error) {
	key := contentHash(content)
	s.pending.Store(key, content)
	defer s.pending.Delete(key)
	return s.cache.Get(key)
}

// work runs detached from the caller's context: once extraction starts it is
// allowed to finish even if the submitting request goes away, since the
// result is cached for the next caller.
func (s *Summarizer) work(key string) (schema.ChapterSummary, error) {
	content, ok := s.pending.Load(key)
	if !ok {
		return schema.ChapterSummary{}, errors.New("no content staged for summary key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), summarizeTimeout)
	defer cancel()
	return s.extract(ctx, content)
}

func (s *Summarizer) extract(ctx context.Context, content string) (schema.ChapterSummary, error) {
	var merged schema.ChapterSummary

	for i, chunk := range utils.ChunkText(content, summaryChunkRunes) {
		params := &openai.ChatCompletionNewParams{
			Temperature:    openai.Float(0.2),
			ResponseFormat: schema.SummaryResponseFormat(),
		}
		raw, err := s.inf.Infer(ctx, params, summarizePrompt, chunk)
		if err != nil {
			return merged, fmt.Errorf("summarizing chunk %d: %w", i, err)
		}

		var part schema.ChapterSummary
		if err := json.Unmarshal([]byte(utils.CleanJSON(raw)), &part); err != nil {
			return merged, fmt.Errorf("parsing summary chunk %d: %w", i, err)
		}
		merged = mergeSummaries(merged, part)
	}

	return merged, nil
}

func mergeSummaries(base, part schema.ChapterSummary) schema.ChapterSummary {
	if base.OneLine == "" {
		base.OneLine = part.OneLine
	}
	base.KeyEvents = appendUnique(base.KeyEvents, part.KeyEvents)
	base.CharacterDevelopments = appendUnique(base.CharacterDevelopments, part.CharacterDevelopments)
	base.HooksPlanted = appendUnique(base.HooksPlanted, part.HooksPlanted)
	base.HooksReferenced = appendUnique(base.HooksReferenced, part.HooksReferenced)
	base.HooksResolved = appendUnique(base.HooksResolved, part.HooksResolved)
	return base
}

func appendUnique(base, updates []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range updates {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		base = append(base, s)
	}
	return base
}

func contentHash(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
