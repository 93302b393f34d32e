package utils

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitStr(t *testing.T) {
	assert.Equal(t, "hello", LimitStr("hello", 10))
	assert.Equal(t, "hel...", LimitStr("hello world", 3))
	assert.Equal(t, "你好...", LimitStr("你好世界啊", 6))
}

func TestCleanJSON(t *testing.T) {
	fenced := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSON(fenced))
	assert.Equal(t, `{"a": 1}`, CleanJSON(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, CleanJSON("```\n{\"a\": 1}\n```\n"))
}

func TestStringContains(t *testing.T) {
	assert.True(t, StringContains("The Silver Ledger", false, "silver"))
	assert.False(t, StringContains("The Silver Ledger", true, "silver"))
	assert.True(t, StringContains("The Silver Ledger", true, "Silver"))
	assert.False(t, StringContains("The Silver Ledger", false))
}

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[map[string]int]()
	m.Store("a", 1)

	got, ok := m.Load("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	t.Run("update mutates in place", func(t *testing.T) {
		m.Update("a", func(v int, ok bool) (int, bool) {
			require.True(t, ok)
			return v + 10, true
		})
		got, _ := m.Load("a")
		assert.Equal(t, 11, got)
	})

	t.Run("update can decline to store", func(t *testing.T) {
		m.Update("missing", func(v int, ok bool) (int, bool) {
			assert.False(t, ok)
			return 99, false
		})
		_, ok := m.Load("missing")
		assert.False(t, ok)
	})

	t.Run("map returns a copy", func(t *testing.T) {
		snapshot := m.Map()
		snapshot["a"] = 0
		got, _ := m.Load("a")
		assert.Equal(t, 11, got)
	})

	m.Delete("a")
	_, ok = m.Load("a")
	assert.False(t, ok)
}

func TestSyncMapMarshalJSON(t *testing.T) {
	type record struct {
		Items []string `json:"items"`
	}

	t.Run("encodes the underlying map", func(t *testing.T) {
		m := NewSyncMap[map[string]*record]()
		m.Store("a", &record{Items: []string{"x"}})

		got, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":{"items":["x"]}}`, string(got))
	})

	t.Run("safe against concurrent pointer mutation", func(t *testing.T) {
		m := NewSyncMap[map[string]*record]()
		m.Store("a", &record{})

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					m.Update("a", func(r *record, ok bool) (*record, bool) {
						r.Items = append(r.Items, "item")
						return r, true
					})
				}
			}()
		}
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					_, err := json.Marshal(m)
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()

		got, err := json.Marshal(m)
		require.NoError(t, err)
		var out map[string]*record
		require.NoError(t, json.Unmarshal(got, &out))
		assert.Len(t, out["a"].Items, 1600)
	})
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("same text", "same text"))
	assert.Equal(t, 1.0, Similarity("  Same Text ", "same text"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abcd", "wxyz"))

	near := Similarity("the ranger crossed the ford", "the ranger crossed the road")
	assert.Greater(t, near, 0.85)
	assert.Less(t, near, 1.0)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("abc", "abc"))
	assert.Equal(t, 3, Levenshtein("", "abc"))
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 1, Levenshtein("灯下读信", "灯下读书"))
}

func TestChunkText(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"short"}, ChunkText("short", 100))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, ChunkText("  ", 100))
	})

	t.Run("splits on paragraphs within limit", func(t *testing.T) {
		text := "first paragraph here\n\nsecond paragraph here\n\nthird paragraph here"
		chunks := ChunkText(text, 45)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c)), 45)
		}
		assert.Contains(t, chunks[0], "first paragraph here")
	})

	t.Run("hard-cuts unbroken runs at rune boundaries", func(t *testing.T) {
		text := ""
		for i := 0; i < 30; i++ {
			text += "接连不断的长句没有空格"
		}
		chunks := ChunkText(text, 50)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c)), 50)
		}
	})
}

func TestDiffWords(t *testing.T) {
	deltas := DiffWords("the cat sat", "the dog sat")

	var inserted, deleted []string
	for _, d := range deltas {
		switch d.Op {
		case +1:
			inserted = append(inserted, d.Text)
		case -1:
			deleted = append(deleted, d.Text)
		}
	}
	assert.Equal(t, []string{"dog"}, inserted)
	assert.Equal(t, []string{"cat"}, deleted)
}

func TestTokenizeWords(t *testing.T) {
	assert.Equal(t, []string{"the", " ", "cat", ",", " ", "sat"}, TokenizeWords("the cat, sat"))
	assert.Empty(t, TokenizeWords(""))
}
