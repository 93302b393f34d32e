package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/schema"
)

func TestQueueProcessesJob(t *testing.T) {
	fake := &fakeInferencer{
		draft:       continuousDraft,
		summaryJSON: summaryJSON(t, schema.ChapterSummary{OneLine: "done"}),
	}
	q := NewQueue(NewGenerator(fake))
	q.Start()
	defer q.Stop()

	respCh, progCh, errCh, err := q.Add(testRequest(true))
	require.NoError(t, err)

	select {
	case result := <-respCh:
		assert.True(t, result.Accepted)
	case genErr := <-errCh:
		t.Fatalf("unexpected generation error: %v", genErr)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for queue result")
	}

	// Progress closes once the job is done.
	for range progCh {
	}
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := NewQueue(NewGenerator(&fakeInferencer{draft: "x"}))
	// Never started: items accumulate until the channel is full.

	var err error
	for i := 0; i < 100; i++ {
		_, _, _, err = q.Add(testRequest(false))
		require.NoError(t, err)
	}

	_, _, _, err = q.Add(testRequest(false))
	assert.Error(t, err)
}
