package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMemoizes(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (string, error) {
		calls.Add(1)
		return "result for " + k, nil
	})

	first, err := c.Get("a")
	require.NoError(t, err)
	second, err := c.Get("a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	c := NewCache(func(k string) (int, error) {
		calls.Add(1)
		return 0, boom
	})

	_, err := c.Get("a")
	require.ErrorIs(t, err, boom)
	_, err = c.Get("a")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCacheCoalescesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCache(func(k string) (string, error) {
		calls.Add(1)
		<-release
		return "done", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Get("shared")
			assert.NoError(t, err)
			assert.Equal(t, "done", got)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheExpiry(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (int, error) {
		return int(calls.Add(1)), nil
	})
	c.Expiry(10 * time.Millisecond)

	first, _ := c.Get("a")
	time.Sleep(20 * time.Millisecond)
	second, _ := c.Get("a")

	assert.NotEqual(t, first, second)
}

func TestCacheForget(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (int, error) {
		return int(calls.Add(1)), nil
	})

	first, _ := c.Get("a")
	c.Forget("a")
	second, _ := c.Get("a")

	assert.NotEqual(t, first, second)
}
