package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

type summary struct {
	Total *float64 `json:"total"`
	Items []string `json:"items"`
}

func newReadThrough(t *testing.T, c Cache) *ReadThrough[summary] {
	t.Helper()
	rt, err := NewReadThrough[summary](c, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return rt
}

func countingLoader(calls *atomic.Int32, v summary) Loader[summary] {
	return func(context.Context) (summary, error) {
		calls.Add(1)
		return v, nil
	}
}

func Test_ReadThrough_SecondCallServedFromCache(t *testing.T) {
	total := 12.5
	want := summary{Total: &total, Items: []string{"a"}}
	var calls atomic.Int32
	c := newStubCache()
	rt := newReadThrough(t, c)

	first, err := rt.Get(context.Background(), "k", countingLoader(&calls, want))
	require.NoError(t, err)
	second, err := rt.Get(context.Background(), "k", countingLoader(&calls, summary{}))
	require.NoError(t, err)

	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), c.setCalls.Load())
}

func Test_ReadThrough_EmptyResultIsCached(t *testing.T) {
	var calls atomic.Int32
	rt := newReadThrough(t, newStubCache())

	for range 3 {
		got, err := rt.Get(context.Background(), "k", countingLoader(&calls, summary{Items: []string{}}))
		require.NoError(t, err)
		assert.Nil(t, got.Total)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func Test_ReadThrough_DegradesWhenCacheFails(t *testing.T) {
	var calls atomic.Int32
	rt := newReadThrough(t, failing())
	want := summary{Items: []string{"x"}}

	for range 2 {
		got, err := rt.Get(context.Background(), "k", countingLoader(&calls, want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func Test_ReadThrough_CorruptEntryIsRecomputed(t *testing.T) {
	var calls atomic.Int32
	c := newStubCache()
	c.data["k"] = []byte("{not json")
	rt := newReadThrough(t, c)
	want := summary{Items: []string{"x"}}

	got, err := rt.Get(context.Background(), "k", countingLoader(&calls, want))

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), calls.Load())
	assert.JSONEq(t, `{"total":null,"items":["x"]}`, string(c.data["k"]))
}

func Test_ReadThrough_LoaderErrorIsNotCached(t *testing.T) {
	c := newStubCache()
	rt := newReadThrough(t, c)
	boom := errors.New("store down")

	_, err := rt.Get(context.Background(), "k", func(context.Context) (summary, error) { return summary{}, boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(0), c.setCalls.Load())
	assert.Empty(t, c.data)
}

func Test_ReadThrough_KeysAreIndependent(t *testing.T) {
	var calls atomic.Int32
	rt := newReadThrough(t, newStubCache())

	a, err := rt.Get(context.Background(), "a", countingLoader(&calls, summary{Items: []string{"a"}}))
	require.NoError(t, err)
	b, err := rt.Get(context.Background(), "b", countingLoader(&calls, summary{Items: []string{"b"}}))
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, a.Items)
	assert.Equal(t, []string{"b"}, b.Items)
	assert.Equal(t, int32(2), calls.Load())
}

func Test_ReadThrough_ConcurrentMissesShareOneLoad(t *testing.T) {
	const callers = 8
	c := newStubCache()
	rt := newReadThrough(t, c)
	var calls atomic.Int32
	load := func(context.Context) (summary, error) {
		calls.Add(1)
		// hold the flight open until every caller has missed the cache
		deadline := time.Now().Add(2 * time.Second)
		for c.getCalls.Load() < callers && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)
		return summary{Items: []string{"shared"}}, nil
	}

	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := rt.Get(context.Background(), "k", load)
			assert.NoError(t, err)
			assert.Equal(t, []string{"shared"}, got.Items)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func Test_ReadThrough_CanceledCallerDoesNotFailOthers(t *testing.T) {
	c := newStubCache()
	rt := newReadThrough(t, c)
	var (
		calls   atomic.Int32
		once    sync.Once
		started = make(chan struct{})
		release = make(chan struct{})
	)
	load := func(ctx context.Context) (summary, error) {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return summary{}, err
		}
		return summary{Items: []string{"shared"}}, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		_, err := rt.Get(firstCtx, "k", load)
		firstErr <- err
	}()
	<-started

	type result struct {
		value summary
		err   error
	}
	second := make(chan result, 1)
	go func() {
		v, err := rt.Get(context.Background(), "k", load)
		second <- result{value: v, err: err}
	}()
	require.Eventually(t, func() bool { return c.getCalls.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, []string{"shared"}, res.value.Items)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), c.setCalls.Load(), "result of the shared load is still cached")
}

func Test_ReadThrough_CallerStopsWaitingOnItsDeadline(t *testing.T) {
	rt := newReadThrough(t, newStubCache())
	release := make(chan struct{})
	defer close(release)
	load := func(context.Context) (summary, error) {
		<-release
		return summary{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := rt.Get(ctx, "k", load)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func Test_ReadThrough_SharedLoadIsBounded(t *testing.T) {
	c := newStubCache()
	rt := newReadThrough(t, c).WithLoadTimeout(20 * time.Millisecond)
	load := func(ctx context.Context) (summary, error) {
		<-ctx.Done()
		return summary{}, ctx.Err()
	}

	_, err := rt.Get(context.Background(), "k", load)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(0), c.setCalls.Load())
}
