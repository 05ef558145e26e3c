package lockfree

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayQueueRejectsBadCapacity(t *testing.T) {
	_, err := NewArrayQueue[int](0)
	require.Error(t, err)
	_, err = NewArrayQueue[int](-3)
	require.Error(t, err)
}

func TestArrayQueueFIFO(t *testing.T) {
	q := MustArrayQueue[byte](4)
	require.True(t, q.IsEmpty())
	for _, b := range []byte{0x1E, 0x30, 0x2E} {
		require.NoError(t, q.Push(b))
	}
	require.Equal(t, 3, q.Len())

	var got []byte
	for {
		b, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, b)
	}
	require.Equal(t, []byte{0x1E, 0x30, 0x2E}, got)
	require.True(t, q.IsEmpty())
}

func TestArrayQueueFullKeepsOldest(t *testing.T) {
	q := MustArrayQueue[int](3)
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Push(i))
	}
	require.True(t, q.IsFull())
	require.ErrorIs(t, q.Push(4), ErrFull)
	require.Equal(t, 3, q.Len())

	for want := 1; want <= 3; want++ {
		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
	_, ok := q.Pop()
	require.False(t, ok)
}

func TestArrayQueueCapacityOne(t *testing.T) {
	q := MustArrayQueue[byte](1)
	for lap := 0; lap < 5; lap++ {
		require.NoError(t, q.Push(byte(lap)))
		require.True(t, q.IsFull())
		require.ErrorIs(t, q.Push(0xFF), ErrFull, "lap %d", lap)
		require.Equal(t, 1, q.Len())

		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, byte(lap), v)
		_, ok = q.Pop()
		require.False(t, ok)
		require.True(t, q.IsEmpty())
	}
}

func TestArrayQueueCapacityOneConcurrent(t *testing.T) {
	q := MustArrayQueue[int](1)
	const n = 2000
	go func() {
		for i := 0; i < n; i++ {
			for q.Push(i) != nil {
			}
		}
	}()
	for want := 0; want < n; {
		v, ok := q.Pop()
		if !ok {
			continue
		}
		require.Equal(t, want, v)
		want++
	}
}

func TestArrayQueueWrapsManyLaps(t *testing.T) {
	q := MustArrayQueue[int](3)
	next := 0
	for lap := 0; lap < 50; lap++ {
		require.NoError(t, q.Push(lap*2))
		require.NoError(t, q.Push(lap*2+1))
		for i := 0; i < 2; i++ {
			v, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, next, v)
			next++
		}
	}
	require.Equal(t, 0, q.Len())
}

func TestArrayQueueConcurrentProducersConsumers(t *testing.T) {
	const (
		producers   = 8
		perProducer = 2000
	)
	q := MustArrayQueue[int](64)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for q.Push(base+i) != nil {
				}
			}
		}(p * perProducer)
	}

	results := make(chan []int, 2)
	var consumed sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for c := 0; c < 2; c++ {
		consumed.Add(1)
		go func() {
			defer consumed.Done()
			var local []int
			for {
				mu.Lock()
				done := total == producers*perProducer
				mu.Unlock()
				if done {
					break
				}
				if v, ok := q.Pop(); ok {
					local = append(local, v)
					mu.Lock()
					total++
					mu.Unlock()
				}
			}
			results <- local
		}()
	}
	wg.Wait()
	consumed.Wait()
	close(results)

	var all []int
	for r := range results {
		all = append(all, r...)
	}
	sort.Ints(all)
	require.Len(t, all, producers*perProducer)
	for i, v := range all {
		require.Equal(t, i, v)
	}
}

func TestArrayQueuePerProducerOrder(t *testing.T) {
	q := MustArrayQueue[[2]int](16)
	const n = 5000
	var wg sync.WaitGroup
	for p := 0; p < 2; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				for q.Push([2]int{id, i}) != nil {
				}
			}
		}(p)
	}

	last := [2]int{-1, -1}
	for seen := 0; seen < 2*n; {
		v, ok := q.Pop()
		if !ok {
			continue
		}
		require.Greater(t, v[1], last[v[0]], "producer %d reordered", v[0])
		last[v[0]] = v[1]
		seen++
	}
	wg.Wait()
}
