// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestGetOrCreateMemoizes(t *testing.T) {
	c := New[int, string]()
	calls := 0
	create := func() (string, error) {
		calls++
		return "v" + strconv.Itoa(calls), nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCreate(1, create)
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if v != "v1" {
			t.Errorf("GetOrCreate() = %q, want v1", v)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Len != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 miss, 1 entry", s)
	}
}

func TestGetOrCreateDoesNotCacheErrors(t *testing.T) {
	c := New[string, int]()
	boom := errors.New("boom")
	if _, err := c.GetOrCreate("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrCreate() error = %v, want boom", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("failed creation must not be cached")
	}
	v, err := c.GetOrCreate("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("retry = %d, %v; want 7, nil", v, err)
	}
}

func TestConcurrentCreateOnce(t *testing.T) {
	c := New[int, int]()
	var mu sync.Mutex
	calls := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCreate(42, func() (int, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				return 1, nil
			})
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestDrain(t *testing.T) {
	c := New[int, int]()
	for i := 0; i < 4; i++ {
		_, _ = c.GetOrCreate(i, func() (int, error) { return i * 10, nil })
	}
	sum := 0
	c.Drain(func(_, v int) { sum += v })
	if sum != 60 {
		t.Errorf("drained sum = %d, want 60", sum)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", c.Len())
	}
}

func BenchmarkCacheGetOrCreate(b *testing.B) {
	c := New[string, int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrCreate(strconv.Itoa(i%100), func() (int, error) {
			return i, nil
		})
	}
}
