package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sprintlens/internal/query"
)

func sprintKey(project string, id int) Key {
	return Key{Project: project, Purpose: query.SprintIssues, SprintID: id}
}

func TestDoCachesResult(t *testing.T) {
	c := New(time.Minute, time.Minute)
	k := sprintKey("PROJ", 1)

	var calls int32
	fetch := func(ctx context.Context) (*Entry, error) {
		atomic.AddInt32(&calls, 1)
		return &Entry{Key: k}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Do(context.Background(), k, fetch); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch ran %d times, want 1", n)
	}
}

func TestDoSharesInFlightFetch(t *testing.T) {
	c := New(time.Minute, time.Minute)
	k := sprintKey("PROJ", 2)

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (*Entry, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &Entry{Key: k}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Entry, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := c.Do(context.Background(), k, fetch)
			if err != nil {
				t.Errorf("Do() error = %v", err)
				return
			}
			results[i] = e
		}(i)
	}

	// Give every goroutine time to join the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch ran %d times, want 1", got)
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("caller %d got a different entry", i)
		}
	}
}

func TestDoDistinctKeysDoNotShare(t *testing.T) {
	c := New(time.Minute, time.Minute)

	var calls int32
	fetch := func(k Key) func(ctx context.Context) (*Entry, error) {
		return func(ctx context.Context) (*Entry, error) {
			atomic.AddInt32(&calls, 1)
			return &Entry{Key: k}, nil
		}
	}

	k1, k2 := sprintKey("PROJ", 1), sprintKey("PROJ", 2)
	if _, err := c.Do(context.Background(), k1, fetch(k1)); err != nil {
		t.Fatalf("Do(k1) error = %v", err)
	}
	if _, err := c.Do(context.Background(), k2, fetch(k2)); err != nil {
		t.Fatalf("Do(k2) error = %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("fetch ran %d times, want 2", n)
	}
}

func TestDoFailureIsNotCached(t *testing.T) {
	c := New(time.Minute, time.Minute)
	k := sprintKey("PROJ", 3)
	boom := errors.New("boom")

	var calls int32
	fetch := func(ctx context.Context) (*Entry, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, boom
		}
		return &Entry{Key: k}, nil
	}

	if _, err := c.Do(context.Background(), k, fetch); !errors.Is(err, boom) {
		t.Fatalf("first Do() error = %v, want boom", err)
	}
	if _, err := c.Do(context.Background(), k, fetch); err != nil {
		t.Fatalf("second Do() error = %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("fetch ran %d times, want 2", n)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	sprint := sprintKey("PROJ", 1)
	project := Key{Project: "PROJ", Purpose: query.HistoricalRange, From: "2024-01-01", To: "2024-06-01"}
	c.Put(&Entry{Key: sprint, FetchedAt: clock})
	c.Put(&Entry{Key: project, FetchedAt: clock})

	clock = clock.Add(6 * time.Minute)
	if _, ok := c.Get(sprint); ok {
		t.Errorf("sprint entry survived past its TTL")
	}
	if _, ok := c.Get(project); !ok {
		t.Errorf("project entry expired before its TTL")
	}

	clock = clock.Add(5 * time.Minute)
	if _, ok := c.Get(project); ok {
		t.Errorf("project entry survived past its TTL")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New(0, 0)
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	k := sprintKey("PROJ", 1)
	c.Put(&Entry{Key: k, FetchedAt: clock})

	clock = clock.Add(24 * 365 * time.Hour)
	if _, ok := c.Get(k); !ok {
		t.Errorf("entry expired with zero TTL")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Put(&Entry{Key: sprintKey("PROJ", 1), FetchedAt: time.Now()})
	c.Put(&Entry{Key: sprintKey("PROJ", 2), FetchedAt: time.Now()})
	c.Put(&Entry{Key: sprintKey("OTHER", 1), FetchedAt: time.Now()})

	dropped := c.Invalidate(func(k Key) bool { return k.Project == "PROJ" })
	if dropped != 2 {
		t.Errorf("Invalidate() dropped %d, want 2", dropped)
	}
	if _, ok := c.Get(sprintKey("OTHER", 1)); !ok {
		t.Errorf("unrelated entry was dropped")
	}
}

func TestKeyLabel(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{"Sprint", sprintKey("PROJ", 42), "PROJ_sprint_42"},
		{"Range", Key{Project: "PROJ", Purpose: query.HistoricalRange, From: "2024-01-01", To: "2024-06-30"}, "PROJ_history_2024-01-01_2024-06-30"},
		{"SanitizedProject", sprintKey("My Team [SP]", 7), "My_Team_SP_sprint_7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Label(); got != tt.expected {
				t.Errorf("Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}
