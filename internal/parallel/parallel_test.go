package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	var counter int64
	n := 1000
	visits := make([]int32, n)
	For(n, cfg, func(i int) {
		atomic.AddInt64(&counter, 1)
		atomic.AddInt32(&visits[i], 1)
	})

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
	for i, v := range visits {
		if v != 1 {
			t.Errorf("index %d visited %d times", i, v)
		}
	}
}

func TestForRange_Chunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}

	var mu sync.Mutex
	var chunks [][2]int
	ForRange(100, cfg, func(start, end int) {
		mu.Lock()
		chunks = append(chunks, [2]int{start, end})
		mu.Unlock()
	})

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %v", chunks)
	}
	total := 0
	for _, c := range chunks {
		if c[1]-c[0] < cfg.MinChunkSize && c[1] != 100 {
			t.Errorf("chunk %v smaller than MinChunkSize", c)
		}
		total += c[1] - c[0]
	}
	if total != 100 {
		t.Errorf("chunks cover %d items, want 100", total)
	}
}

func TestForRange_Sequential(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		n    int
	}{
		{"disabled", Sequential(), 1000},
		{"single worker", Config{Enabled: true, NumWorkers: 1, MinChunkSize: 1}, 1000},
		{"small input", Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			ForRange(tt.n, tt.cfg, func(start, end int) {
				calls++
				if start != 0 || end != tt.n {
					t.Errorf("got chunk [%d, %d), want [0, %d)", start, end, tt.n)
				}
			})
			if calls != 1 {
				t.Errorf("expected 1 call, got %d", calls)
			}
		})
	}
}

func TestForRange_Empty(t *testing.T) {
	ForRange(0, DefaultConfig(), func(_, _ int) {
		t.Error("f called for empty range")
	})
}
