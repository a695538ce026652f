package registrar

import (
	"sync"
	"testing"
)

func TestParseGID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "typical header", in: "goroutine 123 [running]:\nmain.main()", want: 123},
		{name: "single digit", in: "goroutine 7 [chan receive]:", want: 7},
		{name: "large id", in: "goroutine 18446744073 [running]:", want: 18446744073},
		{name: "missing prefix", in: "gorutine 123 [running]:", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "prefix only", in: "goroutine ", want: 0},
		{name: "non-numeric id", in: "goroutine abc [running]:", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseGID([]byte(tt.in)); got != tt.want {
				t.Errorf("parseGID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestFastMatchesSlow verifies the build-selected identity path agrees
// with the universal stack-parsing path, on this goroutine and on spawned
// ones.
func TestFastMatchesSlow(t *testing.T) {
	if fast, slow := currentGIDFast(), currentGIDSlow(); fast != slow {
		t.Fatalf("fast path gid %d != slow path gid %d", fast, slow)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fast, slow := currentGIDFast(), currentGIDSlow(); fast != slow {
				t.Errorf("fast path gid %d != slow path gid %d", fast, slow)
			}
		}()
	}
	wg.Wait()
}

// TestGIDStablePerContext verifies an execution context's identity does
// not change between reads, and differs between contexts.
func TestGIDStablePerContext(t *testing.T) {
	self := currentGID()
	if self == 0 {
		t.Fatalf("currentGID() = 0")
	}
	if again := currentGID(); again != self {
		t.Fatalf("currentGID changed between reads: %d then %d", self, again)
	}

	ch := make(chan int64, 1)
	go func() { ch <- currentGID() }()
	if other := <-ch; other == self || other == 0 {
		t.Errorf("spawned context gid = %d, self = %d; want distinct non-zero", other, self)
	}
}

func BenchmarkCurrentGID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = currentGID()
	}
}
