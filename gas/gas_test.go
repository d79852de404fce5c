package gas

import (
	"errors"
	"sync"
	"testing"

	mcerrors "github.com/wippyai/modcache/errors"
)

func TestBoundedMeter_Charge(t *testing.T) {
	tests := []struct {
		name      string
		budget    uint64
		charges   []uint64
		failAt    int // -1 for none
		remaining uint64
	}{
		{"within budget", 10, []uint64{3, 4}, -1, 3},
		{"exact budget", 5, []uint64{5}, -1, 0},
		{"exhausted", 5, []uint64{3, 3}, 1, 2},
		{"zero charge on empty", 0, []uint64{0}, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeter(tt.budget)
			for i, c := range tt.charges {
				err := m.Charge(c)
				if i == tt.failAt {
					if !errors.Is(err, mcerrors.ErrOutOfGas) {
						t.Fatalf("charge %d: err = %v, want out of gas", i, err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("charge %d: %v", i, err)
				}
			}
			if m.Remaining() != tt.remaining {
				t.Errorf("Remaining() = %d, want %d", m.Remaining(), tt.remaining)
			}
			if m.Consumed() != tt.budget-tt.remaining {
				t.Errorf("Consumed() = %d, want %d", m.Consumed(), tt.budget-tt.remaining)
			}
		})
	}
}

func TestBoundedMeter_Concurrent(t *testing.T) {
	m := NewMeter(1000)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 30 {
				_ = m.Charge(1)
			}
		}()
	}
	wg.Wait()
	if m.Remaining() != 0 || m.Consumed() != 1000 {
		t.Errorf("remaining = %d, consumed = %d", m.Remaining(), m.Consumed())
	}
}

func TestUnmetered(t *testing.T) {
	if err := Unmetered.Charge(1 << 62); err != nil {
		t.Errorf("Charge: %v", err)
	}
}
