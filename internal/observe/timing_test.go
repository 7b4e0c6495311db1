package observe

import (
	"testing"
	"time"
)

func TestTimingDoneOnce(t *testing.T) {
	tm := NewTiming()
	tm.Done()
	first := tm.End

	time.Sleep(2 * time.Millisecond)
	tm.Done()

	if !tm.End.Equal(first) {
		t.Errorf("second Done() moved End from %v to %v", first, tm.End)
	}
	if tm.Total() != first.Sub(tm.Start) {
		t.Errorf("Total() = %v, want %v", tm.Total(), first.Sub(tm.Start))
	}
}

func TestTimingRunning(t *testing.T) {
	tm := &Timing{Start: time.Now().Add(-time.Second)}
	if d := tm.Total(); d < time.Second {
		t.Errorf("Total() = %v, want >= 1s while running", d)
	}
}

func TestTimingBlocked(t *testing.T) {
	now := time.Now()
	tests := []struct {
		desc string
		tm   Timing
		want time.Duration
	}{
		{"never acquired", Timing{Start: now, End: now.Add(time.Second)}, 0},
		{"acquired", Timing{Start: now, Acquired: now.Add(100 * time.Millisecond), End: now.Add(time.Second)}, 900 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := tt.tm.Blocked(); got != tt.want {
				t.Errorf("Blocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkAcquiredOnce(t *testing.T) {
	tm := NewTiming()
	tm.MarkAcquired()
	first := tm.Acquired
	time.Sleep(2 * time.Millisecond)
	tm.MarkAcquired()

	if !tm.Acquired.Equal(first) {
		t.Errorf("second MarkAcquired() moved Acquired from %v to %v", first, tm.Acquired)
	}
}
