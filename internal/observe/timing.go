package observe

import "time"

// Timing marks the phases of one wait. Acquired stays zero when no handle
// was ever held (validation or acquisition failed).
type Timing struct {
	Start    time.Time
	Acquired time.Time
	End      time.Time
}

func NewTiming() *Timing {
	return &Timing{Start: time.Now()}
}

// MarkAcquired records when the handle became held. Later calls are ignored.
func (t *Timing) MarkAcquired() {
	if t.Acquired.IsZero() {
		t.Acquired = time.Now()
	}
}

// Done stamps the end of the wait. Only the first call counts.
func (t *Timing) Done() {
	if t.End.IsZero() {
		t.End = time.Now()
	}
}

// Total is the whole validate-to-report span, running until Done.
func (t *Timing) Total() time.Duration {
	if t.End.IsZero() {
		return time.Since(t.Start)
	}
	return t.End.Sub(t.Start)
}

// Blocked is the time spent inside the kernel wait, zero without a handle.
func (t *Timing) Blocked() time.Duration {
	if t.Acquired.IsZero() {
		return 0
	}
	if t.End.IsZero() {
		return time.Since(t.Acquired)
	}
	return t.End.Sub(t.Acquired)
}
