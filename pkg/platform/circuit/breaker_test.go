package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerLifecycle(t *testing.T) {
	var transitions []State
	b := New("nota",
		WithFailureThreshold(2),
		WithSuccessThreshold(2),
		WithStateChangeHook(func(name string, to State) {
			assert.Equal(t, "nota", name)
			transitions = append(transitions, to)
		}),
	)

	fallback, change := b.RecordFailure()
	assert.False(t, fallback)
	assert.False(t, change.Opened)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())

	primary, change := b.RecordSuccess()
	assert.False(t, primary, "one probe success is not enough")
	assert.False(t, change.Closed)
	assert.Equal(t, 1, b.Snapshot().ProbeSuccesses)

	b.RecordFailure()
	assert.Equal(t, 0, b.Snapshot().ProbeSuccesses, "a failure resets probe progress")

	b.RecordSuccess()
	primary, change = b.RecordSuccess()
	assert.True(t, primary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []State{StateOpen, StateClosed}, transitions)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New("nota", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	_, change := b.RecordFailure()

	assert.False(t, change.Opened)
	assert.Equal(t, 1, b.Snapshot().ConsecutiveFailures)
}

func TestSnapshotAndReset(t *testing.T) {
	b := New("nota", WithFailureThreshold(1), WithSuccessThreshold(0))
	b.RecordFailure()

	snap := b.Snapshot()
	assert.Equal(t, Snapshot{Name: "nota", State: "open", ConsecutiveFailures: 1}, snap)

	b.Reset()
	assert.Equal(t, "closed", b.State().String())
	assert.Equal(t, "unknown", State(7).String())
}

func TestAcquire(t *testing.T) {
	b := New("nota", WithFailureThreshold(1))

	probe, release, ok := b.Acquire()
	assert.True(t, ok, "closed circuit allows every call")
	assert.False(t, probe)
	release()

	b.RecordFailure()
	probe, release, ok = b.Acquire()
	assert.True(t, ok)
	assert.True(t, probe)
	assert.True(t, b.Snapshot().ProbeInFlight)

	_, _, ok = b.Acquire()
	assert.False(t, ok, "only one probe while open")

	release()
	release()
	assert.False(t, b.Snapshot().ProbeInFlight)

	probe, release, ok = b.Acquire()
	assert.True(t, ok)
	assert.True(t, probe)
	b.Reset()
	assert.False(t, b.Snapshot().ProbeInFlight)
	release()
}
