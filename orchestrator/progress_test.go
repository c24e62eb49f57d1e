package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_ResetMarksAllQueued(t *testing.T) {
	p := NewProgress()
	p.Reset(3)

	snapshot := p.Snapshot()
	require.Len(t, snapshot, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Queued(), snapshot[i])
	}
}

func TestProgress_ResetDiscardsPreviousRun(t *testing.T) {
	p := NewProgress()
	p.Reset(4)
	p.Set(3, Completed())

	p.Reset(2)
	snapshot := p.Snapshot()
	require.Len(t, snapshot, 2)
	_, ok := snapshot[3]
	assert.False(t, ok)
}

func TestProgress_SnapshotIsACopy(t *testing.T) {
	p := NewProgress()
	p.Reset(1)

	snapshot := p.Snapshot()
	snapshot[0] = Failed("tampered")

	assert.Equal(t, Queued(), p.Snapshot()[0])
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Queued(), "QUEUED"},
		{Initializing(), "INITIALIZING..."},
		{Processing(), "PROCESSING..."},
		{Completed(), "COMPLETED"},
		{Failed("timed out after 5m0s"), "FAILED: timed out after 5m0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}
