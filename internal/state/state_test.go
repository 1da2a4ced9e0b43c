package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Lifecycle(t *testing.T) {
	s := NewState()
	assert.Equal(t, Idle, s.Phase())

	assert.True(t, s.CompareAndSwapPhase(Idle, Appending))
	assert.False(t, s.CompareAndSwapPhase(Idle, Appending))
	assert.Equal(t, "appending", s.Phase().String())

	assert.Equal(t, int64(6), s.AddSize(6))
	assert.Equal(t, int64(12), s.AddSize(6))

	assert.True(t, s.CompareAndSwapPhase(Appending, Rotating))
	s.ResetSize(0)
	assert.True(t, s.CompareAndSwapPhase(Rotating, Appending))
	assert.Equal(t, int64(0), s.Size())

	s.StoreAsTerminated()
	assert.True(t, s.IsTerminated())
	assert.False(t, s.CompareAndSwapPhase(Appending, Rotating))
	assert.Equal(t, "unknown", Phase(42).String())
}
