package state

import (
	"sync/atomic"
)

// Phase of the writer loop
type Phase uint32

// Phases, in lifecycle order
const (
	Idle Phase = iota
	Appending
	Rotating
	Terminated
)

var phaseNames = [...]string{"idle", "appending", "rotating", "terminated"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// State of the linerotate.Writer.
// Only the writer mutates it; other goroutines may read it.
type State struct {
	// bytes appended since the output file was opened fresh or rotated
	size  int64
	phase uint32
}

// NewState creates an Idle State
func NewState() *State {
	return &State{}
}

// Size returns bytes since rotation
func (s *State) Size() int64 {
	return atomic.LoadInt64(&s.size)
}

// AddSize atomically, and returns the new size
func (s *State) AddSize(value int64) int64 {
	return atomic.AddInt64(&s.size, value)
}

// ResetSize stores value as bytes since rotation
func (s *State) ResetSize(value int64) {
	atomic.StoreInt64(&s.size, value)
}

// Phase returns the current phase
func (s *State) Phase() Phase {
	return Phase(atomic.LoadUint32(&s.phase))
}

// CompareAndSwapPhase moves from old to nw, reporting whether it did
func (s *State) CompareAndSwapPhase(old, nw Phase) bool {
	return atomic.CompareAndSwapUint32(&s.phase, uint32(old), uint32(nw))
}

// StoreAsTerminated set phase to terminated atomically
func (s *State) StoreAsTerminated() {
	atomic.StoreUint32(&s.phase, uint32(Terminated))
}

// IsTerminated reports whether the phase is terminated
func (s *State) IsTerminated() bool {
	return s.Phase() == Terminated
}
