package thread

import "golang.org/x/sys/unix"

// Mask is a core-affinity bitset, the Go equivalent of spec's
// bitset<N>. A thread may only be scheduled on a core c for which
// Test(c) is true.
type Mask uint64

// MaxCores bounds the number of virtual cores a Mask can address.
const MaxCores = 64

func NewMask(cores ...uint8) Mask {
	var m Mask
	for _, c := range cores {
		m = m.With(c)
	}
	return m
}

func (m Mask) Test(core uint8) bool {
	return m&(1<<core) != 0
}

func (m Mask) With(core uint8) Mask {
	return m | (1 << core)
}

func (m Mask) Count() int {
	n := 0
	for b := m; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// CPUSet converts the affinity mask into a golang.org/x/sys/unix.CPUSet,
// suitable for a real unix.SchedSetaffinity call on the OS thread backing
// a guest thread. This is how the library honors affinity for callers
// that want virtual cores to also map onto real host CPUs, rather than
// purely bookkeeping which virtual core a thread may run on.
func (m Mask) CPUSet() unix.CPUSet {
	var set unix.CPUSet
	set.Zero()
	for c := uint8(0); c < MaxCores && int(c) < len(set)*64; c++ {
		if m.Test(c) {
			set.Set(int(c))
		}
	}
	return set
}
