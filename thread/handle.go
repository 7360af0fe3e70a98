// Package thread defines the guest-thread handle the scheduler operates
// on. spec.md treats the thread object as an external collaborator
// (priorities, affinity, signal delivery, per-thread preemption timer
// live on the guest kernel's own thread type); since this module has no
// guest kernel to borrow that type from, Handle is the concrete, in-scope
// implementation of that contract.
package thread

import (
	"fmt"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/jwarrior319/skyline/hostsignal"
)

// YieldSignal is the OS signal reserved for preemption/rotation delivery
// (spec.md §6). SIGUSR1 is unused by the Go runtime itself, unlike
// SIGURG, which the runtime reserves for its own async preemption.
const YieldSignal = syscall.SIGUSR1

// Id identifies a guest thread for logging and test assertions.
type Id uint64

// Handle is the scheduler-facing view of a guest thread: one host
// goroutine (conventionally pinned to its own OS thread via
// runtime.LockOSThread so SendSignal can target it precisely) per
// Handle.
type Handle struct {
	ID Id

	priority atomic.Int32 // stores an int8; atomic.Int32 is the narrowest atomic stdlib offers

	AffinityMask Mask // immutable for the lifetime of the handle

	// CoreMigrationMutex guards CoreID and the handle's binding to a
	// CoreContext. Must be held before any core mutex (spec.md §5 lock
	// order).
	CoreMigrationMutex sync.Mutex
	CoreID             uint8

	// AverageTimeslice and TimesliceStart are touched only while the
	// owning core's mutex is held (by Rotate, WaitSchedule, RemoveThread,
	// or LoadBalance's projection over a candidate core).
	AverageTimeslice uint64
	TimesliceStart   uint64

	PreemptionTimer PreemptionTimer
	IsPreempted     bool
	ForceYield      bool

	// YieldPending is spec.md's per-host-thread flag: set when a
	// YieldSignal arrives while the thread either isn't bound (the
	// signal shim's "absent" path) or hasn't reached a safe point yet.
	YieldPending atomic.Bool

	// wakeCond is the wake condition, signaled when this thread may become
	// the head of its core's queue. It is rebound (via Rebind) to the mutex
	// of whichever CoreContext (or the parked queue) currently owns the
	// thread.
	wakeMu       sync.Mutex
	wakeCond     *sync.Cond
	osThreadTid  atomic.Int32 // 0 until BindOSThread is called
}

// New creates a Handle with the given initial priority and affinity
// mask. The caller is responsible for admitting it to a core (see
// sched.Scheduler.InsertThread / LoadBalance).
func New(id Id, priority int8, affinity Mask) *Handle {
	h := &Handle{ID: id, AffinityMask: affinity}
	h.priority.Store(int32(priority))
	return h
}

func (h *Handle) Priority() int8 {
	return int8(h.priority.Load())
}

func (h *Handle) SetPriority(p int8) {
	h.priority.Store(int32(p))
}

// Rebind points the handle's wake condition at core's mutex. Called
// whenever the thread is admitted to, or migrated onto, a core.
func (h *Handle) Rebind(coreMutex *sync.Mutex) {
	h.wakeMu.Lock()
	defer h.wakeMu.Unlock()
	h.wakeCond = sync.NewCond(coreMutex)
}

// Wait blocks on the wake condition under the core mutex the caller
// already holds, same contract as sync.Cond.Wait.
func (h *Handle) Wait() {
	h.wakeMu.Lock()
	cond := h.wakeCond
	h.wakeMu.Unlock()
	cond.Wait()
}

// Notify wakes this thread if it is blocked in Wait.
func (h *Handle) Notify() {
	h.wakeMu.Lock()
	cond := h.wakeCond
	h.wakeMu.Unlock()
	if cond != nil {
		cond.Signal()
	}
}

// BindOSThread records the calling goroutine's OS thread id as this
// handle's signal-delivery target. Callers that want genuine
// preemption-via-signal must call runtime.LockOSThread before this.
func (h *Handle) BindOSThread() {
	h.osThreadTid.Store(int32(unix.Gettid()))
}

// UnbindOSThread clears the signal-delivery target, e.g. when the
// thread parks or terminates.
func (h *Handle) UnbindOSThread() {
	h.osThreadTid.Store(0)
}

// OSThreadID returns the OS thread id this handle is currently bound
// to, or 0 if unbound.
func (h *Handle) OSThreadID() int32 {
	return h.osThreadTid.Load()
}

// SendSignal delivers sig to the OS thread this handle is bound to via
// tgkill, and unconditionally marks YieldPending so a cooperative safe
// point notices the request even if the target OS thread is between
// syscalls when the signal lands (see hostsignal package for the
// dispatch side of this protocol).
func (h *Handle) SendSignal(sig syscall.Signal) error {
	h.YieldPending.Store(true)
	tid := h.OSThreadID()
	if tid == 0 {
		return nil
	}
	err := unix.Tgkill(unix.Getpid(), int(tid), sig)
	hostsignal.Notify(tid)
	return err
}

func (h *Handle) String() string {
	return fmt.Sprintf("T%d{prio=%d core=%d}", h.ID, h.Priority(), h.CoreID)
}
