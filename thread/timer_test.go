package thread

import (
	"testing"
	"time"
)

func TestPreemptionTimerFires(t *testing.T) {
	var pt PreemptionTimer
	fired := make(chan struct{})
	pt.Arm(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestPreemptionTimerDisarm(t *testing.T) {
	var pt PreemptionTimer
	fired := make(chan struct{})
	pt.Arm(20*time.Millisecond, func() { close(fired) })
	pt.Disarm()

	select {
	case <-fired:
		t.Fatal("disarmed timer fired anyway")
	case <-time.After(40 * time.Millisecond):
	}
}

func TestPreemptionTimerRearmStopsPrevious(t *testing.T) {
	var pt PreemptionTimer
	firstFired := make(chan struct{})
	pt.Arm(50*time.Millisecond, func() { close(firstFired) })

	secondFired := make(chan struct{})
	pt.Arm(5*time.Millisecond, func() { close(secondFired) })

	select {
	case <-secondFired:
	case <-time.After(time.Second):
		t.Fatal("second arm never fired")
	}

	select {
	case <-firstFired:
		t.Fatal("first arm fired despite being superseded")
	case <-time.After(80 * time.Millisecond):
	}
}
