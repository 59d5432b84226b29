package proc

import "testing"

// resetProcs clears the package-level process table between tests; the
// scheduler operates on package-level state rather than an injected table,
// matching the single fixed-capacity table the spec describes.
func resetProcs() {
	for i := range procs {
		procs[i] = Process{Pid: uint32(i)}
	}
	current = 0
}

func TestScheduleRoundRobinStartsAfterCurrent(t *testing.T) {
	resetProcs()
	procs[2].State = Runnable
	procs[4].State = Runnable
	current = 2

	next := schedule()
	if next.Pid != 4 {
		t.Fatalf("expected pid 4 to be picked next, got %d", next.Pid)
	}
}

func TestScheduleWrapsAround(t *testing.T) {
	resetProcs()
	procs[1].State = Runnable
	current = NPROC - 1

	next := schedule()
	if next.Pid != 1 {
		t.Fatalf("expected pid 1 after wraparound, got %d", next.Pid)
	}
}

func TestScheduleNeverReturnsIdleWhileAnotherIsRunnable(t *testing.T) {
	resetProcs()
	procs[0].State = Runnable
	procs[3].State = Runnable
	current = 0

	for i := 0; i < NPROC*2; i++ {
		next := schedule()
		if next.Pid == 0 {
			t.Fatalf("schedule returned the idle process while pid 3 was runnable")
		}
		current = int(next.Pid)
	}
}

func TestScheduleFallsBackToIdle(t *testing.T) {
	resetProcs()
	current = 0

	next := schedule()
	if next.Pid != 0 {
		t.Fatalf("expected the idle process when nothing else is runnable, got pid %d", next.Pid)
	}
}

func TestScheduleSkipsExitedProcesses(t *testing.T) {
	resetProcs()
	procs[1].State = Exited
	procs[2].State = Runnable
	current = 0

	next := schedule()
	if next.Pid != 2 {
		t.Fatalf("expected pid 2 (Exited pid 1 should be skipped), got %d", next.Pid)
	}
}

func TestPidEqualsSlotIndex(t *testing.T) {
	resetProcs()
	for i := range procs {
		if procs[i].Pid != uint32(i) {
			t.Fatalf("slot %d: expected pid == slot index, got pid %d", i, procs[i].Pid)
		}
	}
}
