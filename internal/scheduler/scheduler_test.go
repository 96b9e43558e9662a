package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_InvalidTimezone(t *testing.T) {
	if _, err := New("Middle/Earth"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestScheduleDaily_RejectsInvalidTime(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{"24:00", "5:00", "banana", ""} {
		if err := s.ScheduleDaily(bad, func() {}); err == nil {
			t.Errorf("ScheduleDaily(%q) expected error", bad)
		}
	}
}

func TestScheduleDaily_AcceptsValidTime(t *testing.T) {
	s, err := New("Europe/Copenhagen")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ScheduleDaily("05:00", func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunNow_ExecutesTask(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}

	ran := false
	s.RunNow(func() { ran = true })
	if !ran {
		t.Fatal("task did not run")
	}
}

func TestRunGuarded_SkipsOverlappingTrigger(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}

	release := make(chan struct{})
	started := make(chan struct{})
	var runs int64

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.RunNow(func() {
			atomic.AddInt64(&runs, 1)
			close(started)
			<-release
		})
	}()

	<-started
	// Second trigger arrives while the first run holds the guard.
	s.RunNow(func() { atomic.AddInt64(&runs, 1) })
	close(release)
	wg.Wait()

	if got := atomic.LoadInt64(&runs); got != 1 {
		t.Errorf("runs = %d, want 1 (overlap must be skipped)", got)
	}

	// Guard is free again after the first run finished.
	s.RunNow(func() { atomic.AddInt64(&runs, 1) })
	if got := atomic.LoadInt64(&runs); got != 2 {
		t.Errorf("runs = %d, want 2 after guard released", got)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ScheduleDaily("23:59", func() {}); err != nil {
		t.Fatal(err)
	}

	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
}
