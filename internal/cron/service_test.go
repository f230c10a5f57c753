package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

type stubLock struct {
	acquired bool
	acquires int
	releases int
}

func (l *stubLock) Acquire(context.Context) (bool, error) {
	l.acquires++
	return l.acquired, nil
}

func (l *stubLock) Release(context.Context) error {
	l.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string              { return j.name }
func (j *countingJob) Run(context.Context) error { j.runs++; return j.err }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Level: zerolog.ErrorLevel, Output: &bytes.Buffer{}})
}

func TestRunCycleSkipsWithoutLock(t *testing.T) {
	lock := &stubLock{acquired: false}
	job := &countingJob{name: "noop"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock, ran %d times", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("unacquired lock must not be released")
	}
}

func TestRunCycleRunsAllJobsAndReleasesLock(t *testing.T) {
	lock := &stubLock{acquired: true}
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	after := &countingJob{name: "after"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(ok, failing, after),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	// One failing job does not stop the rest of the cycle.
	if ok.runs != 1 || failing.runs != 1 || after.runs != 1 {
		t.Fatalf("expected every job to run once, got %d/%d/%d", ok.runs, failing.runs, after.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected one lock release, got %d", lock.releases)
	}
}

type sweepStub struct {
	completed int
	err       error
	calls     int
	seen      time.Time
}

func (s *sweepStub) AutoCompleteDelivered(_ context.Context, now time.Time) (int, error) {
	s.calls++
	s.seen = now
	return s.completed, s.err
}

func TestOrderAutoCompleteJob(t *testing.T) {
	sweep := &sweepStub{completed: 3}
	job, err := NewOrderAutoCompleteJob(OrderAutoCompleteJobParams{
		Logger: testLogger(),
		Orders: sweep,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.Name() != "order-auto-complete" {
		t.Fatalf("unexpected job name %q", job.Name())
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sweep.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweep.calls)
	}
	if sweep.seen.IsZero() {
		t.Fatalf("sweep must receive the current time")
	}

	sweep.err = errors.New("order 42: database gone")
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected sweep errors to surface")
	}
}
