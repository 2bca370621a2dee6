package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/bidboard/bidboard-backend/pkg/logger"
)

type fakeLock struct {
	acquired bool
	held     bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	registry := NewRegistry(&testJob{name: "success"}, &testJob{name: "fail", err: errors.New("boom")})
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     &fakeLock{},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	for _, job := range registry.Jobs() {
		typed, ok := job.(*testJob)
		if !ok {
			t.Fatalf("job type mismatch")
		}
		if typed.runs != 1 {
			t.Fatalf("expected job %q to run once, ran %d", typed.name, typed.runs)
		}
	}
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "totals"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{held: true},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped while lock held, ran %d", job.runs)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without lock")
	}
}
