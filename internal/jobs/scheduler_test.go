package jobs

import (
	"context"
	"errors"
	"testing"
)

type countingJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Execute(context.Context) error {
	j.runs++
	return j.err
}

func TestRunByName(t *testing.T) {
	s := NewScheduler()
	ok := &countingJob{name: "ok", schedule: "@daily"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	for _, j := range []Job{ok, failing} {
		if err := s.Register(j); err != nil {
			t.Fatalf("Register(%s): %v", j.Name(), err)
		}
	}

	if err := s.RunByName(context.Background(), "ok"); err != nil || ok.runs != 1 {
		t.Fatalf("run ok = %v, runs %d", err, ok.runs)
	}
	if err := s.RunByName(context.Background(), "failing"); err == nil || failing.runs != 1 {
		t.Fatalf("run failing = %v, runs %d", err, failing.runs)
	}
	if err := s.RunByName(context.Background(), "missing"); err == nil {
		t.Fatal("unknown job should error")
	}
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler()
	if err := s.Register(&countingJob{name: "bad", schedule: "every tuesday"}); err == nil {
		t.Fatal("invalid cron spec should be rejected")
	}
}
