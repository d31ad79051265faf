package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amaumene/gowatchlist/internal/utils"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls.Add(1)
	return r.err
}

func waitForCalls(t *testing.T, r *countingRefresher, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.calls.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d refreshes, got %d", want, r.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartRunsInitialRefresh(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewScheduler(refresher, "", utils.NewNopLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitForCalls(t, refresher, 1)
	s.Stop()

	if got := refresher.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one initial refresh, got %d", got)
	}
}

func TestNewSchedulerRunsNothing(t *testing.T) {
	refresher := &countingRefresher{}
	_ = NewScheduler(refresher, DefaultRefreshSpec, utils.NewNopLogger())

	time.Sleep(20 * time.Millisecond)
	if got := refresher.calls.Load(); got != 0 {
		t.Fatalf("expected no refresh before Start, got %d", got)
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, "not a cron spec", utils.NewNopLogger())
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRefreshErrorIsNotFatal(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("catalog down")}
	s := NewScheduler(refresher, "", utils.NewNopLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitForCalls(t, refresher, 1)
	s.Stop()
}
