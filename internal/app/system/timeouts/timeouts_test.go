package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})

	if got := Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, DefaultMedium)
	}

	Reset()
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() after Reset = %v, want %v", got, DefaultShort)
	}
}

func TestBound_KeepsEarlierParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	ctx, done := Bound(parent, time.Hour)
	defer done()

	want, _ := parent.Deadline()
	got, ok := ctx.Deadline()
	if !ok || !got.Equal(want) {
		t.Errorf("deadline = %v, want parent deadline %v", got, want)
	}
}

func TestBound_ShortensLaterParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	ctx, done := Bound(parent, time.Second)
	defer done()

	parentDeadline, _ := parent.Deadline()
	got, ok := ctx.Deadline()
	if !ok || !got.Before(parentDeadline) {
		t.Errorf("deadline = %v, want earlier than parent %v", got, parentDeadline)
	}
}

func TestBound_AddsDeadline(t *testing.T) {
	ctx, done := Bound(context.Background(), time.Minute)
	defer done()

	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline to be set")
	}
}

func TestWithTimeout_LogsWhenDeadlineHit(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.New(core), "InviteToGroup")
	<-ctx.Done()
	cancel()

	if got := logs.FilterMessage("operation timed out").Len(); got != 1 {
		t.Errorf("timeout warnings = %d, want 1", got)
	}
}

func TestWithTimeout_QuietWhenFinishedInTime(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "InviteToGroup")
	cancel()

	if got := logs.Len(); got != 0 {
		t.Errorf("log lines = %d, want 0", got)
	}
}
