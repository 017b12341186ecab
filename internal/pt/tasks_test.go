package pt

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type recordingLogger struct {
	NopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnCount(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, w := range l.warns {
		if w == msg {
			n++
		}
	}
	return n
}

func TestTaskPool(t *testing.T) {
	t.Run("runs every submitted task before Close returns", func(t *testing.T) {
		pool := NewTaskPool(3, 100, NewNopLogger(), nil)
		var ran atomic.Int32
		for i := 0; i < 20; i++ {
			if !pool.Submit(Task{Name: "count", Run: func(context.Context) error {
				ran.Add(1)
				return nil
			}}) {
				t.Fatalf("submit %d rejected", i)
			}
		}
		pool.Close()
		if got := ran.Load(); got != 20 {
			t.Errorf("ran %d tasks, want 20", got)
		}
	})

	t.Run("task errors are logged not returned", func(t *testing.T) {
		logger := &recordingLogger{}
		pool := NewTaskPool(1, 4, logger, nil)
		pool.Submit(Task{Name: "boom", Run: func(context.Context) error {
			return errors.New("boom")
		}})
		pool.Close()
		if got := logger.warnCount("background task failed"); got != 1 {
			t.Errorf("logged %d failures, want 1", got)
		}
	})

	t.Run("full queue drops without blocking", func(t *testing.T) {
		logger := &recordingLogger{}
		pool := NewTaskPool(1, 1, logger, nil)
		release := make(chan struct{})
		started := make(chan struct{})
		pool.Submit(Task{Name: "block", Run: func(context.Context) error {
			close(started)
			<-release
			return nil
		}})
		<-started
		if !pool.Submit(Task{Name: "queued", Run: func(context.Context) error { return nil }}) {
			t.Fatal("expected the queue slot to accept one task")
		}
		if pool.Submit(Task{Name: "extra", Run: func(context.Context) error { return nil }}) {
			t.Error("expected submit to be rejected while the only worker is busy")
		}
		close(release)
		pool.Close()
		if got := logger.warnCount("background queue full, task dropped"); got != 1 {
			t.Errorf("logged %d drops, want 1", got)
		}
	})

	t.Run("submit after close is rejected", func(t *testing.T) {
		pool := NewTaskPool(1, 1, NewNopLogger(), nil)
		pool.Close()
		pool.Close()
		if pool.Submit(Task{Name: "late", Run: func(context.Context) error { return nil }}) {
			t.Error("expected submit after close to be rejected")
		}
	})
}
