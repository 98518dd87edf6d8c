package capi

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// call runs an operation body and converts its outcome to a status. A
// returned error maps through statusOf; a panic becomes
// StatusUnknownException. Nothing escapes to the caller.
func (b *Bridge) call(op string, fn func() error) (st Status) {
	defer func() {
		if r := recover(); r != nil {
			st = StatusUnknownException
			b.setLastError(fmt.Sprintf("%s: panic: %v", op, r))
			b.log.Error("recovered panic", "op", op, "panic", r, "stack", string(debug.Stack()))
		}
		b.metrics.RecordCall(context.Background(), op, st.String())
	}()

	err := fn()
	st = statusOf(err)
	if err != nil {
		b.setLastError(op + ": " + err.Error())
		level := slog.LevelWarn
		if callerFault(st) {
			level = slog.LevelDebug
		}
		b.log.Log(context.Background(), level, "call failed", "op", op, "status", st.String(), "error", err)
	}
	return st
}

// callerFault reports statuses caused by the caller breaking the calling
// contract rather than by the engine.
func callerFault(st Status) bool {
	return st == StatusInvalidCParam || st == StatusOutOfBounds
}

func (b *Bridge) setLastError(msg string) {
	b.errMu.Lock()
	b.lastErr = msg
	b.errMu.Unlock()
}

// LastErrorMessage returns the diagnostic of the most recent failed call on
// any thread, two-phase. It never changes the status of other calls.
func (b *Bridge) LastErrorMessage(output []byte, outputSize *uint) Status {
	b.errMu.Lock()
	msg := b.lastErr
	b.errMu.Unlock()
	if outputSize == nil {
		return StatusInvalidCParam
	}
	if err := writeString(msg, output, outputSize); err != nil {
		return statusOf(err)
	}
	return StatusOK
}

func null(name string) error {
	return statusErrorf(StatusInvalidCParam, "%s is null", name)
}
