package fileio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrBadHandle,
		ErrTimeout,
		ErrNotSupported,
		ErrNotImplemented,
		ErrNotSeekable,
		io.EOF,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}

func TestSentinelCategories(t *testing.T) {
	if !errdefs.IsFailedPrecondition(ErrBadHandle) {
		t.Error("ErrBadHandle should be a failed precondition")
	}
	if !errdefs.IsInvalidArgument(ErrNotSupported) {
		t.Error("ErrNotSupported should be an invalid argument")
	}
	if !errdefs.IsNotImplemented(ErrNotImplemented) {
		t.Error("ErrNotImplemented should be not implemented")
	}
	if !errors.Is(ErrTimeout, context.DeadlineExceeded) {
		t.Error("ErrTimeout should wrap context.DeadlineExceeded")
	}
}

func TestIOError(t *testing.T) {
	inner := errors.New("input/output error")
	f := &File{name: "/var/log/app.log"}
	err := f.ioError("read", inner)

	errStr := err.Error()
	if !strings.Contains(errStr, "read") || !strings.Contains(errStr, "/var/log/app.log") {
		t.Errorf("error message should contain op and name: %s", errStr)
	}
	if !strings.Contains(errStr, "input/output error") {
		t.Errorf("error message should contain inner error: %s", errStr)
	}
	if !errors.Is(err, inner) {
		t.Error("should unwrap to inner error")
	}

	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "read" {
		t.Errorf("expected *IOError with op read, got %#v", err)
	}
}

func TestDirectionString(t *testing.T) {
	tests := map[Direction]string{
		Neutral:      "neutral",
		Reading:      "reading",
		Writing:      "writing",
		Direction(7): "unknown(7)",
	}
	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("Direction(%d).String() = %q, want %q", int(d), got, want)
		}
	}
}
