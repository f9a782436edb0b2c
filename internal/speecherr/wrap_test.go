package speecherr

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAndReason(t *testing.T) {
	err := Wrap(errors.New("boom"), ReasonSTTRecv)
	if ReasonOf(err) != ReasonSTTRecv {
		t.Fatalf("expected reason %s, got %s", ReasonSTTRecv, ReasonOf(err))
	}
	if !HasReason(err, ReasonSTTRecv) {
		t.Fatalf("expected HasReason true")
	}
	if err.Error() != "stt_recv: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(errors.New("boom"), ReasonTTSConnect)
	second := Wrap(fmt.Errorf("outer: %w", first), ReasonTTSRecv)
	if ReasonOf(second) != ReasonTTSConnect {
		t.Fatalf("expected reason preserved, got %s", ReasonOf(second))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonProxyPlay) != nil {
		t.Fatal("expected nil")
	}
	if ReasonOf(errors.New("plain")) != ReasonUnknown {
		t.Fatal("expected unknown reason for plain error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	if !errors.Is(Wrap(cause, ReasonProxyPlaceholder), cause) {
		t.Fatal("expected wrapped error to match cause")
	}
}
