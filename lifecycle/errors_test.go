package lifecycle

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorKinds(t *testing.T) {
	err := Errorf(KindNoTransferQueues, "SelectQueueFamilies", "none of %d families", 3)
	if !IsKind(err, KindNoTransferQueues) {
		t.Errorf("Expected KindNoTransferQueues, got %s", KindOf(err))
	}
	if got := err.Error(); got != "SelectQueueFamilies: no transfer queues: none of 3 families" {
		t.Errorf("Unexpected message %q", got)
	}

	wrapped := fmt.Errorf("frame 12: %w", Errorf(KindOutOfDate, "AcquireNextImage", "stale"))
	if !IsOutOfDate(wrapped) {
		t.Errorf("Kind should be found through fmt wrapping")
	}
	if IsOutOfDate(errors.New("plain")) || IsOutOfDate(nil) {
		t.Errorf("Plain and nil errors have no kind")
	}
	if Wrap(KindDevice, "CreateDevice", nil) != nil {
		t.Errorf("Wrap(nil) should stay nil")
	}
}

func TestWrapResult(t *testing.T) {
	err := WrapResult(KindSwapchain, "CreateSwapchain", -4, nil)
	if !strings.Contains(err.Error(), "result -4") {
		t.Errorf("Result code missing from %q", err.Error())
	}
	var e *Error
	if !errors.As(err, &e) || e.Result != -4 {
		t.Errorf("Result should be kept on the error")
	}
}

func TestEnsureKindKeepsInnerKind(t *testing.T) {
	inner := Errorf(KindOutOfDate, "QueuePresent", "suboptimal")
	if got := ensureKind(KindSwapchain, "Present", inner); got != inner {
		t.Errorf("An error with a kind should pass through unchanged")
	}
	plain := errors.New("boom")
	if got := ensureKind(KindSwapchain, "Present", plain); !IsKind(got, KindSwapchain) || errors.Cause(errors.Unwrap(got)) != plain {
		t.Errorf("A plain error should be wrapped with the given kind, got %v", got)
	}
}

func TestKindString(t *testing.T) {
	if KindCanvasTooLarge.String() != "canvas too large" {
		t.Errorf("Unexpected name %q", KindCanvasTooLarge)
	}
	if Kind(99).String() != "Kind(99)" {
		t.Errorf("Unknown kinds should print their number, got %q", Kind(99))
	}
}
