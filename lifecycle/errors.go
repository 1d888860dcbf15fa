package lifecycle

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies every failure the renderer can report at its boundaries.
type Kind int

const (
	KindUnknown Kind = iota
	KindLoader
	KindInstance
	KindSurface
	KindDevice
	KindNoPhysicalDevices
	KindNoGraphicsQueues
	KindNoTransferQueues
	KindSwapchain
	// KindOutOfDate is the only transient kind: the frame is dropped and retried on the next Redraw.
	KindOutOfDate
	KindCommandBuffer
	KindExecution
	KindChannel
	KindShaderEntryPointNotFound
	KindNoSubpassesSpecified
	KindPipelineLayout
	KindBufferAllocation
	KindCanvasTooLarge
)

var kindNames = map[Kind]string{
	KindUnknown:                  "unknown",
	KindLoader:                   "loader",
	KindInstance:                 "instance",
	KindSurface:                  "surface",
	KindDevice:                   "device",
	KindNoPhysicalDevices:        "no physical devices",
	KindNoGraphicsQueues:         "no graphics queues",
	KindNoTransferQueues:         "no transfer queues",
	KindSwapchain:                "swapchain",
	KindOutOfDate:                "out of date",
	KindCommandBuffer:            "command buffer",
	KindExecution:                "execution",
	KindChannel:                  "channel",
	KindShaderEntryPointNotFound: "shader entry point not found",
	KindNoSubpassesSpecified:     "no subpasses specified",
	KindPipelineLayout:           "pipeline layout",
	KindBufferAllocation:         "buffer allocation",
	KindCanvasTooLarge:           "canvas too large",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type crossing component boundaries. Op names the operation that failed (for example
// "AcquireNextImage"), Result carries the raw graphics API result code when there is one.
type Error struct {
	Kind   Kind
	Op     string
	Result int32
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Result != 0 {
		msg = fmt.Sprintf("%s (result %d)", msg, e.Result)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error of the given kind with a formatted cause.
func Errorf(kind Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// Wrap attaches kind and operation to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

// WrapResult is Wrap for failures reported as a raw API result code.
func WrapResult(kind Kind, op string, result int32, err error) error {
	if err == nil {
		err = errors.Errorf("result code %d", result)
	}
	return &Error{Kind: kind, Op: op, Result: result, Err: errors.WithStack(err)}
}

// ensureKind keeps err as is if it already carries a kind and wraps it with kind otherwise.
func ensureKind(kind Kind, op string, err error) error {
	if err == nil || KindOf(err) != KindUnknown {
		return err
	}
	return Wrap(kind, op, err)
}

// KindOf returns the kind of the outermost Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsOutOfDate(err error) bool {
	return IsKind(err, KindOutOfDate)
}
