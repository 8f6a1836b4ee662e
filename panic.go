package kernel

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// defaultLog is used by allocator panics: the arena holds no reference
// to its Kernel, so it cannot reach the Kernel's configured logger.
// Kernel-state panics instead use the Kernel's own logger so output can
// be redirected per-instance.
var defaultLog = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: true,
	Prefix:          "vela",
})

// KernelError is the panic value raised by kernelPanicNoLock/kpanic. Programming
// errors, resource exhaustion, and CPU faults are all fatal per spec §7:
// there is no recovery and no error-return channel in the IPC API.
type KernelError struct {
	Message string
}

func (e *KernelError) Error() string { return e.Message }

// kernelPanicNoLock logs and panics without assuming a Kernel's own lock
// discipline is in scope (used by the allocator, which runs during
// kernel construction and from Start).
func kernelPanicNoLock(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	defaultLog.Error("kernel panic", "reason", msg)
	panic(&KernelError{Message: msg})
}

// kpanic logs a fatal programming error or resource-exhaustion condition
// via the kernel's own logger and panics. It does not release k.mu when
// the caller holds it (most callers do; Connect and Priority call it
// before locking), matching "disable interrupts and spin forever" — the
// goroutine that called this never resumes kernel work.
func (k *Kernel) kpanic(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	k.log.Error("kernel panic", "reason", msg)
	panic(&KernelError{Message: msg})
}
