package kernel

import (
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/nimbusos/vela/hal"
)

const idleStackBytes = 64

// noopIdleControl is used when no hal.IdleControl is configured. It still
// paces the idle loop with a short sleep instead of returning immediately:
// without a real interrupt source to block on, OSStart's "wait, then
// yield" loop would otherwise spin a core at 100% forever once idle,
// which is fine for correctness but not for running alongside anything
// else (e.g. a test binary with many kernels left running in the
// background after their own test function returns).
type noopIdleControl struct{}

func (noopIdleControl) WaitForInterrupt()  { time.Sleep(time.Millisecond) }
func (noopIdleControl) RequestReschedule() {}

// noopNVIC is used when no hal.NVIC is configured: IRQ enable/disable are
// no-ops and no IRQ is ever active, which is fine for tests that drive
// Interrupt directly without a real interrupt controller or Dispatch.
type noopNVIC struct{}

func (noopNVIC) EnableIRQ(int)  {}
func (noopNVIC) DisableIRQ(int) {}
func (noopNVIC) ActiveIRQ() int { return hal.NoActiveIRQ }

// Kernel holds all kernel-shared state: the process table, ready queues,
// IRQ registration table, and the current process. It is mutated only
// while mu is held, standing in for "single core, interrupts masked
// during trap/IRQ entry" (spec §5).
type Kernel struct {
	mu sync.Mutex

	table  [NPROCS]*ProcessDescriptor
	nprocs PID

	ready [numPriorities]list

	irqTable [32]PID

	current PID
	idle    PID
	started bool

	arena *arena
	log   *charmlog.Logger

	nvic    hal.NVIC
	idleCtl hal.IdleControl
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithNVIC installs a hardware NVIC implementation. Without one, IRQ
// enable/disable are no-ops.
func WithNVIC(n hal.NVIC) Option { return func(k *Kernel) { k.nvic = n } }

// WithIdleControl installs a hal.IdleControl implementation driving the
// idle process's wait-for-interrupt loop and the interrupt bridge's
// reschedule requests.
func WithIdleControl(c hal.IdleControl) Option { return func(k *Kernel) { k.idleCtl = c } }

// WithLogger overrides the kernel's diagnostic logger.
func WithLogger(l *charmlog.Logger) Option { return func(k *Kernel) { k.log = l } }

// WithArenaSize overrides the default 64KiB simulated arena used for
// stack/descriptor accounting (spec §4.A, §3 Allocator state).
func WithArenaSize(bytes int) Option {
	return func(k *Kernel) { k.arena = newArena(bytes) }
}

// NewKernel builds a kernel with PID 0 allocated as the idle process
// (os_init, spec §3 Lifecycle / §4.H). The idle process is never placed
// on a ready queue and is selected implicitly whenever every queue is
// empty.
func NewKernel(opts ...Option) *Kernel {
	k := &Kernel{
		irqTable: [32]PID{},
	}
	for i := range k.irqTable {
		k.irqTable[i] = NoPID
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.arena == nil {
		k.arena = newArena(defaultArenaBytes)
	}
	if k.log == nil {
		k.log = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			ReportTimestamp: true,
			Prefix:          "vela",
		})
	}
	if k.nvic == nil {
		k.nvic = noopNVIC{}
	}
	if k.idleCtl == nil {
		k.idleCtl = noopIdleControl{}
	}

	idle := &ProcessDescriptor{
		pid:      0,
		name:     "idle",
		state:    Idling,
		priority: PIdle,
		next:     NoPID,
		senders:  emptyList(),
		resume:   make(chan struct{}),
	}
	idle.stackBase = k.arena.allocStack(idle.pid, idleStackBytes)
	idle.stackSize = idleStackBytes
	idle.descSlot = k.arena.allocDescriptor()
	k.table[0] = idle
	k.nprocs = 1
	k.idle = 0
	k.current = 0

	return k
}

// validateDest resolves dest to a live descriptor, or panics per the
// error policy of spec §4.E/§7: an out-of-range PID or a DEAD
// destination is always a programming error.
func (k *Kernel) validateDest(dest PID) *ProcessDescriptor {
	if dest < 0 || dest >= k.nprocs {
		k.kpanic("send/sendrec: destination pid %d out of range (nprocs=%d)", dest, k.nprocs)
	}
	d := k.table[dest]
	if d.state == Dead {
		k.kpanic("send/sendrec: destination pid %d is dead", dest)
	}
	return d
}

func (k *Kernel) currentDescriptor() *ProcessDescriptor {
	return k.table[k.current]
}
