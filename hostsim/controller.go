// Package hostsim implements the kernel's hal interfaces against real
// Linux devices so the interrupt bridge (kernel §4.F) and the syscall
// trap contract (kernel §4.G) can be exercised end to end on a
// development host instead of only against synthetic calls. See
// SPEC_FULL.md §11.
package hostsim

import (
	"sync"

	"github.com/nimbusos/vela/hal"
)

// Controller is a software NVIC plus the idle-loop wait/reschedule
// primitives of package hal, sized for the same 32 peripheral IRQ
// numbers as kernel.Kernel's IRQ registration table.
type Controller struct {
	mu      sync.Mutex
	enabled [32]bool
	active  int
	wake    chan struct{}
}

// NewController returns a Controller with every IRQ initially disabled
// and no IRQ latched as active.
func NewController() *Controller {
	return &Controller{active: hal.NoActiveIRQ, wake: make(chan struct{}, 1)}
}

// EnableIRQ implements hal.NVIC.
func (c *Controller) EnableIRQ(irq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled[irq] = true
}

// DisableIRQ implements hal.NVIC.
func (c *Controller) DisableIRQ(irq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled[irq] = false
}

// ActiveIRQ implements hal.NVIC: it reports whichever IRQ was most
// recently latched by SetActiveIRQ, or hal.NoActiveIRQ if none is
// currently latched.
func (c *Controller) ActiveIRQ() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActiveIRQ latches irq as the currently active vector. Interrupt
// sources (UART, GPIO) call this immediately before Kernel.Dispatch, the
// host-mode stand-in for hardware presenting the active vector number to
// the NVIC on IRQ entry.
func (c *Controller) SetActiveIRQ(irq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = irq
}

// Enabled reports whether irq is currently enabled at the simulated
// controller.
func (c *Controller) Enabled(irq int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled[irq]
}

// WaitForInterrupt implements hal.IdleControl: it blocks until
// RequestReschedule has been called at least once since the last wake,
// standing in for the WFI CPU instruction.
func (c *Controller) WaitForInterrupt() {
	<-c.wake
}

// RequestReschedule implements hal.IdleControl: it wakes a blocked
// WaitForInterrupt call. Non-blocking and coalescing, matching the real
// PendSV request's "pending" nature — several requests before the idle
// loop observes any of them collapse into a single wake.
func (c *Controller) RequestReschedule() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
