// Package hal names the fixed hardware boundary the kernel core is
// specified against: NVIC-equivalent interrupt enable/disable, a
// wait-for-interrupt primitive for the idle loop, and a PendSV-equivalent
// reschedule request. Per spec §1 this boundary "contains no interesting
// design" — it is implemented by board-specific assembly on a real
// target and by package hostsim when running on a development host.
package hal

// NoActiveIRQ is the ActiveIRQ sentinel meaning no interrupt is currently
// latched at the controller.
const NoActiveIRQ = -1

// NVIC abstracts the interrupt controller the bridge registers handlers
// against: per-IRQ enable/disable, and ActiveIRQ, which the default IRQ
// entry handler queries to learn which vector fired before it looks up
// the registered handler PID (spec §6 / §4.F).
type NVIC interface {
	EnableIRQ(irq int)
	DisableIRQ(irq int)
	ActiveIRQ() int
}

// IdleControl is the pair of primitives the idle process body needs:
// a CPU instruction that sleeps until any interrupt occurs, and a
// PendSV-equivalent used by the interrupt bridge to ask the scheduler
// to run as soon as the interrupted context permits.
type IdleControl interface {
	WaitForInterrupt()
	RequestReschedule()
}
