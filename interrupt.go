package kernel

// Dispatch is the default IRQ entry handler of spec §4.F: it queries the
// NVIC for the currently active IRQ number (spec §6's "a way to read the
// currently active IRQ"), looks up the PID registered for it, disables
// that IRQ at the NVIC (the handler re-enables it itself once it has
// fully drained the device), and delivers through Interrupt. Host-mode
// interrupt sources (package hostsim) latch their IRQ number at the NVIC
// and call this once per event instead of the real vectored hardware
// path.
func (k *Kernel) Dispatch() {
	irq := k.nvic.ActiveIRQ()

	k.mu.Lock()
	if irq < 0 || irq >= len(k.irqTable) {
		k.kpanic("dispatch: active irq %d out of range", irq)
	}
	dest := k.irqTable[irq]
	k.mu.Unlock()

	if dest == NoPID {
		k.log.Warn("interrupt on unregistered irq, dropped", "irq", irq)
		return
	}
	k.nvic.DisableIRQ(irq)
	k.Interrupt(dest)
}

// Interrupt implements spec §4.F's interrupt(dest): called only from the
// interrupt bridge, never from process code. If dest is Receiving with a
// filter that admits INTERRUPT, deliver a synthetic interrupt message
// immediately, make dest ready and, if the process the scheduler last
// chose to run is lower priority than PHandler, request a reschedule
// through hal.IdleControl. That request wakes the idle loop, so an idle
// CPU switches to the handler at once; a non-idle process that is running
// is not interrupted and keeps the CPU until it next blocks or yields,
// when chooseProc picks the handler from the PHandler queue. Otherwise
// the interrupt collapses into dest's pending flag, to be observed on its
// next admitting receive.
func (k *Kernel) Interrupt(dest PID) {
	k.mu.Lock()
	dd := k.table[dest]

	if dd.state == Receiving && (dd.msgType == Any || dd.msgType == Interrupt) {
		dd.buf.Sender = Hardware
		dd.buf.Type = Interrupt
		k.makeReady(dd, dd.priority)
		runningBelowHandler := k.table[k.current].priority > PHandler
		k.mu.Unlock()
		if runningBelowHandler {
			k.idleCtl.RequestReschedule()
		}
		return
	}

	dd.pending = true
	k.mu.Unlock()
}
