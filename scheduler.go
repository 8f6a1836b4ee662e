package kernel

// makeReady transitions d to Active and appends it to the tail of its
// priority's ready queue. A process targeting the idle priority is left
// alone: the idle process is chosen implicitly by chooseProc whenever
// every real queue is empty, it never sits on one (spec §4.C).
func (k *Kernel) makeReady(d *ProcessDescriptor, prio int) {
	if prio >= PIdle {
		return
	}
	d.state = Active
	d.priority = prio
	k.listPushTail(&k.ready[prio], d)
}

// chooseProc scans the ready queues in ascending priority order (0
// highest) and returns the head of the first non-empty one, or the idle
// process if all three are empty. It also updates k.current: while a
// syscall is executing, current still names the caller until this
// function replaces it, exactly mirroring os_current's semantics.
func (k *Kernel) chooseProc() *ProcessDescriptor {
	for lvl := 0; lvl < numPriorities; lvl++ {
		if d := k.listPopHead(&k.ready[lvl]); d != nil {
			k.current = d.pid
			return d
		}
	}
	idle := k.table[k.idle]
	k.current = idle.pid
	return idle
}

// switchTo performs the context-switch handoff between caller and next:
// the Go-native reading of "return the os_current stack pointer; the
// trampoline resumes from that frame" (spec §4.G). If next is the
// caller, nothing happened — there is no handoff, the caller simply
// continues running. Otherwise next's goroutine is released to run and
// the caller parks on its own resume gate until the scheduler chooses it
// again. Must be called with k.mu NOT held.
func (k *Kernel) switchTo(caller, next *ProcessDescriptor) {
	if next == caller {
		return
	}
	next.resume <- struct{}{}
	<-caller.resume
}
