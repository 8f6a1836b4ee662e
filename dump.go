package kernel

// dump implements the DUMP syscall (supplemented per spec §4.G: named
// but left unspecified by the original). For every live process it logs
// pid, name, state, priority, the simulated stack high-water mark, and
// how many senders are queued on it, using the kernel's own locked
// diagnostic writer — matching spec §5's "debug printing disables
// interrupts for the duration," here rendered as holding k.mu for the
// whole walk rather than reading a half-updated table.
func (k *Kernel) dump() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.log.Info("dump", "nprocs", k.nprocs, "current", k.current)
	for pid := PID(0); pid < k.nprocs; pid++ {
		d := k.table[pid]
		if d.state == Dead {
			continue
		}
		k.log.Info("process",
			"pid", d.pid,
			"name", d.name,
			"state", d.state,
			"priority", d.priority,
			"stack_high_water", k.arena.highWaterMark(pid),
			"stack_size", d.stackSize,
			"senders_queued", k.listLen(&d.senders),
		)
	}
}

// listLen counts the entries in l by walking next pointers. Called with
// k.mu held.
func (k *Kernel) listLen(l *list) int {
	n := 0
	for cur := l.head; cur != NoPID; cur = k.table[cur].next {
		n++
	}
	return n
}
