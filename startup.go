package kernel

// defaultStartPriority is the priority a freshly started process runs at
// before it ever calls Priority or Connect itself.
const defaultStartPriority = PLow

// Start allocates a process descriptor and stack, builds the initial
// synthetic frame (here: a goroutine parked on its resume gate, about to
// invoke body with arg — the Go-native reading of spec §4.H's "prime the
// initial PC/LR/R0"), and enqueues it on PLow. It must be called only
// before OSStart; calling it afterwards is a programming error.
func (k *Kernel) Start(name string, body ProcessBody, arg int, stackSize int) PID {
	k.mu.Lock()
	if k.started {
		k.kpanic("start: %q: cannot start a process after OSStart", name)
	}
	if k.nprocs >= NPROCS {
		k.kpanic("start: %q: process table exhausted (NPROCS=%d)", name, NPROCS)
	}

	pid := k.nprocs
	k.nprocs++

	d := &ProcessDescriptor{
		pid:      pid,
		name:     name,
		priority: defaultStartPriority,
		next:     NoPID,
		senders:  emptyList(),
		resume:   make(chan struct{}),
	}
	d.stackBase = k.arena.allocStack(pid, stackSize)
	d.stackSize = stackSize
	d.descSlot = k.arena.allocDescriptor()
	k.table[pid] = d
	k.makeReady(d, defaultStartPriority)
	k.mu.Unlock()

	p := &Proc{k: k, d: d}
	go func() {
		<-d.resume
		body(p, arg)
		p.Exit()
	}()

	return pid
}

// OSStart morphs the calling goroutine into the idle process (spec
// §4.H): it yields once to let the scheduler pick a real process if any
// is ready, then loops waiting for an interrupt and yielding again
// forever. It never returns.
func (k *Kernel) OSStart() {
	k.mu.Lock()
	k.started = true
	k.current = k.idle
	k.mu.Unlock()

	idle := &Proc{k: k, d: k.table[k.idle]}
	idle.Yield()
	for {
		k.idleCtl.WaitForInterrupt()
		idle.Yield()
	}
}
