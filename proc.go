package kernel

import "runtime"

// ProcessBody is the entry point of a process, invoked with its own
// handle and its start argument. Returning from body is equivalent to
// calling Exit: spec §4.H's synthetic frame sets the saved LR to the
// exit syscall stub so that falling off the end of body terminates the
// process cleanly.
type ProcessBody func(p *Proc, arg int)

// Proc is the handle a running process uses to call into the kernel. It
// plays the role of the saved exception frame in spec §4.G: the syscall
// dispatcher always knows exactly which descriptor is calling because
// Proc carries it, rather than having to trust a single shared
// "currently trapped" pointer.
type Proc struct {
	k *Kernel
	d *ProcessDescriptor
}

// PID returns the calling process's own id.
func (p *Proc) PID() PID { return p.d.pid }

// Send implements spec §4.E Send: deliver immediately if dest is
// Receiving with a matching filter, otherwise queue on dest's sender
// list and block. Panics (per §7) if dest is out of range or dead.
func (p *Proc) Send(dest PID, typ int, msg *Message) {
	k := p.k
	k.mu.Lock()
	dd := k.validateDest(dest)

	if dd.state == Receiving && (dd.msgType == Any || dd.msgType == typ) {
		deliver(dd.buf, msg, p.d.pid, typ)
		k.makeReady(dd, dd.priority)
		k.mu.Unlock()
		return
	}

	p.d.state = Sending
	p.d.msgType = typ
	p.d.buf = msg
	k.listPushTail(&dd.senders, p.d)
	next := k.chooseProc()
	k.mu.Unlock()
	k.switchTo(p.d, next)
}

// Receive implements spec §4.E Receive: the pending interrupt flag takes
// priority over queued senders, then the caller's own sender queue is
// scanned in FIFO order for the first message whose type satisfies
// filter. If nothing matches, the caller blocks Receiving.
func (p *Proc) Receive(filter int, msg *Message) {
	k := p.k
	d := p.d
	k.mu.Lock()

	if d.pending && (filter == Any || filter == Interrupt) {
		d.pending = false
		msg.Sender = Hardware
		msg.Type = Interrupt
		k.mu.Unlock()
		return
	}

	// A pure INTERRUPT filter only ever matches the pending flag above; it
	// never scans the sender queue, since INTERRUPT is reserved for
	// kernel-synthesised messages and no real sender can be queued under it.
	if filter != Interrupt {
		if sender := k.listPopMatching(&d.senders, filter); sender != nil {
			deliver(msg, sender.buf, sender.pid, sender.msgType)
			switch sender.state {
			case Sending:
				k.makeReady(sender, sender.priority)
			case SendRec:
				// Stays off every list until the reply arrives; the
				// reply targets the same buffer the request was sent
				// with, per spec §4.E.
				sender.state = Receiving
				sender.msgType = Reply
			}
			k.mu.Unlock()
			return
		}
	}

	d.state = Receiving
	d.msgType = filter
	d.buf = msg
	next := k.chooseProc()
	k.mu.Unlock()
	k.switchTo(d, next)
}

// SendRec implements spec §4.E SendRec: deliver (or queue) exactly as
// Send does, but the caller always ends up blocked Receiving for a
// REPLY-typed message afterwards — the atomic rendezvous-then-reply
// guarantee of spec §8.
func (p *Proc) SendRec(dest PID, typ int, msg *Message) {
	k := p.k
	k.mu.Lock()
	dd := k.validateDest(dest)

	if dd.state == Receiving && (dd.msgType == Any || dd.msgType == typ) {
		deliver(dd.buf, msg, p.d.pid, typ)
		k.makeReady(dd, dd.priority)
		p.d.state = Receiving
		p.d.msgType = Reply
		p.d.buf = msg
		next := k.chooseProc()
		k.mu.Unlock()
		k.switchTo(p.d, next)
		return
	}

	p.d.state = SendRec
	p.d.msgType = typ
	p.d.buf = msg
	k.listPushTail(&dd.senders, p.d)
	next := k.chooseProc()
	k.mu.Unlock()
	k.switchTo(p.d, next)
}

// Yield implements the YIELD syscall: re-queue the caller at its current
// priority and let the scheduler pick the next process, giving round-
// robin fairness within a priority level.
func (p *Proc) Yield() {
	k := p.k
	k.mu.Lock()
	k.makeReady(p.d, p.d.priority)
	next := k.chooseProc()
	k.mu.Unlock()
	k.switchTo(p.d, next)
}

// Connect implements the CONNECT syscall (spec §4.F): the caller
// registers itself as the handler for irq, raises its own priority to
// PHandler, and enables the IRQ at the NVIC. Connecting a negative
// (CPU-exception) vector is a programming error (spec §7) and panics.
func (p *Proc) Connect(irq int) {
	k := p.k
	if irq < 0 || irq >= len(k.irqTable) {
		k.kpanic("connect: invalid irq %d", irq)
	}
	k.mu.Lock()
	k.irqTable[irq] = p.d.pid
	p.d.priority = PHandler
	k.mu.Unlock()
	k.nvic.EnableIRQ(irq)
}

// Priority implements the PRIORITY syscall: a process may lower or raise
// its own priority among the real (non-idle) levels. Any other value is
// a programming error.
func (p *Proc) Priority(level int) {
	k := p.k
	if level < PHandler || level > PLow {
		k.kpanic("priority: invalid level %d", level)
	}
	k.mu.Lock()
	p.d.priority = level
	k.mu.Unlock()
}

// Dump implements the DUMP syscall: see dump.go.
func (p *Proc) Dump() {
	p.k.dump()
}

// Exit implements the EXIT syscall: mark the caller Dead, let the
// scheduler pick a replacement, and terminate the calling goroutine
// immediately via runtime.Goexit so that — exactly as on real hardware —
// exit never returns to its caller, even if called mid-body rather than
// by falling off the end of it. A dead process is never re-queued or
// reused (spec §1 Non-goals: no resource reclamation).
func (p *Proc) Exit() {
	k := p.k
	k.mu.Lock()
	p.d.state = Dead
	next := k.chooseProc()
	k.mu.Unlock()
	if next != p.d {
		next.resume <- struct{}{}
	}
	runtime.Goexit()
}
