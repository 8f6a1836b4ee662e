package kernel

// PID names a process; it is equal to the process's index in the
// process table.
type PID int32

// NoPID marks an empty list slot or an unlinked descriptor. It is never
// a valid process id.
const NoPID PID = -1

// NPROCS is the fixed capacity of the process table.
const NPROCS = 32

// Priority levels. 0 is highest. PIdle is a sentinel above the highest
// real level: make_ready silently drops any process targeting it,
// because the idle process is chosen implicitly when every queue is
// empty rather than ever sitting on one.
const (
	PHandler = 0 // raised to by connect(irq)
	PHigh    = 1
	PLow     = 2
	PIdle    = 3
)

const numPriorities = 3 // PHandler, PHigh, PLow each get a ready queue

// State is the life-cycle state of a process descriptor.
type State int

const (
	Dead State = iota
	Active
	Sending
	Receiving
	SendRec
	Idling
)

func (s State) String() string {
	switch s {
	case Dead:
		return "dead"
	case Active:
		return "active"
	case Sending:
		return "sending"
	case Receiving:
		return "receiving"
	case SendRec:
		return "sendrec"
	case Idling:
		return "idling"
	default:
		return "unknown"
	}
}

// list is a FIFO of descriptors threaded through ProcessDescriptor.next.
// Descriptors are referenced by PID rather than by pointer so that a
// descriptor can be threaded onto at most one list at a time without
// aliasing raw pointers across lists (spec §9's recommended translation
// of the original's intrusive-pointer linkage).
type list struct {
	head, tail PID
}

func emptyList() list { return list{head: NoPID, tail: NoPID} }

// ProcessDescriptor is one entry of the process table.
type ProcessDescriptor struct {
	pid      PID
	name     string
	state    State
	priority int

	next PID // linkage for whichever single list this descriptor is on

	senders list // senders queued on this process, in arrival order

	pending bool     // interrupt pending flag
	msgType int      // type this process is sending, or filtering on
	buf     *Message // caller-provided message buffer for the pending op

	stackBase int
	stackSize int
	descSlot  int // offset returned by arena.allocDescriptor

	resume chan struct{} // scheduler wakes this process's goroutine here
}

// PID returns the process's own id.
func (d *ProcessDescriptor) PID() PID { return d.pid }

// Name returns the process's human-readable name.
func (d *ProcessDescriptor) Name() string { return d.name }

// State returns the process's current life-cycle state.
func (d *ProcessDescriptor) State() State { return d.state }
