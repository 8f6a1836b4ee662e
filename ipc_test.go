package kernel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// newTestProcess fabricates a process descriptor directly in the table,
// bypassing Start/OSStart, so sender-queue scenarios can be driven
// deterministically instead of racing real goroutines against each other.
func (k *Kernel) newTestProcess(name string, prio int) *Proc {
	pid := k.nprocs
	k.nprocs++
	d := &ProcessDescriptor{
		pid:      pid,
		name:     name,
		priority: prio,
		next:     NoPID,
		senders:  emptyList(),
		resume:   make(chan struct{}, 1),
	}
	d.stackBase = k.arena.allocStack(pid, 64)
	d.stackSize = 64
	k.table[pid] = d
	return &Proc{k: k, d: d}
}

// TestReceiveFiltersByTypeAmongQueuedSenders exercises spec §8 scenario 3:
// two senders of different types queue on the same receiver in arrival
// order; a filtered receive must pick the matching sender out of order,
// and a subsequent ANY receive must still see the one left behind.
func TestReceiveFiltersByTypeAmongQueuedSenders(t *testing.T) {
	k := NewKernel()
	r := k.newTestProcess("R", PLow)
	s1 := k.newTestProcess("S1", PLow)
	s2 := k.newTestProcess("S2", PLow)

	m1, m2 := &Message{}, &Message{}
	s1.d.state, s1.d.msgType, s1.d.buf = Sending, 10, m1
	k.listPushTail(&r.d.senders, s1.d)
	s2.d.state, s2.d.msgType, s2.d.buf = Sending, 20, m2
	k.listPushTail(&r.d.senders, s2.d)

	var got Message
	sender := k.listPopMatching(&r.d.senders, 20)
	require.NotNil(t, sender)
	require.Equal(t, s2.d.pid, sender.pid)
	deliver(&got, sender.buf, sender.pid, sender.msgType)
	require.Equal(t, s2.d.pid, got.Sender)
	require.Equal(t, 20, got.Type)

	sender = k.listPopMatching(&r.d.senders, Any)
	require.NotNil(t, sender)
	require.Equal(t, s1.d.pid, sender.pid)

	require.Nil(t, k.listPopMatching(&r.d.senders, Any))
}

// TestListPopMatchingPreservesFIFOAmongMatchingSubset is the direct
// invariant behind scenario 3: among senders sharing a type, the earliest
// arrival is always the one a matching receive picks.
func TestListPopMatchingPreservesFIFOAmongMatchingSubset(t *testing.T) {
	k := NewKernel()
	r := k.newTestProcess("R", PLow)

	var senders []*Proc
	for i := 0; i < 4; i++ {
		s := k.newTestProcess(fmt.Sprintf("S%d", i), PLow)
		s.d.state, s.d.msgType, s.d.buf = Sending, 7, &Message{}
		k.listPushTail(&r.d.senders, s.d)
		senders = append(senders, s)
	}

	for _, want := range senders {
		got := k.listPopMatching(&r.d.senders, 7)
		require.NotNil(t, got)
		require.Equal(t, want.d.pid, got.pid)
	}
	require.Nil(t, k.listPopMatching(&r.d.senders, 7))
}

// TestReadyQueueFIFOProperty is a property test over makeReady and the
// ready queue chooseProc pops from: whatever order processes are made
// ready in, popping the PLow queue's head must return them in that same
// order (spec §4.C round-robin within a priority level).
func TestReadyQueueFIFOProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := NewKernel()
		n := rapid.IntRange(1, 16).Draw(t, "n")

		descs := make([]*ProcessDescriptor, n)
		for i := 0; i < n; i++ {
			descs[i] = k.newTestProcess(fmt.Sprintf("p%d", i), PLow).d
		}

		order := rapid.Permutation(descs).Draw(t, "order")
		for _, d := range order {
			k.makeReady(d, PLow)
		}

		for _, want := range order {
			got := k.listPopHead(&k.ready[PLow])
			assert.NotNilf(t, got, "ready queue emptied early, expected pid %d", want.pid)
			if got != nil {
				assert.Equal(t, want.pid, got.pid, "fifo order violated")
			}
		}
		assert.Nil(t, k.listPopHead(&k.ready[PLow]), "ready queue not fully drained")
	})
}

// TestMakeReadyIgnoresIdlePriority is the other half of spec §4.C: nothing
// is ever actually queued at PIdle, it is chosen implicitly.
func TestMakeReadyIgnoresIdlePriority(t *testing.T) {
	k := NewKernel()
	d := k.newTestProcess("p", PLow).d
	k.makeReady(d, PIdle)
	require.Equal(t, NoPID, k.ready[PLow].head)
	for lvl := 0; lvl < numPriorities; lvl++ {
		require.Equal(t, NoPID, k.ready[lvl].head)
	}
}
