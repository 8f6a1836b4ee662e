package kernel_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kernel "github.com/nimbusos/vela"
)

// TestPingReply is spec §8 scenario 1: A sendrecs to B, B replies, A
// terminates, B is left blocked Receiving again.
func TestPingReply(t *testing.T) {
	const ping = 10
	k := kernel.NewKernel()
	results := make(chan kernel.Message, 1)

	b := k.Start("B", func(p *kernel.Proc, _ int) {
		for {
			var req kernel.Message
			p.Receive(ping, &req)
			var reply kernel.Message
			p.Send(req.Sender, kernel.Reply, &reply)
		}
	}, 0, 256)

	k.Start("A", func(p *kernel.Proc, arg int) {
		var reply kernel.Message
		p.SendRec(kernel.PID(arg), ping, &reply)
		results <- reply
	}, int(b), 256)

	go k.OSStart()

	select {
	case m := <-results:
		assert.Equal(t, kernel.Reply, m.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for A's reply")
	}
}

// TestInterruptPendingBeforeReceive is spec §8 scenario 2 without real
// hardware: an interrupt delivered while the destination is busy with
// non-receive code must not be lost, only deferred to its next receive.
func TestInterruptPendingBeforeReceive(t *testing.T) {
	k := kernel.NewKernel()
	gotReceive := make(chan struct{})
	results := make(chan kernel.Message, 1)

	pid := k.Start("H", func(p *kernel.Proc, _ int) {
		close(gotReceive)
		time.Sleep(20 * time.Millisecond)
		var msg kernel.Message
		p.Receive(kernel.Any, &msg)
		results <- msg
	}, 0, 256)

	go k.OSStart()

	select {
	case <-gotReceive:
	case <-time.After(2 * time.Second):
		t.Fatal("H never started running")
	}
	k.Interrupt(pid)

	select {
	case m := <-results:
		assert.Equal(t, kernel.Hardware, m.Sender)
		assert.Equal(t, kernel.Interrupt, m.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("pending interrupt was never observed")
	}
}

// TestFairnessWithinPriority is spec §8 scenario 6: processes started at
// the same priority cycle through in insertion order across successive
// yields, never starving one another.
func TestFairnessWithinPriority(t *testing.T) {
	const nprocs, rounds = 3, 3
	k := kernel.NewKernel()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(nprocs)

	for i := 0; i < nprocs; i++ {
		i := i
		k.Start(fmt.Sprintf("p%d", i), func(p *kernel.Proc, _ int) {
			for r := 0; r < rounds; r++ {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				p.Yield()
			}
			wg.Done()
		}, 0, 256)
	}

	go k.OSStart()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for all processes to finish")
	}

	expected := make([]int, 0, nprocs*rounds)
	for r := 0; r < rounds; r++ {
		for i := 0; i < nprocs; i++ {
			expected = append(expected, i)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, expected, order)
}

// TestSendPanicsOnOutOfRangeDestination is spec §8 scenario 5 / §7: an
// out-of-range destination pid is a programming error, not a runtime
// condition the kernel degrades gracefully from.
func TestSendPanicsOnOutOfRangeDestination(t *testing.T) {
	k := kernel.NewKernel()
	recovered := make(chan any, 1)

	k.Start("p", func(p *kernel.Proc, _ int) {
		defer func() { recovered <- recover() }()
		var msg kernel.Message
		p.Send(99, 0, &msg)
	}, 0, 256)

	go k.OSStart()

	select {
	case r := <-recovered:
		require.NotNil(t, r)
		kerr, ok := r.(*kernel.KernelError)
		require.True(t, ok, "expected *kernel.KernelError, got %T", r)
		assert.Contains(t, kerr.Error(), "99")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for panic")
	}
}

// TestExitNeverReturnsToCaller exercises spec §4.H: calling Exit mid-body
// terminates the process immediately, never falling through to code after
// the call.
func TestExitNeverReturnsToCaller(t *testing.T) {
	k := kernel.NewKernel()
	reachedAfterExit := make(chan struct{}, 1)

	k.Start("p", func(p *kernel.Proc, _ int) {
		p.Exit()
		reachedAfterExit <- struct{}{}
	}, 0, 256)

	go k.OSStart()

	select {
	case <-reachedAfterExit:
		t.Fatal("code after Exit() ran")
	case <-time.After(100 * time.Millisecond):
	}
}
