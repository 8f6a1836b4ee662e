package hostsim

import (
	"sync/atomic"
	"time"

	serial "github.com/daedaluz/goserial"

	kernel "github.com/nimbusos/vela"
)

// uartPollInterval bounds how long a single ReadTimeout call blocks
// before re-checking whether the UART has been closed.
const uartPollInterval = 200 * time.Millisecond

// UART is a real serial device (or PTY) wired up as a single-IRQ
// interrupt source: it reads arriving bytes one at a time and calls
// Dispatch once per byte for the configured IRQ number, standing in for a
// UART RX interrupt. Grounded on Daedaluz-goserial's Port API.
type UART struct {
	port   *serial.Port
	k      *kernel.Kernel
	ctrl   *Controller
	irq    int
	closed atomic.Bool
	done   chan struct{}
}

// OpenUART opens device (a tty or PTY path), configures it for raw mode
// at baud, and starts delivering IRQ irq to k whenever bytes arrive. ctrl
// must be the same Controller installed as k's hal.NVIC: each arrival
// latches irq there before calling k.Dispatch, standing in for hardware
// presenting the active vector number on IRQ entry.
func OpenUART(k *kernel.Kernel, ctrl *Controller, device string, irq int, baud uint32) (*UART, error) {
	port, err := serial.Open(device, serial.NewOptions())
	if err != nil {
		return nil, err
	}
	if err := port.MakeRaw(); err != nil {
		port.Close()
		return nil, err
	}
	if attrs, err := port.GetAttr2(); err == nil {
		attrs.SetCustomSpeed(baud)
		_ = port.SetAttr2(serial.TCSANOW, attrs)
	}

	u := &UART{port: port, k: k, ctrl: ctrl, irq: irq, done: make(chan struct{})}
	go u.run()
	return u, nil
}

func (u *UART) run() {
	buf := make([]byte, 1)
	for !u.closed.Load() {
		n, err := u.port.ReadTimeout(buf, uartPollInterval)
		if err != nil || n == 0 {
			continue
		}
		u.ctrl.SetActiveIRQ(u.irq)
		u.k.Dispatch()
	}
	close(u.done)
}

// Write sends bytes out the UART, unrelated to the interrupt path (a
// handler process drains RX via the kernel message it receives and may
// reply by writing here).
func (u *UART) Write(p []byte) (int, error) {
	return u.port.Write(p)
}

// Close stops delivering interrupts and releases the underlying device.
func (u *UART) Close() error {
	u.closed.Store(true)
	<-u.done
	return u.port.Close()
}
