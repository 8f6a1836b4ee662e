package hostsim

import (
	"github.com/warthog618/go-gpiocdev"

	kernel "github.com/nimbusos/vela"
)

// GPIO is a real GPIO line watched for edge events and wired up as a
// second, independent interrupt source — useful for exercising priority
// preemption and pending-flag coalescing (kernel §4.F) against two
// devices that can fire concurrently with the UART. Grounded on the
// pack's array-of-handlers-indexed-by-interrupt-ID NVIC idiom, applied
// to a real Linux GPIO chip via go-gpiocdev.
type GPIO struct {
	line *gpiocdev.Line
	k    *kernel.Kernel
	ctrl *Controller
	irq  int
}

// OpenGPIO watches offset on chip for both edges and delivers IRQ irq to
// k on every event. ctrl must be the same Controller installed as k's
// hal.NVIC: each edge latches irq there before calling k.Dispatch.
func OpenGPIO(k *kernel.Kernel, ctrl *Controller, chip string, offset, irq int) (*GPIO, error) {
	g := &GPIO{k: k, ctrl: ctrl, irq: irq}
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(g.onEvent),
	)
	if err != nil {
		return nil, err
	}
	g.line = line
	return g, nil
}

func (g *GPIO) onEvent(gpiocdev.LineEvent) {
	g.ctrl.SetActiveIRQ(g.irq)
	g.k.Dispatch()
}

// Close releases the GPIO line.
func (g *GPIO) Close() error {
	return g.line.Close()
}
