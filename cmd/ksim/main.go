// Command ksim is a host-mode demonstration of the kernel: it wires a
// real UART (or PTY) and, optionally, a real GPIO line up as interrupt
// sources through package hostsim, starts a small set of ordinary
// rendezvous-exchanging processes, and runs the kernel until killed.
//
// It stands in for the board-specific "valentine" application that would
// normally sit on top of the kernel core: everything it does is host
// plumbing, nothing here is part of the kernel itself.
package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	kernel "github.com/nimbusos/vela"
	"github.com/nimbusos/vela/hostsim"
)

const (
	uartIRQ = 1
	gpioIRQ = 2

	pingType = 1
)

func main() {
	uartDevice := pflag.StringP("uart", "u", "", "Path of a tty or PTY to watch for RX interrupts")
	baud := pflag.UintP("baud", "b", 9600, "UART baud rate")
	gpioChip := pflag.StringP("gpio-chip", "g", "", "GPIO chip device, e.g. /dev/gpiochip0")
	gpioOffset := pflag.IntP("gpio-offset", "o", 0, "GPIO line offset to watch for edge interrupts")
	verbose := pflag.BoolP("verbose", "v", false, "Debug-level kernel logging")
	help := pflag.BoolP("help", "h", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ksim - host-mode demonstration of the vela kernel\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	level := charmlog.InfoLevel
	if *verbose {
		level = charmlog.DebugLevel
	}
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "ksim",
	})
	logger.SetLevel(level)

	ctrl := hostsim.NewController()
	k := kernel.NewKernel(
		kernel.WithNVIC(ctrl),
		kernel.WithIdleControl(ctrl),
		kernel.WithLogger(logger),
	)

	pong := k.Start("pong", pongBody, 0, 512)
	k.Start("ping", pingBody, int(pong), 512)

	if *uartDevice != "" {
		u, err := hostsim.OpenUART(k, ctrl, *uartDevice, uartIRQ, uint32(*baud))
		if err != nil {
			logger.Fatal("failed to open UART", "device", *uartDevice, "err", err)
		}
		defer u.Close()
		k.Start("uart-handler", uartHandlerBody, 0, 512)
	}

	if *gpioChip != "" {
		g, err := hostsim.OpenGPIO(k, ctrl, *gpioChip, *gpioOffset, gpioIRQ)
		if err != nil {
			logger.Fatal("failed to open GPIO line", "chip", *gpioChip, "offset", *gpioOffset, "err", err)
		}
		defer g.Close()
		k.Start("gpio-handler", gpioHandlerBody, 0, 512)
	}

	k.OSStart()
}

// pingBody repeatedly sendrecs to the pid given as its start argument and
// dumps the process table every ten exchanges, demonstrating the
// rendezvous IPC path and the DUMP syscall side by side.
func pingBody(p *kernel.Proc, arg int) {
	dest := kernel.PID(arg)
	for i := 0; ; i++ {
		var reply kernel.Message
		p.SendRec(dest, pingType, &reply)
		if i%10 == 0 {
			p.Dump()
		}
	}
}

// pongBody answers every ping with an empty reply, forever.
func pongBody(p *kernel.Proc, _ int) {
	for {
		var req kernel.Message
		p.Receive(pingType, &req)
		var reply kernel.Message
		p.Send(req.Sender, kernel.Reply, &reply)
	}
}

// uartHandlerBody connects to the UART's IRQ and receives every
// byte-arrival interrupt it is handed, discarding it.
func uartHandlerBody(p *kernel.Proc, _ int) {
	p.Connect(uartIRQ)
	for {
		var msg kernel.Message
		p.Receive(kernel.Any, &msg)
	}
}

// gpioHandlerBody connects to the GPIO line's IRQ and receives every edge
// event interrupt it is handed, discarding it.
func gpioHandlerBody(p *kernel.Proc, _ int) {
	p.Connect(gpioIRQ)
	for {
		var msg kernel.Message
		p.Receive(kernel.Any, &msg)
	}
}
