// Package kernel implements the core of a small preemptive multitasking
// micro-kernel for a single-core, resource-constrained target: a fixed
// process table, three-level priority ready queues, a synchronous
// rendezvous message protocol, and an interrupt-to-message bridge.
//
// Processes are plain Go functions (ProcessBody) run one per goroutine.
// The kernel serializes all scheduling decisions behind a single mutex,
// standing in for "single core, hardware-serialized, interrupts masked
// during kernel state mutation" — at most one process is ever scheduled
// to run at a time, handed off via a synchronous per-process resume gate.
// See SPEC_FULL.md for the full mapping from the original register/stack
// model onto goroutines.
package kernel
