// Package sorter provides a register-mapped controller that sorts an array
// of 32-bit integers in memory with bottom-up merge sort. The controller
// does not touch the data itself. It dispatches merge tasks to a merge
// engine and tracks their completion.
package sorter

import (
	"github.com/sarchlab/akita/v4/sim"
)

// A Comp is the sort controller. Software programs it through the
// configuration registers on its Ctrl port. Writing a non-zero value to the
// run register starts a sort over the array described by the addrA, addrB,
// and count registers. The controller clears run when the sort completes
// and leaves the error code in the err register.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	ctrlPort   sim.Port
	enginePort sim.Port
	engineDst  sim.RemotePort

	regs registerFile

	state       sortState
	span        uint64
	offset      uint64
	srcAddr     uint64
	dstAddr     uint64
	passCount   int
	outstanding int
	failed      bool
	nextTaskID  int
}

// Tick updates the component state.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// Reset returns the sorter to its power-on state. All registers read zero
// afterwards and any run in progress is abandoned. Responses from tasks
// dispatched before the reset are dropped when they arrive.
func (c *Comp) Reset() {
	c.regs.reset()
	c.state = stateIdle
	c.span = 0
	c.offset = 0
	c.srcAddr = 0
	c.dstAddr = 0
	c.passCount = 0
	c.outstanding = 0
	c.failed = false

	for c.ctrlPort.RetrieveIncoming() != nil {
	}

	for c.enginePort.RetrieveIncoming() != nil {
	}
}

// State reports the current controller state for inspection tools.
func (c *Comp) State() map[string]any {
	return map[string]any{
		"state":       c.state.String(),
		"run":         c.regs.run,
		"addrA":       c.regs.addrA,
		"addrB":       c.regs.addrB,
		"count":       c.regs.count,
		"err":         c.regs.errCode,
		"span":        c.span,
		"offset":      c.offset,
		"pass":        c.passCount,
		"outstanding": c.outstanding,
	}
}
