package sorter

import (
	"github.com/sarchlab/akita/v4/sim"
)

// A Builder can build sort controllers.
type Builder struct {
	engine        sim.Engine
	freq          sim.Freq
	baseAddress   uint64
	engineDst     sim.RemotePort
	ctrlBufSize   int
	engineBufSize int
}

// MakeBuilder creates a new Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:          1 * sim.GHz,
		ctrlBufSize:   4,
		engineBufSize: 16,
	}
}

// WithEngine sets the event-driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the sorter works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithBaseAddress sets the byte address of the first register.
func (b Builder) WithBaseAddress(addr uint64) Builder {
	b.baseAddress = addr
	return b
}

// WithEngineDst sets the control port of the merge engine that the sorter
// dispatches tasks to.
func (b Builder) WithEngineDst(dst sim.RemotePort) Builder {
	b.engineDst = dst
	return b
}

// WithCtrlBufSize sets the number of configuration requests that the control
// port can hold.
func (b Builder) WithCtrlBufSize(size int) Builder {
	b.ctrlBufSize = size
	return b
}

// WithEngineBufSize sets the buffer capacity of the port that talks to the
// merge engine.
func (b Builder) WithEngineBufSize(size int) Builder {
	b.engineBufSize = size
	return b
}

// Build creates a sort controller with the given name.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		engineDst: b.engineDst,
	}
	c.regs.baseAddress = b.baseAddress

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.AddMiddleware(&ctrlMiddleware{Comp: c})
	c.AddMiddleware(&sortMiddleware{Comp: c})

	c.ctrlPort = sim.NewPort(c, b.ctrlBufSize, b.ctrlBufSize, name+".CtrlPort")
	c.AddPort("Ctrl", c.ctrlPort)

	c.enginePort = sim.NewPort(
		c, b.engineBufSize, b.engineBufSize, name+".EnginePort")
	c.AddPort("Engine", c.enginePort)

	return c
}
