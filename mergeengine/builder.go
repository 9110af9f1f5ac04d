package mergeengine

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/sortaccel/mem"
)

// A Builder can build merge engines.
type Builder struct {
	engine        sim.Engine
	freq          sim.Freq
	ctrlBufSize   int
	maxInflight   int
	memLimit      uint64
	memPortMapper mem.AddressToPortMapper
}

// MakeBuilder creates a new Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		ctrlBufSize: 4,
		maxInflight: 16,
		memLimit:    4 * mem.GB,
	}
}

// WithEngine sets the event-driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the merge engine works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithCtrlBufSize sets the number of merge tasks that the control port can
// hold before the sender has to retry.
func (b Builder) WithCtrlBufSize(size int) Builder {
	b.ctrlBufSize = size
	return b
}

// WithMaxInflight sets the number of merge tasks that the engine can work on
// at the same time.
func (b Builder) WithMaxInflight(n int) Builder {
	b.maxInflight = n
	return b
}

// WithMemLimit sets the highest byte address plus one that the engine is
// allowed to touch. Tasks that reach beyond the limit fail.
func (b Builder) WithMemLimit(limit uint64) Builder {
	b.memLimit = limit
	return b
}

// WithMemPortMapper sets the mapper that finds the memory module port for
// each address.
func (b Builder) WithMemPortMapper(m mem.AddressToPortMapper) Builder {
	b.memPortMapper = m
	return b
}

// Build creates a merge engine with the given name.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		memPortMapper: b.memPortMapper,
		maxInflight:   b.maxInflight,
		memLimit:      b.memLimit,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.AddMiddleware(&middleware{Comp: c})

	c.ctrlPort = sim.NewPort(c, b.ctrlBufSize, b.ctrlBufSize, name+".CtrlPort")
	c.AddPort("Ctrl", c.ctrlPort)

	c.memPort = sim.NewPort(c, 16, 16, name+".MemPort")
	c.AddPort("Mem", c.memPort)

	return c
}
