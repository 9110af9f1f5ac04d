package main

import (
	"log"
	"reflect"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/sortaccel/sorter"
)

type driverState int

const (
	driverStateProgram driverState = iota
	driverStatePollRun
	driverStateReadErr
	driverStateDone
)

type regWrite struct {
	offset uint64
	value  uint32
}

// A driver programs the sorter through its configuration registers, starts a
// run, and polls the run register until the sorter reports completion. It
// keeps at most one configuration request in flight.
type driver struct {
	*sim.TickingComponent

	port      sim.Port
	sorterDst sim.RemotePort
	baseAddr  uint64

	writes      []regWrite
	writeIdx    int
	state       driverState
	pending     bool
	nextTransID uint32

	ErrCode uint32
	Done    bool
}

func newDriver(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	sorterDst sim.RemotePort,
	baseAddr uint64,
	writes []regWrite,
) *driver {
	d := &driver{
		sorterDst: sorterDst,
		baseAddr:  baseAddr,
		writes:    writes,
	}

	d.TickingComponent = sim.NewTickingComponent(name, engine, freq, d)
	d.port = sim.NewPort(d, 1, 1, name+".CtrlPort")
	d.AddPort("Ctrl", d.port)

	return d
}

// Tick updates the driver state.
func (d *driver) Tick() bool {
	madeProgress := d.processRsps()

	if d.pending || d.state == driverStateDone {
		return madeProgress
	}

	madeProgress = d.issue() || madeProgress

	return madeProgress
}

func (d *driver) processRsps() bool {
	item := d.port.RetrieveIncoming()
	if item == nil {
		return false
	}

	rsp, ok := item.(*sorter.ConfigRsp)
	if !ok {
		log.Panicf("cannot process response of type %s", reflect.TypeOf(item))
	}

	if rsp.Status != sorter.StatusOK {
		log.Panicf("register access failed with status %d", rsp.Status)
	}

	d.pending = false

	switch d.state {
	case driverStateProgram:
		if d.writeIdx == len(d.writes) {
			d.state = driverStatePollRun
		}
	case driverStatePollRun:
		if rsp.Data == 0 {
			d.state = driverStateReadErr
		}
	case driverStateReadErr:
		d.ErrCode = rsp.Data
		d.Done = true
		d.state = driverStateDone
	}

	return true
}

func (d *driver) issue() bool {
	var req *sorter.ConfigReq

	switch d.state {
	case driverStateProgram:
		w := d.writes[d.writeIdx]
		req = sorter.MakeConfigReqBuilder().
			WithSrc(d.port.AsRemote()).
			WithDst(d.sorterDst).
			WithTransactionID(d.nextTransID).
			WithAddress(d.baseAddr + w.offset).
			WithOp(sorter.OpWrite).
			WithData(w.value).
			Build()
	case driverStatePollRun:
		req = sorter.MakeConfigReqBuilder().
			WithSrc(d.port.AsRemote()).
			WithDst(d.sorterDst).
			WithTransactionID(d.nextTransID).
			WithAddress(d.baseAddr + sorter.RegRunOffset).
			WithOp(sorter.OpRead).
			Build()
	case driverStateReadErr:
		req = sorter.MakeConfigReqBuilder().
			WithSrc(d.port.AsRemote()).
			WithDst(d.sorterDst).
			WithTransactionID(d.nextTransID).
			WithAddress(d.baseAddr + sorter.RegErrOffset).
			WithOp(sorter.OpRead).
			Build()
	default:
		return false
	}

	err := d.port.Send(req)
	if err != nil {
		return false
	}

	d.nextTransID++
	d.pending = true

	if d.state == driverStateProgram {
		d.writeIdx++
	}

	return true
}
