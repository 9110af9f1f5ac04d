// Package mergeengine provides a component that merges two adjacent sorted
// runs held in memory into a single sorted run.
package mergeengine

import (
	"encoding/binary"
	"log"
	"reflect"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/sortaccel/mem"
)

const elemSize = 4

type taskPhase int

const (
	taskPhaseRead taskPhase = iota
	taskPhaseWrite
	taskPhaseRespond
)

// A taskTransaction tracks one in-flight merge task. The engine first reads
// both runs element by element, then merges them in order and writes the
// result back, then responds to the controller.
type taskTransaction struct {
	req   *MergeTaskReq
	phase taskPhase

	readBegin uint64
	readEnd   uint64
	mid       uint64

	nextReadIdx  uint64
	pendingRead  map[string]uint64
	values       map[uint64]int32
	merged       []int32
	nextWriteIdx uint64
	pendingWrite map[string]struct{}
}

// A Comp is a merge engine. It accepts merge tasks on its CtrlPort, performs
// the data movement through its MemPort, and acknowledges each task with a
// MergeRsp. A task that names a run outside the valid element range or
// outside the engine's address reach fails without touching memory.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	ctrlPort sim.Port
	memPort  sim.Port

	memPortMapper mem.AddressToPortMapper
	maxInflight   int
	memLimit      uint64

	trans []*taskTransaction
}

// Tick updates the component state.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// Reset drops all in-flight tasks and pending requests without responding.
func (c *Comp) Reset() {
	c.trans = nil

	for c.ctrlPort.RetrieveIncoming() != nil {
	}

	for c.memPort.RetrieveIncoming() != nil {
	}
}

type middleware struct {
	*Comp
}

func (m *middleware) Tick() bool {
	madeProgress := false

	madeProgress = m.respond() || madeProgress
	madeProgress = m.processMemRsps() || madeProgress
	madeProgress = m.issueWrites() || madeProgress
	madeProgress = m.issueReads() || madeProgress
	madeProgress = m.parseNewTask() || madeProgress

	return madeProgress
}

func (m *middleware) parseNewTask() bool {
	if len(m.trans) >= m.maxInflight {
		return false
	}

	item := m.ctrlPort.PeekIncoming()
	if item == nil {
		return false
	}

	req, ok := item.(*MergeTaskReq)
	if !ok {
		log.Panicf("cannot process request of type %s", reflect.TypeOf(item))
	}

	trans := m.createTransaction(req)

	m.ctrlPort.RetrieveIncoming()
	m.trans = append(m.trans, trans)

	return true
}

func (m *middleware) createTransaction(req *MergeTaskReq) *taskTransaction {
	trans := &taskTransaction{
		req:          req,
		pendingRead:  make(map[string]uint64),
		values:       make(map[uint64]int32),
		pendingWrite: make(map[string]struct{}),
	}

	if !m.taskIsValid(req) {
		trans.phase = taskPhaseRespond
		return trans
	}

	trans.readBegin = req.Offset
	trans.mid = min(req.Offset+req.Span, req.TotalCount)
	trans.readEnd = min(req.Offset+2*req.Span, req.TotalCount)
	trans.nextReadIdx = trans.readBegin
	trans.nextWriteIdx = trans.readBegin
	trans.phase = taskPhaseRead

	if trans.readBegin == trans.readEnd {
		trans.phase = taskPhaseRespond
	}

	return trans
}

func (m *middleware) taskIsValid(req *MergeTaskReq) bool {
	if req.Span == 0 {
		return false
	}

	if req.Offset >= req.TotalCount {
		return false
	}

	lastByte := req.TotalCount * elemSize
	if req.SrcAddress+lastByte > m.memLimit {
		return false
	}

	if req.DstAddress+lastByte > m.memLimit {
		return false
	}

	return true
}

func (m *middleware) issueReads() bool {
	madeProgress := false

	for _, trans := range m.trans {
		if trans.phase != taskPhaseRead {
			continue
		}

		for trans.nextReadIdx < trans.readEnd {
			addr := trans.req.SrcAddress + trans.nextReadIdx*elemSize
			req := mem.ReadReqBuilder{}.
				WithSrc(m.memPort.AsRemote()).
				WithDst(m.memPortMapper.Find(addr)).
				WithAddress(addr).
				WithByteSize(elemSize).
				Build()

			err := m.memPort.Send(req)
			if err != nil {
				return madeProgress
			}

			trans.pendingRead[req.ID] = trans.nextReadIdx
			trans.nextReadIdx++
			madeProgress = true
		}
	}

	return madeProgress
}

func (m *middleware) issueWrites() bool {
	madeProgress := false

	for _, trans := range m.trans {
		if trans.phase != taskPhaseWrite {
			continue
		}

		for trans.nextWriteIdx < trans.readEnd {
			value := trans.merged[trans.nextWriteIdx-trans.readBegin]
			data := make([]byte, elemSize)
			binary.LittleEndian.PutUint32(data, uint32(value))

			addr := trans.req.DstAddress + trans.nextWriteIdx*elemSize
			req := mem.WriteReqBuilder{}.
				WithSrc(m.memPort.AsRemote()).
				WithDst(m.memPortMapper.Find(addr)).
				WithAddress(addr).
				WithData(data).
				Build()

			err := m.memPort.Send(req)
			if err != nil {
				return madeProgress
			}

			trans.pendingWrite[req.ID] = struct{}{}
			trans.nextWriteIdx++
			madeProgress = true
		}
	}

	return madeProgress
}

func (m *middleware) processMemRsps() bool {
	madeProgress := false

	for {
		item := m.memPort.PeekIncoming()
		if item == nil {
			return madeProgress
		}

		switch rsp := item.(type) {
		case *mem.DataReadyRsp:
			m.processDataReady(rsp)
		case *mem.WriteDoneRsp:
			m.processWriteDone(rsp)
		default:
			log.Panicf("cannot process response of type %s",
				reflect.TypeOf(item))
		}

		m.memPort.RetrieveIncoming()
		madeProgress = true
	}
}

func (m *middleware) processDataReady(rsp *mem.DataReadyRsp) {
	trans := m.findTransByReadID(rsp.RespondTo)
	if trans == nil {
		log.Panicf("cannot find transaction for read %s", rsp.RespondTo)
	}

	idx := trans.pendingRead[rsp.RespondTo]
	delete(trans.pendingRead, rsp.RespondTo)

	trans.values[idx] = int32(binary.LittleEndian.Uint32(rsp.Data))

	if trans.nextReadIdx == trans.readEnd && len(trans.pendingRead) == 0 {
		trans.merged = mergeRuns(trans)
		trans.phase = taskPhaseWrite
	}
}

func (m *middleware) processWriteDone(rsp *mem.WriteDoneRsp) {
	trans := m.findTransByWriteID(rsp.RespondTo)
	if trans == nil {
		log.Panicf("cannot find transaction for write %s", rsp.RespondTo)
	}

	delete(trans.pendingWrite, rsp.RespondTo)

	if trans.nextWriteIdx == trans.readEnd && len(trans.pendingWrite) == 0 {
		trans.phase = taskPhaseRespond
	}
}

func (m *middleware) respond() bool {
	madeProgress := false

	for len(m.trans) > 0 {
		trans := m.trans[0]
		if trans.phase != taskPhaseRespond {
			return madeProgress
		}

		fail := !m.taskIsValid(trans.req)
		rsp := MakeMergeRspBuilder().
			WithSrc(m.ctrlPort.AsRemote()).
			WithDst(trans.req.Src).
			WithRspTo(trans.req.ID).
			WithFail(fail).
			Build()

		err := m.ctrlPort.Send(rsp)
		if err != nil {
			return madeProgress
		}

		m.trans = m.trans[1:]
		madeProgress = true
	}

	return madeProgress
}

func (m *middleware) findTransByReadID(id string) *taskTransaction {
	for _, trans := range m.trans {
		if _, ok := trans.pendingRead[id]; ok {
			return trans
		}
	}

	return nil
}

func (m *middleware) findTransByWriteID(id string) *taskTransaction {
	for _, trans := range m.trans {
		if _, ok := trans.pendingWrite[id]; ok {
			return trans
		}
	}

	return nil
}

// mergeRuns merges the two collected runs of the transaction into one sorted
// slice, in ascending order. The merge is stable with respect to the left
// run.
func mergeRuns(trans *taskTransaction) []int32 {
	merged := make([]int32, 0, trans.readEnd-trans.readBegin)

	left := trans.readBegin
	right := trans.mid

	for left < trans.mid && right < trans.readEnd {
		if trans.values[left] <= trans.values[right] {
			merged = append(merged, trans.values[left])
			left++
		} else {
			merged = append(merged, trans.values[right])
			right++
		}
	}

	for left < trans.mid {
		merged = append(merged, trans.values[left])
		left++
	}

	for right < trans.readEnd {
		merged = append(merged, trans.values[right])
		right++
	}

	return merged
}
