package sorter

import (
	"log"
	"reflect"

	"github.com/sarchlab/sortaccel/mergeengine"
)

type sortState int

const (
	stateIdle sortState = iota
	statePassInit
	statePassCheck
	statePassBegin
	stateOffsetCheck
	stateDispatch
	statePassEnd
	stateFinalize
	stateDrain
)

func (s sortState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case statePassInit:
		return "pass-init"
	case statePassCheck:
		return "pass-check"
	case statePassBegin:
		return "pass-begin"
	case stateOffsetCheck:
		return "offset-check"
	case stateDispatch:
		return "dispatch"
	case statePassEnd:
		return "pass-end"
	case stateFinalize:
		return "finalize"
	case stateDrain:
		return "drain"
	}

	return "unknown"
}

// sortMiddleware runs the merge-sort state machine. Each cycle it first
// absorbs completions from the merge engine and then takes at most one
// state transition. Passes double the span each time. After each pass the
// source and destination buffers swap, so an odd number of passes ends with
// the sorted data in the scratch buffer and a final whole-range copy moves
// it back.
type sortMiddleware struct {
	*Comp
}

func (m *sortMiddleware) Tick() bool {
	madeProgress := m.processEngineRsps()
	madeProgress = m.step() || madeProgress

	return madeProgress
}

func (m *sortMiddleware) processEngineRsps() bool {
	madeProgress := false

	for {
		item := m.enginePort.PeekIncoming()
		if item == nil {
			return madeProgress
		}

		rsp, ok := item.(*mergeengine.MergeRsp)
		if !ok {
			log.Panicf("cannot process response of type %s",
				reflect.TypeOf(item))
		}

		if m.outstanding > 0 {
			m.outstanding--
			if rsp.Fail {
				m.failed = true
			}
		}

		m.enginePort.RetrieveIncoming()
		madeProgress = true
	}
}

func (m *sortMiddleware) step() bool {
	switch m.state {
	case stateIdle:
		return m.stepIdle()
	case statePassInit:
		return m.stepPassInit()
	case statePassCheck:
		return m.stepPassCheck()
	case statePassBegin:
		return m.stepPassBegin()
	case stateOffsetCheck:
		return m.stepOffsetCheck()
	case stateDispatch:
		return m.stepDispatch()
	case statePassEnd:
		return m.stepPassEnd()
	case stateFinalize:
		return m.stepFinalize()
	case stateDrain:
		return m.stepDrain()
	}

	return false
}

func (m *sortMiddleware) stepIdle() bool {
	if m.regs.run == 0 {
		return false
	}

	m.regs.errCode = ErrNone
	m.state = statePassInit

	return true
}

func (m *sortMiddleware) stepPassInit() bool {
	m.span = 1
	m.passCount = 0
	m.failed = false
	m.srcAddr = uint64(m.regs.addrA)
	m.dstAddr = uint64(m.regs.addrB)
	m.state = statePassCheck

	return true
}

func (m *sortMiddleware) stepPassCheck() bool {
	if m.span >= uint64(m.regs.count) {
		m.state = stateFinalize
	} else {
		m.state = statePassBegin
	}

	return true
}

func (m *sortMiddleware) stepPassBegin() bool {
	m.offset = 0
	m.state = stateOffsetCheck

	return true
}

func (m *sortMiddleware) stepOffsetCheck() bool {
	if m.failed || m.offset >= uint64(m.regs.count) {
		m.state = statePassEnd
	} else {
		m.state = stateDispatch
	}

	return true
}

func (m *sortMiddleware) stepDispatch() bool {
	task := mergeengine.MakeMergeTaskReqBuilder().
		WithSrc(m.enginePort.AsRemote()).
		WithDst(m.engineDst).
		WithTaskID(m.nextTaskID).
		WithOffset(m.offset).
		WithSpan(m.span).
		WithTotalCount(uint64(m.regs.count)).
		WithSrcAddress(m.srcAddr).
		WithDstAddress(m.dstAddr).
		Build()

	err := m.enginePort.Send(task)
	if err != nil {
		return false
	}

	m.nextTaskID++
	m.outstanding++
	m.offset += 2 * m.span
	m.state = stateOffsetCheck

	return true
}

func (m *sortMiddleware) stepPassEnd() bool {
	if m.outstanding > 0 {
		return false
	}

	if m.failed {
		m.state = stateDrain
		return true
	}

	m.span *= 2
	m.passCount++
	m.srcAddr, m.dstAddr = m.dstAddr, m.srcAddr
	m.state = statePassCheck

	return true
}

func (m *sortMiddleware) stepFinalize() bool {
	if m.srcAddr == uint64(m.regs.addrA) {
		m.finishRun()
		return true
	}

	task := mergeengine.MakeMergeTaskReqBuilder().
		WithSrc(m.enginePort.AsRemote()).
		WithDst(m.engineDst).
		WithTaskID(m.nextTaskID).
		WithOffset(0).
		WithSpan(uint64(m.regs.count)).
		WithTotalCount(uint64(m.regs.count)).
		WithSrcAddress(m.srcAddr).
		WithDstAddress(m.dstAddr).
		Build()

	err := m.enginePort.Send(task)
	if err != nil {
		return false
	}

	m.nextTaskID++
	m.outstanding++
	m.state = stateDrain

	return true
}

func (m *sortMiddleware) stepDrain() bool {
	if m.outstanding > 0 {
		return false
	}

	m.finishRun()

	return true
}

func (m *sortMiddleware) finishRun() {
	if m.failed {
		m.regs.errCode = ErrEngineFailure
	}

	m.regs.run = 0
	m.state = stateIdle
}
