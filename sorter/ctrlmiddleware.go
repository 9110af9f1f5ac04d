package sorter

import (
	"log"
	"reflect"
)

// ctrlMiddleware serves the configuration register protocol. It completes
// at most one request per cycle, in arrival order, and keeps serving
// requests while a sort is running.
type ctrlMiddleware struct {
	*Comp
}

func (m *ctrlMiddleware) Tick() bool {
	item := m.ctrlPort.PeekIncoming()
	if item == nil {
		return false
	}

	req, ok := item.(*ConfigReq)
	if !ok {
		log.Panicf("cannot process request of type %s", reflect.TypeOf(item))
	}

	rsp := m.execute(req)

	err := m.ctrlPort.Send(rsp)
	if err != nil {
		return false
	}

	m.ctrlPort.RetrieveIncoming()

	return true
}

func (m *ctrlMiddleware) execute(req *ConfigReq) *ConfigRsp {
	data := uint32(0)
	status := StatusOK

	switch req.Op {
	case OpRead:
		index, ok := m.regs.decode(req.Address)
		if ok {
			data = m.regs.read(index)
		} else {
			status = StatusAddrError
		}
	case OpWrite:
		index, ok := m.regs.decode(req.Address)
		if ok {
			m.regs.write(index, req.Data)
		} else {
			status = StatusAddrError
		}
	default:
		status = StatusTargetError
	}

	return MakeConfigRspBuilder().
		WithSrc(m.ctrlPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithTransactionID(req.TransactionID).
		WithData(data).
		WithStatus(status).
		WithOp(req.Op).
		Build()
}
