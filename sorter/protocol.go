package sorter

import (
	"reflect"

	"github.com/sarchlab/akita/v4/sim"
)

// ConfigOp is the operation code of a configuration request.
type ConfigOp uint32

// Operation codes that the configuration port understands. All other codes
// are reserved and rejected with StatusTargetError.
const (
	OpRead  ConfigOp = 0
	OpWrite ConfigOp = 1
)

// ConfigStatus is the completion status of a configuration request.
type ConfigStatus uint32

// Status codes carried in configuration responses.
const (
	StatusOK          ConfigStatus = 0
	StatusAddrError   ConfigStatus = 1
	StatusTargetError ConfigStatus = 2
)

// A ConfigReq reads or writes one register of the sorter.
type ConfigReq struct {
	sim.MsgMeta

	TransactionID uint32
	Address       uint64
	Op            ConfigOp
	Data          uint32
}

// Meta returns the metadata of the message
func (r *ConfigReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a copy of the ConfigReq with a new ID
func (r *ConfigReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// ConfigReqBuilder can build configuration requests.
type ConfigReqBuilder struct {
	src, dst      sim.RemotePort
	transactionID uint32
	address       uint64
	op            ConfigOp
	data          uint32
}

// MakeConfigReqBuilder creates a new ConfigReqBuilder.
func MakeConfigReqBuilder() ConfigReqBuilder {
	return ConfigReqBuilder{}
}

// WithSrc sets the source of the request to build.
func (b ConfigReqBuilder) WithSrc(src sim.RemotePort) ConfigReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b ConfigReqBuilder) WithDst(dst sim.RemotePort) ConfigReqBuilder {
	b.dst = dst
	return b
}

// WithTransactionID sets the caller-chosen ID that is echoed in the
// response.
func (b ConfigReqBuilder) WithTransactionID(id uint32) ConfigReqBuilder {
	b.transactionID = id
	return b
}

// WithAddress sets the byte address of the register to access.
func (b ConfigReqBuilder) WithAddress(address uint64) ConfigReqBuilder {
	b.address = address
	return b
}

// WithOp sets the operation of the request to build.
func (b ConfigReqBuilder) WithOp(op ConfigOp) ConfigReqBuilder {
	b.op = op
	return b
}

// WithData sets the value to write. It is ignored for reads.
func (b ConfigReqBuilder) WithData(data uint32) ConfigReqBuilder {
	b.data = data
	return b
}

// Build creates a new ConfigReq.
func (b ConfigReqBuilder) Build() *ConfigReq {
	r := &ConfigReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficClass = reflect.TypeOf(ConfigReq{}).String()
	r.TransactionID = b.transactionID
	r.Address = b.address
	r.Op = b.op
	r.Data = b.data

	return r
}

// A ConfigRsp completes one configuration request. Every request gets
// exactly one response, in request order.
type ConfigRsp struct {
	sim.MsgMeta

	RespondTo     string
	TransactionID uint32
	Data          uint32
	Status        ConfigStatus
	Op            ConfigOp
}

// Meta returns the metadata of the message
func (r *ConfigRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a copy of the ConfigRsp with a new ID
func (r *ConfigRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request that the response is responding to.
func (r *ConfigRsp) GetRspTo() string {
	return r.RespondTo
}

// ConfigRspBuilder can build configuration responses.
type ConfigRspBuilder struct {
	src, dst      sim.RemotePort
	rspTo         string
	transactionID uint32
	data          uint32
	status        ConfigStatus
	op            ConfigOp
}

// MakeConfigRspBuilder creates a new ConfigRspBuilder.
func MakeConfigRspBuilder() ConfigRspBuilder {
	return ConfigRspBuilder{}
}

// WithSrc sets the source of the response to build.
func (b ConfigRspBuilder) WithSrc(src sim.RemotePort) ConfigRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b ConfigRspBuilder) WithDst(dst sim.RemotePort) ConfigRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets ID of the request that the response to build is replying to.
func (b ConfigRspBuilder) WithRspTo(id string) ConfigRspBuilder {
	b.rspTo = id
	return b
}

// WithTransactionID sets the transaction ID echoed from the request.
func (b ConfigRspBuilder) WithTransactionID(id uint32) ConfigRspBuilder {
	b.transactionID = id
	return b
}

// WithData sets the value read from the register. It is zero for writes and
// failed reads.
func (b ConfigRspBuilder) WithData(data uint32) ConfigRspBuilder {
	b.data = data
	return b
}

// WithStatus sets the completion status of the response to build.
func (b ConfigRspBuilder) WithStatus(status ConfigStatus) ConfigRspBuilder {
	b.status = status
	return b
}

// WithOp sets the operation echoed from the request.
func (b ConfigRspBuilder) WithOp(op ConfigOp) ConfigRspBuilder {
	b.op = op
	return b
}

// Build creates a new ConfigRsp.
func (b ConfigRspBuilder) Build() *ConfigRsp {
	r := &ConfigRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficClass = reflect.TypeOf(ConfigRsp{}).String()
	r.RespondTo = b.rspTo
	r.TransactionID = b.transactionID
	r.Data = b.data
	r.Status = b.status
	r.Op = b.op

	return r
}
