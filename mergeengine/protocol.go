package mergeengine

import (
	"reflect"

	"github.com/sarchlab/akita/v4/sim"
)

// A MergeTaskReq asks the merge engine to merge two adjacent sorted runs of
// the source buffer into the destination buffer.
//
// The left run covers elements [Offset, Offset+Span) and the right run
// covers elements [Offset+Span, Offset+2*Span). Both runs are clipped
// against TotalCount, so the right run may be short or absent. A request
// with Offset == 0 and Span >= TotalCount degenerates to a straight copy of
// the whole buffer.
type MergeTaskReq struct {
	sim.MsgMeta

	TaskID     int
	Offset     uint64
	Span       uint64
	TotalCount uint64
	SrcAddress uint64
	DstAddress uint64
}

// Meta returns the metadata of the message
func (r *MergeTaskReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a deep copy of the MergeTaskReq with a new ID
func (r *MergeTaskReq) Clone() sim.Msg {
	b := MakeMergeTaskReqBuilder().
		WithSrc(r.Src).
		WithDst(r.Dst).
		WithTaskID(r.TaskID).
		WithOffset(r.Offset).
		WithSpan(r.Span).
		WithTotalCount(r.TotalCount).
		WithSrcAddress(r.SrcAddress).
		WithDstAddress(r.DstAddress)

	return b.Build()
}

// MergeTaskReqBuilder can build new merge task requests
type MergeTaskReqBuilder struct {
	src, dst   sim.RemotePort
	taskID     int
	offset     uint64
	span       uint64
	totalCount uint64
	srcAddress uint64
	dstAddress uint64
}

// MakeMergeTaskReqBuilder creates a new MergeTaskReqBuilder
func MakeMergeTaskReqBuilder() MergeTaskReqBuilder {
	return MergeTaskReqBuilder{}
}

// WithSrc sets the source port of the message.
func (b MergeTaskReqBuilder) WithSrc(
	src sim.RemotePort,
) MergeTaskReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the message. It should be the
// CtrlPort of the merge engine.
func (b MergeTaskReqBuilder) WithDst(
	dst sim.RemotePort,
) MergeTaskReqBuilder {
	b.dst = dst
	return b
}

// WithTaskID sets the ID of the engine that should run the task.
func (b MergeTaskReqBuilder) WithTaskID(taskID int) MergeTaskReqBuilder {
	b.taskID = taskID
	return b
}

// WithOffset sets the element index of the first element of the left run.
func (b MergeTaskReqBuilder) WithOffset(offset uint64) MergeTaskReqBuilder {
	b.offset = offset
	return b
}

// WithSpan sets the length of each of the two runs to merge.
func (b MergeTaskReqBuilder) WithSpan(span uint64) MergeTaskReqBuilder {
	b.span = span
	return b
}

// WithTotalCount sets the total number of elements in the buffer, which the
// engine uses to clip the runs.
func (b MergeTaskReqBuilder) WithTotalCount(
	totalCount uint64,
) MergeTaskReqBuilder {
	b.totalCount = totalCount
	return b
}

// WithSrcAddress sets the byte address of the source buffer.
func (b MergeTaskReqBuilder) WithSrcAddress(
	srcAddress uint64,
) MergeTaskReqBuilder {
	b.srcAddress = srcAddress
	return b
}

// WithDstAddress sets the byte address of the destination buffer.
func (b MergeTaskReqBuilder) WithDstAddress(
	dstAddress uint64,
) MergeTaskReqBuilder {
	b.dstAddress = dstAddress
	return b
}

// Build creates a new MergeTaskReq.
func (b MergeTaskReqBuilder) Build() *MergeTaskReq {
	r := &MergeTaskReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficClass = reflect.TypeOf(MergeTaskReq{}).String()
	r.TaskID = b.taskID
	r.Offset = b.offset
	r.Span = b.span
	r.TotalCount = b.totalCount
	r.SrcAddress = b.srcAddress
	r.DstAddress = b.dstAddress

	return r
}

// A MergeRsp reports the completion of one merge task.
type MergeRsp struct {
	sim.MsgMeta

	RespondTo string
	Fail      bool
}

// Meta returns the metadata of the message
func (r *MergeRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a copy of the MergeRsp with a new ID
func (r *MergeRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request that the response is responding to.
func (r *MergeRsp) GetRspTo() string {
	return r.RespondTo
}

// MergeRspBuilder can build merge responses.
type MergeRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	fail     bool
}

// MakeMergeRspBuilder creates a new MergeRspBuilder
func MakeMergeRspBuilder() MergeRspBuilder {
	return MergeRspBuilder{}
}

// WithSrc sets the source of the response to build.
func (b MergeRspBuilder) WithSrc(src sim.RemotePort) MergeRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b MergeRspBuilder) WithDst(dst sim.RemotePort) MergeRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets ID of the request that the response to build is replying to.
func (b MergeRspBuilder) WithRspTo(id string) MergeRspBuilder {
	b.rspTo = id
	return b
}

// WithFail marks the task as failed.
func (b MergeRspBuilder) WithFail(fail bool) MergeRspBuilder {
	b.fail = fail
	return b
}

// Build creates a new MergeRsp.
func (b MergeRspBuilder) Build() *MergeRsp {
	r := &MergeRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficClass = reflect.TypeOf(MergeRsp{}).String()
	r.RespondTo = b.rspTo
	r.Fail = b.fail

	return r
}
