package main

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/sortaccel/datarecording"
	"github.com/sarchlab/sortaccel/mergeengine"
)

type taskRecord struct {
	Time   float64
	TaskID int
	Offset uint64
	Span   uint64
	Total  uint64
	Src    uint64
	Dst    uint64
}

// A taskTraceHook records every merge task that the sorter dispatches.
type taskTraceHook struct {
	timeTeller sim.TimeTeller
	recorder   datarecording.DataRecorder
}

func newTaskTraceHook(
	timeTeller sim.TimeTeller,
	recorder datarecording.DataRecorder,
) *taskTraceHook {
	recorder.CreateTable("merge_tasks", taskRecord{})

	return &taskTraceHook{
		timeTeller: timeTeller,
		recorder:   recorder,
	}
}

// Func records merge task requests when they are sent out from a port.
func (h *taskTraceHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosPortMsgSend {
		return
	}

	task, ok := ctx.Item.(*mergeengine.MergeTaskReq)
	if !ok {
		return
	}

	h.recorder.InsertData("merge_tasks", taskRecord{
		Time:   float64(h.timeTeller.CurrentTime()),
		TaskID: task.TaskID,
		Offset: task.Offset,
		Span:   task.Span,
		Total:  task.TotalCount,
		Src:    task.SrcAddress,
		Dst:    task.DstAddress,
	})
}
