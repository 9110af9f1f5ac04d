package idealmemcontroller

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/sortaccel/mem"
)

var _ = Describe("Ideal Memory Controller", func() {
	var (
		engine    *sim.SerialEngine
		memCtrl   *Comp
		agentPort sim.Port
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()

		memCtrl = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithLatency(10).
			WithNewStorage(4 * mem.KB).
			Build("MemCtrl")

		agentPort = sim.NewPort(nil, 4, 4, "Agent.Port")

		conn := directconnection.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("Conn")
		conn.PlugIn(memCtrl.GetPortByName("Top"))
		conn.PlugIn(agentPort)
	})

	It("should write and respond", func() {
		req := mem.WriteReqBuilder{}.
			WithSrc(agentPort.AsRemote()).
			WithDst(memCtrl.GetPortByName("Top").AsRemote()).
			WithAddress(0x40).
			WithData([]byte{1, 2, 3, 4}).
			Build()
		agentPort.Send(req)

		engine.Run()

		rsp := agentPort.RetrieveIncoming()
		Expect(rsp).NotTo(BeNil())

		writeDone, ok := rsp.(*mem.WriteDoneRsp)
		Expect(ok).To(BeTrue())
		Expect(writeDone.RespondTo).To(Equal(req.ID))

		data, err := memCtrl.Storage.Read(0x40, 4)
		Expect(err).To(BeNil())
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read and respond", func() {
		memCtrl.Storage.Write(0x80, []byte{5, 6, 7, 8})

		req := mem.ReadReqBuilder{}.
			WithSrc(agentPort.AsRemote()).
			WithDst(memCtrl.GetPortByName("Top").AsRemote()).
			WithAddress(0x80).
			WithByteSize(4).
			Build()
		agentPort.Send(req)

		engine.Run()

		rsp := agentPort.RetrieveIncoming()
		Expect(rsp).NotTo(BeNil())

		dataReady, ok := rsp.(*mem.DataReadyRsp)
		Expect(ok).To(BeTrue())
		Expect(dataReady.RespondTo).To(Equal(req.ID))
		Expect(dataReady.Data).To(Equal([]byte{5, 6, 7, 8}))
	})

	It("should respond after the configured latency", func() {
		req := mem.ReadReqBuilder{}.
			WithSrc(agentPort.AsRemote()).
			WithDst(memCtrl.GetPortByName("Top").AsRemote()).
			WithAddress(0).
			WithByteSize(4).
			Build()
		agentPort.Send(req)

		engine.Run()

		period := (1 * sim.GHz).Period()
		Expect(engine.CurrentTime()).
			To(BeNumerically(">=", 10*period))
	})
})
