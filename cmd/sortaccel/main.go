// Command sortaccel simulates a register-mapped merge-sort accelerator. It
// preloads a random array into memory, programs the sorter through its
// configuration registers, runs the simulation to completion, and verifies
// the result.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/sortaccel/datarecording"
	"github.com/sarchlab/sortaccel/mem"
	"github.com/sarchlab/sortaccel/mem/idealmemcontroller"
	"github.com/sarchlab/sortaccel/mergeengine"
	"github.com/sarchlab/sortaccel/monitoring"
	"github.com/sarchlab/sortaccel/sorter"
)

const (
	regBaseAddr = 0x1000
	bufAAddr    = 0x10_0000
	bufBAddr    = 0x20_0000
	elemSize    = 4
)

// memBankSize is the address range that each memory bank covers when the
// memory is split into banks. Buffer A lives in bank 0 and buffer B in
// bank 1.
const memBankSize = 2 * mem.MB

var (
	numElements int
	seed        int64
	memLatency  int
	memBanks    int
	tracePath   string
	logPorts    bool
	logEvents   bool
	useMonitor  bool
	monitorPort int
)

var rootCmd = &cobra.Command{
	Use:   "sortaccel",
	Short: "Simulate a merge-sort accelerator sorting a random array",
	RunE:  runSim,
}

func init() {
	rootCmd.Flags().IntVarP(&numElements, "num-elements", "n", 1024,
		"number of 32-bit integers to sort")
	rootCmd.Flags().Int64Var(&seed, "seed", 0,
		"seed of the random number generator")
	rootCmd.Flags().IntVar(&memLatency, "mem-latency", 100,
		"memory access latency in cycles")
	rootCmd.Flags().IntVar(&memBanks, "mem-banks", 1,
		"number of memory banks, each covering 2 MB of the address space")
	rootCmd.Flags().StringVar(&tracePath, "trace", "",
		"record dispatched merge tasks into a SQLite file at this path")
	rootCmd.Flags().BoolVar(&logPorts, "log-ports", false,
		"log every message sent out of a port")
	rootCmd.Flags().BoolVar(&logEvents, "log-events", false,
		"log every event the engine triggers")
	rootCmd.Flags().BoolVar(&useMonitor, "monitor", false,
		"start the monitoring server")
	rootCmd.Flags().IntVar(&monitorPort, "monitor-port", 0,
		"port of the monitoring server")
}

type platform struct {
	engine   sim.Engine
	memCtrls []*idealmemcontroller.Comp
	mergeEng *mergeengine.Comp
	sorter   *sorter.Comp
	driver   *driver
	ports    []sim.Port
}

func buildPlatform() *platform {
	engine := sim.NewSerialEngine()
	freq := 1 * sim.GHz

	memCtrls, mapper := buildMemory(engine, freq)

	mergeEng := mergeengine.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithMemPortMapper(mapper).
		Build("MergeEngine")

	sorterComp := sorter.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithBaseAddress(regBaseAddr).
		WithEngineDst(mergeEng.GetPortByName("Ctrl").AsRemote()).
		Build("Sorter")

	writes := []regWrite{
		{offset: sorter.RegAddrAOffset, value: bufAAddr},
		{offset: sorter.RegAddrBOffset, value: bufBAddr},
		{offset: sorter.RegCountOffset, value: uint32(numElements)},
		{offset: sorter.RegRunOffset, value: 1},
	}
	drv := newDriver("Driver", engine, freq,
		sorterComp.GetPortByName("Ctrl").AsRemote(), regBaseAddr, writes)

	p := &platform{
		engine:   engine,
		memCtrls: memCtrls,
		mergeEng: mergeEng,
		sorter:   sorterComp,
		driver:   drv,
	}

	for _, memCtrl := range memCtrls {
		p.ports = append(p.ports, memCtrl.GetPortByName("Top"))
	}
	p.ports = append(p.ports,
		mergeEng.GetPortByName("Ctrl"),
		mergeEng.GetPortByName("Mem"),
		sorterComp.GetPortByName("Ctrl"),
		sorterComp.GetPortByName("Engine"),
		drv.GetPortByName("Ctrl"),
	)

	conn := directconnection.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		Build("Conn")
	for _, port := range p.ports {
		conn.PlugIn(port)
	}

	return p
}

// buildMemory creates the memory controllers. With one bank a single
// controller serves the whole address space. With more banks each controller
// owns a memBankSize slice of it and the merge engine picks the bank by
// address.
func buildMemory(
	engine sim.Engine,
	freq sim.Freq,
) ([]*idealmemcontroller.Comp, mem.AddressToPortMapper) {
	memCtrls := make([]*idealmemcontroller.Comp, 0, memBanks)
	for i := 0; i < memBanks; i++ {
		memCtrl := idealmemcontroller.MakeBuilder().
			WithEngine(engine).
			WithFreq(freq).
			WithLatency(memLatency).
			Build(fmt.Sprintf("MemCtrl[%d]", i))
		memCtrls = append(memCtrls, memCtrl)
	}

	if memBanks == 1 {
		return memCtrls, &mem.SinglePortMapper{
			Port: memCtrls[0].GetPortByName("Top").AsRemote(),
		}
	}

	mapper := mem.NewBankedAddressPortMapper(memBankSize)
	for _, memCtrl := range memCtrls {
		mapper.LowModules = append(mapper.LowModules,
			memCtrl.GetPortByName("Top").AsRemote())
	}

	return memCtrls, mapper
}

// storageAt returns the storage of the bank that owns the given address.
func (p *platform) storageAt(addr uint64) *mem.Storage {
	if len(p.memCtrls) == 1 {
		return p.memCtrls[0].Storage
	}

	return p.memCtrls[addr/memBankSize].Storage
}

func (p *platform) attachPortMsgLogger(w io.Writer) {
	hook := sim.NewPortMsgLogger(log.New(w, "", 0), p.engine)
	for _, port := range p.ports {
		port.AcceptHook(hook)
	}
}

func validateFlags() error {
	if numElements < 0 {
		return fmt.Errorf("the number of elements cannot be negative")
	}

	if memBanks < 1 {
		return fmt.Errorf("at least one memory bank is required")
	}

	if memBanks > 1 {
		byteSize := uint64(numElements) * elemSize
		if bufAAddr+byteSize > memBankSize {
			return fmt.Errorf(
				"%d elements do not fit in a single memory bank",
				numElements)
		}
	}

	return nil
}

func preloadData(p *platform) []int32 {
	rng := rand.New(rand.NewSource(seed))

	data := make([]int32, numElements)
	bytes := make([]byte, numElements*elemSize)
	for i := range data {
		data[i] = int32(rng.Uint32())
		binary.LittleEndian.PutUint32(bytes[i*elemSize:], uint32(data[i]))
	}

	err := p.storageAt(bufAAddr).Write(bufAAddr, bytes)
	if err != nil {
		return nil
	}

	return data
}

func verifyResult(p *platform, input []int32) error {
	bytes, err := p.storageAt(bufAAddr).Read(
		bufAAddr, uint64(numElements*elemSize))
	if err != nil {
		return err
	}

	result := make([]int32, numElements)
	for i := range result {
		result[i] = int32(binary.LittleEndian.Uint32(bytes[i*elemSize:]))
	}

	expected := slices.Clone(input)
	slices.Sort(expected)

	for i := range expected {
		if result[i] != expected[i] {
			return fmt.Errorf(
				"element %d is %d, expected %d",
				i, result[i], expected[i])
		}
	}

	return nil
}

func runSim(_ *cobra.Command, _ []string) error {
	err := validateFlags()
	if err != nil {
		return err
	}

	p := buildPlatform()

	p.sorter.Reset()
	p.mergeEng.Reset()

	input := preloadData(p)
	if input == nil {
		return fmt.Errorf("cannot preload %d elements", numElements)
	}

	if tracePath != "" {
		recorder := datarecording.New(tracePath)
		hook := newTaskTraceHook(p.engine, recorder)
		p.sorter.GetPortByName("Engine").AcceptHook(hook)
	}

	if logPorts {
		p.attachPortMsgLogger(os.Stdout)
	}

	if logEvents {
		p.engine.AcceptHook(sim.NewEventLogger(log.New(os.Stdout, "", 0)))
	}

	if useMonitor {
		monitor := monitoring.NewMonitor()
		monitor.WithPortNumber(monitorPort)
		monitor.RegisterEngine(p.engine)
		monitor.RegisterComponent(p.sorter)
		monitor.RegisterComponent(p.mergeEng)
		for _, memCtrl := range p.memCtrls {
			monitor.RegisterComponent(memCtrl)
		}
		monitor.StartServer()
	}

	p.driver.TickLater()

	err = p.engine.Run()
	if err != nil {
		return err
	}

	if p.driver.ErrCode != sorter.ErrNone {
		return fmt.Errorf("sorter reported error code %d", p.driver.ErrCode)
	}

	err = verifyResult(p, input)
	if err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	fmt.Printf("Sorted %d elements in %.9f seconds of simulated time.\n",
		numElements, p.engine.CurrentTime())

	return nil
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
