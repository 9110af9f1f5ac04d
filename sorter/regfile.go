package sorter

// Byte offsets of the registers, relative to the base address of the sorter.
const (
	RegRunOffset   = 0
	RegAddrAOffset = 4
	RegAddrBOffset = 8
	RegCountOffset = 12
	RegErrOffset   = 16
)

const (
	regStride      = 4
	regStrideShift = 2
	numRegs        = 5
)

// Error codes reported through the err register.
const (
	ErrNone          = 0
	ErrEngineFailure = 1
)

// A registerFile holds the memory-mapped registers of the sorter. Registers
// are 32 bits wide and laid out at a 4-byte stride from the base address.
type registerFile struct {
	baseAddress uint64

	run     uint32
	addrA   uint32
	addrB   uint32
	count   uint32
	errCode uint32
}

// decode translates a byte address into a register index. The second return
// value is false if the address falls outside the register range.
func (r *registerFile) decode(address uint64) (int, bool) {
	if address < r.baseAddress {
		return 0, false
	}

	index := int((address - r.baseAddress) >> regStrideShift)
	if index >= numRegs {
		return 0, false
	}

	return index, true
}

func (r *registerFile) read(index int) uint32 {
	return *r.regByIndex(index)
}

func (r *registerFile) write(index int, value uint32) {
	*r.regByIndex(index) = value
}

func (r *registerFile) regByIndex(index int) *uint32 {
	regs := [numRegs]*uint32{
		&r.run, &r.addrA, &r.addrB, &r.count, &r.errCode,
	}

	return regs[index]
}

func (r *registerFile) reset() {
	r.run = 0
	r.addrA = 0
	r.addrB = 0
	r.count = 0
	r.errCode = 0
}
