package mem

import "github.com/sarchlab/akita/v4/sim"

// AddressToPortMapper helps a unit find the port of the memory module that
// holds the data at a certain address.
type AddressToPortMapper interface {
	Find(address uint64) sim.RemotePort
}

// SinglePortMapper is used when a unit is connected with only one memory
// module.
type SinglePortMapper struct {
	Port sim.RemotePort
}

// Find simply returns the solo module that it connects to
func (f *SinglePortMapper) Find(_ uint64) sim.RemotePort {
	return f.Port
}

// BankedAddressPortMapper defines the lower level modules by address banks
type BankedAddressPortMapper struct {
	BankSize   uint64
	LowModules []sim.RemotePort
}

// Find returns the port that can provide the data.
func (f *BankedAddressPortMapper) Find(address uint64) sim.RemotePort {
	i := address / f.BankSize
	return f.LowModules[i]
}

// NewBankedAddressPortMapper returns a new BankedAddressPortMapper.
func NewBankedAddressPortMapper(bankSize uint64) *BankedAddressPortMapper {
	f := new(BankedAddressPortMapper)
	f.BankSize = bankSize
	f.LowModules = make([]sim.RemotePort, 0)

	return f
}
