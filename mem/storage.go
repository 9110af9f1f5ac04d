package mem

import "errors"

// Defines common capacity units.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// A Storage keeps the data of the simulated system.
//
// The storage implementation manages the memory in units. The unit is
// similar to the concept of a page in memory management. For the units that
// are not touched by Read and Write, no memory is allocated.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity
func NewStorage(capacity uint64) *Storage {
	storage := new(Storage)

	storage.unitSize = 4096
	storage.capacity = capacity
	storage.data = make(map[uint64][]byte)

	return storage
}

// Capacity returns the number of bytes that the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) unit(address uint64) ([]byte, error) {
	if address >= s.capacity {
		return nil, errors.New("accessing address beyond the storage capacity")
	}

	baseAddr, _ := s.parseAddress(address)
	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit, nil
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr
	return
}

// Read reads length bytes starting at the given address.
func (s *Storage) Read(address, length uint64) ([]byte, error) {
	res := make([]byte, length)
	currAddr := address
	offset := uint64(0)

	for offset < length {
		unit, err := s.unit(currAddr)
		if err != nil {
			return nil, err
		}

		_, inUnitAddr := s.parseAddress(currAddr)
		count := s.unitSize - inUnitAddr
		if length-offset < count {
			count = length - offset
		}

		copy(res[offset:offset+count], unit[inUnitAddr:inUnitAddr+count])
		offset += count
		currAddr += count
	}

	return res, nil
}

// Write writes the data to the storage starting at the given address.
func (s *Storage) Write(address uint64, data []byte) error {
	currAddr := address
	offset := uint64(0)

	for offset < uint64(len(data)) {
		unit, err := s.unit(currAddr)
		if err != nil {
			return err
		}

		_, inUnitAddr := s.parseAddress(currAddr)
		count := s.unitSize - inUnitAddr
		if uint64(len(data))-offset < count {
			count = uint64(len(data)) - offset
		}

		copy(unit[inUnitAddr:inUnitAddr+count], data[offset:offset+count])
		offset += count
		currAddr += count
	}

	return nil
}
