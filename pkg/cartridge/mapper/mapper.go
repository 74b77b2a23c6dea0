package mapper

import "fmt"

// Mapper interface for different mappers
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	Step()
	IsIRQPending() bool
	ClearIRQ()
	// Mirroring returns the current nametable mirroring mode: 0=horizontal,
	// 1=vertical, 2=four-screen, 3=single-screen A, 4=single-screen B.
	// MMC1, MMC3 and AxROM return the mode their registers select; mappers
	// without dynamic mirroring just return the mode fixed at load time
	// from the iNES header.
	Mirroring() uint8
	// SaveState returns the mapper's bank-select/IRQ register state as a
	// fixed-layout byte blob (PRG/CHR ROM/RAM themselves are not included;
	// those are immutable or saved separately as cartridge SRAM).
	SaveState() []byte
	// LoadState restores register state from a blob previously returned by
	// SaveState. The blob must come from the same mapper number.
	LoadState(data []byte) error
}

// CartridgeData contains cartridge data for mappers
type CartridgeData struct {
	PRGROM    []uint8
	CHRROM    []uint8
	PRGRAM    []uint8
	CHRRAM    []uint8
	Mirroring uint8 // iNES header mirroring, for mappers with no override
}

// NewMapper creates a new mapper instance
func NewMapper(mapperNumber uint8, data *CartridgeData) (Mapper, error) {
	switch mapperNumber {
	case 0:
		return NewMapper0(data), nil
	case 1:
		return NewMapper1(data), nil
	case 2:
		return NewMapper2(data), nil
	case 3:
		return NewMapper3(data), nil
	case 4:
		return NewMapper4(data), nil
	case 7:
		return NewMapper7(data), nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %d", mapperNumber)
	}
}