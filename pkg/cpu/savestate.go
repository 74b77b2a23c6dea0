package cpu

import "errors"

var errShortState = errors.New("cpu save state: blob too short")

// SaveState returns the register file and interrupt-latch state as a
// fixed-layout byte blob (PC low, PC high, A, X, Y, SP, P, NMI, IRQ, then
// the 8-byte little-endian cycle counter).
func (c *CPU) SaveState() []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, byte(c.PC), byte(c.PC>>8))
	buf = append(buf, c.A, c.X, c.Y, c.SP, c.P)
	buf = append(buf, boolToByte(c.NMI), boolToByte(c.IRQ))
	cycles := uint64(c.Cycles)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(cycles>>(8*i)))
	}
	return buf
}

// LoadState restores the register file and interrupt-latch state from a
// blob previously returned by SaveState.
func (c *CPU) LoadState(data []byte) error {
	if len(data) < 16 {
		return errShortState
	}
	c.PC = uint16(data[0]) | uint16(data[1])<<8
	c.A, c.X, c.Y, c.SP, c.P = data[2], data[3], data[4], data[5], data[6]
	c.NMI = byteToBool(data[7])
	c.IRQ = byteToBool(data[8])
	var cycles uint64
	for i := 0; i < 8; i++ {
		cycles |= uint64(data[9+i]) << (8 * i)
	}
	c.Cycles = int(cycles)
	return nil
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func byteToBool(b uint8) bool {
	return b != 0
}
