package cpu

// AddressingMode represents different addressing modes for 6502 instructions
type AddressingMode int

const (
	AddrImplied AddressingMode = iota
	AddrAccumulator
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrZeroPageY
	AddrRelative
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirect
	AddrIndexedIndirect
	AddrIndirectIndexed
)

// AddressingInfo contains information about an addressing mode
type AddressingInfo struct {
	Mode   AddressingMode
	Length int // Instruction length in bytes
	Cycles int // Base cycle count
}

// addressingTable is the full 256-entry base addressing/cycle table for the
// documented 6502 opcode set plus the documented illegal opcodes (NOP
// variants, LAX, SAX, DCP, ISC, SLO, RLA, SRE, RRA, ANC, ALR, ARR). Cycle
// counts are the base cost; indexed/indirect-indexed reads add one cycle on
// a page crossing, which callers apply themselves via getOperand's
// pageCrossed result. JAM (0x02 family) is not executed by this
// implementation (never dispatched by executeInstruction) and is recorded
// here only so the table covers all 256 opcodes.
var addressingTable = [256]AddressingInfo{
	0x00: {AddrImplied, 1, 7}, 0x01: {AddrIndexedIndirect, 2, 6}, 0x02: {AddrImplied, 1, 2}, 0x03: {AddrIndexedIndirect, 2, 8},
	0x04: {AddrZeroPage, 2, 3}, 0x05: {AddrZeroPage, 2, 3}, 0x06: {AddrZeroPage, 2, 5}, 0x07: {AddrZeroPage, 2, 5},
	0x08: {AddrImplied, 1, 3}, 0x09: {AddrImmediate, 2, 2}, 0x0A: {AddrAccumulator, 1, 2}, 0x0B: {AddrImmediate, 2, 2},
	0x0C: {AddrAbsolute, 3, 4}, 0x0D: {AddrAbsolute, 3, 4}, 0x0E: {AddrAbsolute, 3, 6}, 0x0F: {AddrAbsolute, 3, 6},

	0x10: {AddrRelative, 2, 2}, 0x11: {AddrIndirectIndexed, 2, 5}, 0x12: {AddrImplied, 1, 2}, 0x13: {AddrIndirectIndexed, 2, 8},
	0x14: {AddrZeroPageX, 2, 4}, 0x15: {AddrZeroPageX, 2, 4}, 0x16: {AddrZeroPageX, 2, 6}, 0x17: {AddrZeroPageX, 2, 6},
	0x18: {AddrImplied, 1, 2}, 0x19: {AddrAbsoluteY, 3, 4}, 0x1A: {AddrImplied, 1, 2}, 0x1B: {AddrAbsoluteY, 3, 7},
	0x1C: {AddrAbsoluteX, 3, 4}, 0x1D: {AddrAbsoluteX, 3, 4}, 0x1E: {AddrAbsoluteX, 3, 7}, 0x1F: {AddrAbsoluteX, 3, 7},

	0x20: {AddrAbsolute, 3, 6}, 0x21: {AddrIndexedIndirect, 2, 6}, 0x22: {AddrImplied, 1, 2}, 0x23: {AddrIndexedIndirect, 2, 8},
	0x24: {AddrZeroPage, 2, 3}, 0x25: {AddrZeroPage, 2, 3}, 0x26: {AddrZeroPage, 2, 5}, 0x27: {AddrZeroPage, 2, 5},
	0x28: {AddrImplied, 1, 4}, 0x29: {AddrImmediate, 2, 2}, 0x2A: {AddrAccumulator, 1, 2}, 0x2B: {AddrImmediate, 2, 2},
	0x2C: {AddrAbsolute, 3, 4}, 0x2D: {AddrAbsolute, 3, 4}, 0x2E: {AddrAbsolute, 3, 6}, 0x2F: {AddrAbsolute, 3, 6},

	0x30: {AddrRelative, 2, 2}, 0x31: {AddrIndirectIndexed, 2, 5}, 0x32: {AddrImplied, 1, 2}, 0x33: {AddrIndirectIndexed, 2, 8},
	0x34: {AddrZeroPageX, 2, 4}, 0x35: {AddrZeroPageX, 2, 4}, 0x36: {AddrZeroPageX, 2, 6}, 0x37: {AddrZeroPageX, 2, 6},
	0x38: {AddrImplied, 1, 2}, 0x39: {AddrAbsoluteY, 3, 4}, 0x3A: {AddrImplied, 1, 2}, 0x3B: {AddrAbsoluteY, 3, 7},
	0x3C: {AddrAbsoluteX, 3, 4}, 0x3D: {AddrAbsoluteX, 3, 4}, 0x3E: {AddrAbsoluteX, 3, 7}, 0x3F: {AddrAbsoluteX, 3, 7},

	0x40: {AddrImplied, 1, 6}, 0x41: {AddrIndexedIndirect, 2, 6}, 0x42: {AddrImplied, 1, 2}, 0x43: {AddrIndexedIndirect, 2, 8},
	0x44: {AddrZeroPage, 2, 3}, 0x45: {AddrZeroPage, 2, 3}, 0x46: {AddrZeroPage, 2, 5}, 0x47: {AddrZeroPage, 2, 5},
	0x48: {AddrImplied, 1, 3}, 0x49: {AddrImmediate, 2, 2}, 0x4A: {AddrAccumulator, 1, 2}, 0x4B: {AddrImmediate, 2, 2},
	0x4C: {AddrAbsolute, 3, 3}, 0x4D: {AddrAbsolute, 3, 4}, 0x4E: {AddrAbsolute, 3, 6}, 0x4F: {AddrAbsolute, 3, 6},

	0x50: {AddrRelative, 2, 2}, 0x51: {AddrIndirectIndexed, 2, 5}, 0x52: {AddrImplied, 1, 2}, 0x53: {AddrIndirectIndexed, 2, 8},
	0x54: {AddrZeroPageX, 2, 4}, 0x55: {AddrZeroPageX, 2, 4}, 0x56: {AddrZeroPageX, 2, 6}, 0x57: {AddrZeroPageX, 2, 6},
	0x58: {AddrImplied, 1, 2}, 0x59: {AddrAbsoluteY, 3, 4}, 0x5A: {AddrImplied, 1, 2}, 0x5B: {AddrAbsoluteY, 3, 7},
	0x5C: {AddrAbsoluteX, 3, 4}, 0x5D: {AddrAbsoluteX, 3, 4}, 0x5E: {AddrAbsoluteX, 3, 7}, 0x5F: {AddrAbsoluteX, 3, 7},

	0x60: {AddrImplied, 1, 6}, 0x61: {AddrIndexedIndirect, 2, 6}, 0x62: {AddrImplied, 1, 2}, 0x63: {AddrIndexedIndirect, 2, 8},
	0x64: {AddrZeroPage, 2, 3}, 0x65: {AddrZeroPage, 2, 3}, 0x66: {AddrZeroPage, 2, 5}, 0x67: {AddrZeroPage, 2, 5},
	0x68: {AddrImplied, 1, 4}, 0x69: {AddrImmediate, 2, 2}, 0x6A: {AddrAccumulator, 1, 2}, 0x6B: {AddrImmediate, 2, 2},
	0x6C: {AddrIndirect, 3, 5}, 0x6D: {AddrAbsolute, 3, 4}, 0x6E: {AddrAbsolute, 3, 6}, 0x6F: {AddrAbsolute, 3, 6},

	0x70: {AddrRelative, 2, 2}, 0x71: {AddrIndirectIndexed, 2, 5}, 0x72: {AddrImplied, 1, 2}, 0x73: {AddrIndirectIndexed, 2, 8},
	0x74: {AddrZeroPageX, 2, 4}, 0x75: {AddrZeroPageX, 2, 4}, 0x76: {AddrZeroPageX, 2, 6}, 0x77: {AddrZeroPageX, 2, 6},
	0x78: {AddrImplied, 1, 2}, 0x79: {AddrAbsoluteY, 3, 4}, 0x7A: {AddrImplied, 1, 2}, 0x7B: {AddrAbsoluteY, 3, 7},
	0x7C: {AddrAbsoluteX, 3, 4}, 0x7D: {AddrAbsoluteX, 3, 4}, 0x7E: {AddrAbsoluteX, 3, 7}, 0x7F: {AddrAbsoluteX, 3, 7},

	0x80: {AddrImmediate, 2, 2}, 0x81: {AddrIndexedIndirect, 2, 6}, 0x82: {AddrImmediate, 2, 2}, 0x83: {AddrIndexedIndirect, 2, 6},
	0x84: {AddrZeroPage, 2, 3}, 0x85: {AddrZeroPage, 2, 3}, 0x86: {AddrZeroPage, 2, 3}, 0x87: {AddrZeroPage, 2, 3},
	0x88: {AddrImplied, 1, 2}, 0x89: {AddrImmediate, 2, 2}, 0x8A: {AddrImplied, 1, 2}, 0x8B: {AddrImmediate, 2, 2},
	0x8C: {AddrAbsolute, 3, 4}, 0x8D: {AddrAbsolute, 3, 4}, 0x8E: {AddrAbsolute, 3, 4}, 0x8F: {AddrAbsolute, 3, 4},

	0x90: {AddrRelative, 2, 2}, 0x91: {AddrIndirectIndexed, 2, 6}, 0x92: {AddrImplied, 1, 2}, 0x93: {AddrIndirectIndexed, 2, 6},
	0x94: {AddrZeroPageX, 2, 4}, 0x95: {AddrZeroPageX, 2, 4}, 0x96: {AddrZeroPageY, 2, 4}, 0x97: {AddrZeroPageY, 2, 4},
	0x98: {AddrImplied, 1, 2}, 0x99: {AddrAbsoluteY, 3, 5}, 0x9A: {AddrImplied, 1, 2}, 0x9B: {AddrAbsoluteY, 3, 5},
	0x9C: {AddrAbsoluteX, 3, 5}, 0x9D: {AddrAbsoluteX, 3, 5}, 0x9E: {AddrAbsoluteY, 3, 5}, 0x9F: {AddrAbsoluteY, 3, 5},

	0xA0: {AddrImmediate, 2, 2}, 0xA1: {AddrIndexedIndirect, 2, 6}, 0xA2: {AddrImmediate, 2, 2}, 0xA3: {AddrIndexedIndirect, 2, 6},
	0xA4: {AddrZeroPage, 2, 3}, 0xA5: {AddrZeroPage, 2, 3}, 0xA6: {AddrZeroPage, 2, 3}, 0xA7: {AddrZeroPage, 2, 3},
	0xA8: {AddrImplied, 1, 2}, 0xA9: {AddrImmediate, 2, 2}, 0xAA: {AddrImplied, 1, 2}, 0xAB: {AddrImmediate, 2, 2},
	0xAC: {AddrAbsolute, 3, 4}, 0xAD: {AddrAbsolute, 3, 4}, 0xAE: {AddrAbsolute, 3, 4}, 0xAF: {AddrAbsolute, 3, 4},

	0xB0: {AddrRelative, 2, 2}, 0xB1: {AddrIndirectIndexed, 2, 5}, 0xB2: {AddrImplied, 1, 2}, 0xB3: {AddrIndirectIndexed, 2, 5},
	0xB4: {AddrZeroPageX, 2, 4}, 0xB5: {AddrZeroPageX, 2, 4}, 0xB6: {AddrZeroPageY, 2, 4}, 0xB7: {AddrZeroPageY, 2, 4},
	0xB8: {AddrImplied, 1, 2}, 0xB9: {AddrAbsoluteY, 3, 4}, 0xBA: {AddrImplied, 1, 2}, 0xBB: {AddrAbsoluteY, 3, 4},
	0xBC: {AddrAbsoluteX, 3, 4}, 0xBD: {AddrAbsoluteX, 3, 4}, 0xBE: {AddrAbsoluteY, 3, 4}, 0xBF: {AddrAbsoluteY, 3, 4},

	0xC0: {AddrImmediate, 2, 2}, 0xC1: {AddrIndexedIndirect, 2, 6}, 0xC2: {AddrImmediate, 2, 2}, 0xC3: {AddrIndexedIndirect, 2, 8},
	0xC4: {AddrZeroPage, 2, 3}, 0xC5: {AddrZeroPage, 2, 3}, 0xC6: {AddrZeroPage, 2, 5}, 0xC7: {AddrZeroPage, 2, 5},
	0xC8: {AddrImplied, 1, 2}, 0xC9: {AddrImmediate, 2, 2}, 0xCA: {AddrImplied, 1, 2}, 0xCB: {AddrImmediate, 2, 2},
	0xCC: {AddrAbsolute, 3, 4}, 0xCD: {AddrAbsolute, 3, 4}, 0xCE: {AddrAbsolute, 3, 6}, 0xCF: {AddrAbsolute, 3, 6},

	0xD0: {AddrRelative, 2, 2}, 0xD1: {AddrIndirectIndexed, 2, 5}, 0xD2: {AddrImplied, 1, 2}, 0xD3: {AddrIndirectIndexed, 2, 8},
	0xD4: {AddrZeroPageX, 2, 4}, 0xD5: {AddrZeroPageX, 2, 4}, 0xD6: {AddrZeroPageX, 2, 6}, 0xD7: {AddrZeroPageX, 2, 6},
	0xD8: {AddrImplied, 1, 2}, 0xD9: {AddrAbsoluteY, 3, 4}, 0xDA: {AddrImplied, 1, 2}, 0xDB: {AddrAbsoluteY, 3, 7},
	0xDC: {AddrAbsoluteX, 3, 4}, 0xDD: {AddrAbsoluteX, 3, 4}, 0xDE: {AddrAbsoluteX, 3, 7}, 0xDF: {AddrAbsoluteX, 3, 7},

	0xE0: {AddrImmediate, 2, 2}, 0xE1: {AddrIndexedIndirect, 2, 6}, 0xE2: {AddrImmediate, 2, 2}, 0xE3: {AddrIndexedIndirect, 2, 8},
	0xE4: {AddrZeroPage, 2, 3}, 0xE5: {AddrZeroPage, 2, 3}, 0xE6: {AddrZeroPage, 2, 5}, 0xE7: {AddrZeroPage, 2, 5},
	0xE8: {AddrImplied, 1, 2}, 0xE9: {AddrImmediate, 2, 2}, 0xEA: {AddrImplied, 1, 2}, 0xEB: {AddrImmediate, 2, 2},
	0xEC: {AddrAbsolute, 3, 4}, 0xED: {AddrAbsolute, 3, 4}, 0xEE: {AddrAbsolute, 3, 6}, 0xEF: {AddrAbsolute, 3, 6},

	0xF0: {AddrRelative, 2, 2}, 0xF1: {AddrIndirectIndexed, 2, 5}, 0xF2: {AddrImplied, 1, 2}, 0xF3: {AddrIndirectIndexed, 2, 8},
	0xF4: {AddrZeroPageX, 2, 4}, 0xF5: {AddrZeroPageX, 2, 4}, 0xF6: {AddrZeroPageX, 2, 6}, 0xF7: {AddrZeroPageX, 2, 6},
	0xF8: {AddrImplied, 1, 2}, 0xF9: {AddrAbsoluteY, 3, 4}, 0xFA: {AddrImplied, 1, 2}, 0xFB: {AddrAbsoluteY, 3, 7},
	0xFC: {AddrAbsoluteX, 3, 4}, 0xFD: {AddrAbsoluteX, 3, 4}, 0xFE: {AddrAbsoluteX, 3, 7}, 0xFF: {AddrAbsoluteX, 3, 7},
}

// getAddressingInfo returns the addressing mode, instruction length, and
// base cycle count for an opcode.
func getAddressingInfo(opcode uint8) AddressingInfo {
	return addressingTable[opcode]
}

// getOperandAddress resolves the operand address for an addressing mode
func (c *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	pageCrossed := false
	
	switch mode {
	case AddrImplied:
		return 0, false
		
	case AddrAccumulator:
		return 0, false
		
	case AddrImmediate:
		addr := c.PC
		c.PC++
		return addr, false
		
	case AddrZeroPage:
		addr := uint16(c.read(c.PC))
		c.PC++
		return addr, false
		
	case AddrZeroPageX:
		addr := uint16(c.read(c.PC) + c.X)
		c.PC++
		return addr & 0xFF, false
		
	case AddrZeroPageY:
		addr := uint16(c.read(c.PC) + c.Y)
		c.PC++
		return addr & 0xFF, false
		
	case AddrRelative:
		offset := int8(c.read(c.PC))
		c.PC++
		addr := uint16(int32(c.PC) + int32(offset))
		pageCrossed = (c.PC & 0xFF00) != (addr & 0xFF00)
		return addr, pageCrossed
		
	case AddrAbsolute:
		addr := c.read16(c.PC)
		c.PC += 2
		return addr, false
		
	case AddrAbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.X)
		pageCrossed = (base & 0xFF00) != (addr & 0xFF00)
		
		// Perform dummy read if page boundary is crossed
		if pageCrossed {
			// Dummy read from (base + X) without carry
			dummyAddr := (base & 0xFF00) | ((base + uint16(c.X)) & 0xFF)
			c.read(dummyAddr)
		}
		
		return addr, pageCrossed
		
	case AddrAbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.Y)
		pageCrossed = (base & 0xFF00) != (addr & 0xFF00)
		
		// Perform dummy read if page boundary is crossed
		if pageCrossed {
			// Dummy read from (base + Y) without carry
			dummyAddr := (base & 0xFF00) | ((base + uint16(c.Y)) & 0xFF)
			c.read(dummyAddr)
		}
		
		return addr, pageCrossed
		
	case AddrIndirect:
		// Used only by JMP - has page boundary bug
		ptr := c.read16(c.PC)
		c.PC += 2
		if ptr&0xFF == 0xFF {
			// Bug: crosses page boundary
			lo := c.read(ptr)
			hi := c.read(ptr & 0xFF00)
			return uint16(hi)<<8 | uint16(lo), false
		}
		return c.read16(ptr), false
		
	case AddrIndexedIndirect: // (zp,X)
		base := c.read(c.PC)
		c.PC++
		ptr := (uint16(base) + uint16(c.X)) & 0xFF
		lo := c.read(ptr)
		hi := c.read((ptr + 1) & 0xFF)
		addr := uint16(hi)<<8 | uint16(lo)
		// Debug logging
		//fmt.Printf("IndexedIndirect: base=%02X, X=%02X, ptr=%02X, lo=%02X, hi=%02X, addr=%04X\n", 
		//	base, c.X, ptr, lo, hi, addr)
		return addr, false
		
	case AddrIndirectIndexed: // (zp),Y
		base := c.read(c.PC)
		c.PC++
		lo := c.read(uint16(base))
		hi := c.read((uint16(base) + 1) & 0xFF)
		baseAddr := uint16(hi)<<8 | uint16(lo)
		addr := baseAddr + uint16(c.Y)
		pageCrossed = (baseAddr & 0xFF00) != (addr & 0xFF00)
		
		// Perform dummy read if page boundary is crossed
		if pageCrossed {
			// Dummy read from (baseAddr + Y) without carry
			dummyAddr := (baseAddr & 0xFF00) | ((baseAddr + uint16(c.Y)) & 0xFF)
			c.read(dummyAddr)
		}
		return addr, pageCrossed
	}
	
	return 0, false
}

// getOperand gets the operand value for an addressing mode
func (c *CPU) getOperand(mode AddressingMode) (uint8, bool) {
	switch mode {
	case AddrAccumulator:
		return c.A, false
		
	case AddrImmediate:
		addr, _ := c.getOperandAddress(mode)
		return c.read(addr), false
		
	default:
		addr, pageCrossed := c.getOperandAddress(mode)
		return c.read(addr), pageCrossed
	}
}