package ppu

import "errors"

var errShortState = errors.New("ppu save state: blob too short")

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func byteToBool(b uint8) bool {
	return b != 0
}

func int32ToBytes(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func bytesToInt32(b []byte) int32 {
	return int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24
}

// SaveState returns the PPU's registers, internal scroll latches, VRAM,
// OAM, and framebuffer as a fixed-layout byte blob. The cartridge's own
// CHR ROM/RAM is not included here; that's saved with the mapper state.
func (p *PPU) SaveState() []byte {
	buf := make([]byte, 0, 0x4000+256+256*240+64)

	buf = append(buf, p.PPUCTRL, p.PPUMASK, p.PPUSTATUS, p.OAMADDR, p.OAMDATA,
		p.PPUSCROLL, p.PPUADDR, p.PPUDATA, p.ScrollY, p.readBuffer)
	buf = append(buf, byte(p.v), byte(p.v>>8), byte(p.t), byte(p.t>>8))
	buf = append(buf, p.x, p.xTemp, p.w)
	buf = append(buf, int32ToBytes(int32(p.Cycle))...)
	buf = append(buf, int32ToBytes(int32(p.Scanline))...)
	frame := p.Frame
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(frame>>(8*i)))
	}
	buf = append(buf, boolToByte(p.FrameComplete))
	buf = append(buf, int32ToBytes(int32(p.lastCycle))...)
	buf = append(buf, boolToByte(p.NMIRequested))

	buf = append(buf, p.VRAM[:]...)
	buf = append(buf, p.OAM[:]...)
	buf = append(buf, p.FrameBuffer[:]...)
	buf = append(buf, p.PaletteManager.PaletteRAM[:]...)
	buf = append(buf, p.PaletteManager.Emphasis)

	return buf
}

// LoadState restores PPU state from a blob previously returned by SaveState.
func (p *PPU) LoadState(data []byte) error {
	const headerLen = 10 + 4 + 3 + 4 + 4 + 8 + 1 + 4 + 1
	const tailLen = 0x4000 + 256 + 256*240 + 32 + 1
	if len(data) < headerLen+tailLen {
		return errShortState
	}

	i := 0
	p.PPUCTRL, p.PPUMASK, p.PPUSTATUS, p.OAMADDR, p.OAMDATA,
		p.PPUSCROLL, p.PPUADDR, p.PPUDATA, p.ScrollY, p.readBuffer =
		data[i], data[i+1], data[i+2], data[i+3], data[i+4],
		data[i+5], data[i+6], data[i+7], data[i+8], data[i+9]
	i += 10

	p.v = uint16(data[i]) | uint16(data[i+1])<<8
	p.t = uint16(data[i+2]) | uint16(data[i+3])<<8
	i += 4
	p.x, p.xTemp, p.w = data[i], data[i+1], data[i+2]
	i += 3

	p.Cycle = int(bytesToInt32(data[i : i+4]))
	i += 4
	p.Scanline = int(bytesToInt32(data[i : i+4]))
	i += 4

	var frame uint64
	for j := 0; j < 8; j++ {
		frame |= uint64(data[i+j]) << (8 * j)
	}
	p.Frame = frame
	i += 8

	p.FrameComplete = byteToBool(data[i])
	i++
	p.lastCycle = int(bytesToInt32(data[i : i+4]))
	i += 4
	p.NMIRequested = byteToBool(data[i])
	i++

	copy(p.VRAM[:], data[i:i+0x4000])
	i += 0x4000
	copy(p.OAM[:], data[i:i+256])
	i += 256
	copy(p.FrameBuffer[:], data[i:i+256*240])
	i += 256 * 240
	copy(p.PaletteManager.PaletteRAM[:], data[i:i+32])
	i += 32
	p.PaletteManager.Emphasis = data[i]

	return nil
}
