package nes

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	saveStateMagic   = "NESV"
	saveStateVersion = uint32(1)
)

// ErrSaveStateIncompatible is returned by LoadState when the blob's magic
// or version doesn't match what this build produces.
var ErrSaveStateIncompatible = errors.New("save state: incompatible magic or version")

func writeUint32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func readUint32(data []byte) uint32 {
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
}

// SaveState serializes the full machine state (CPU, RAM, PPU, APU, mapper
// registers, and cartridge SRAM) into the "NESV" versioned blob format.
func (n *NES) SaveState() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(saveStateMagic)
	writeUint32(buf, saveStateVersion)

	writeSection(buf, n.CPU.SaveState())
	writeSection(buf, n.Memory.RAM[:])
	writeSection(buf, n.PPU.SaveState())
	writeSection(buf, n.APU.SaveState())

	var mapperState []byte
	if n.Cartridge != nil && n.Cartridge.Mapper != nil {
		mapperState = n.Cartridge.Mapper.SaveState()
	}
	writeSection(buf, mapperState)

	var sram []byte
	if n.Cartridge != nil {
		sram = n.Cartridge.PRGRAM
	}
	writeSection(buf, sram)

	return buf.Bytes(), nil
}

func writeSection(buf *bytes.Buffer, data []byte) {
	writeUint32(buf, uint32(len(data)))
	buf.Write(data)
}

// LoadState validates the blob's magic and version, then replaces the
// entire machine state atomically: on any error nothing is mutated.
func (n *NES) LoadState(data []byte) error {
	if len(data) < 8 || string(data[0:4]) != saveStateMagic {
		return ErrSaveStateIncompatible
	}
	if readUint32(data[4:8]) != saveStateVersion {
		return ErrSaveStateIncompatible
	}

	pos := 8
	sections := make([][]byte, 6)
	for i := range sections {
		if pos+4 > len(data) {
			return fmt.Errorf("save state: truncated at section %d", i)
		}
		length := int(readUint32(data[pos : pos+4]))
		pos += 4
		if pos+length > len(data) {
			return fmt.Errorf("save state: truncated at section %d", i)
		}
		sections[i] = data[pos : pos+length]
		pos += length
	}

	// Snapshot the current state so a failure part-way through can be undone.
	backup, _ := n.SaveState()
	restore := func(err error) error {
		n.LoadState(backup)
		return err
	}

	if err := n.CPU.LoadState(sections[0]); err != nil {
		return restore(err)
	}
	if len(sections[1]) != len(n.Memory.RAM) {
		return restore(fmt.Errorf("save state: RAM section size mismatch"))
	}
	copy(n.Memory.RAM[:], sections[1])
	if err := n.PPU.LoadState(sections[2]); err != nil {
		return restore(err)
	}
	if err := n.APU.LoadState(sections[3]); err != nil {
		return restore(err)
	}
	if n.Cartridge != nil && n.Cartridge.Mapper != nil && len(sections[4]) > 0 {
		if err := n.Cartridge.Mapper.LoadState(sections[4]); err != nil {
			return restore(err)
		}
	}
	if n.Cartridge != nil && len(sections[5]) == len(n.Cartridge.PRGRAM) {
		copy(n.Cartridge.PRGRAM, sections[5])
	}

	return nil
}
