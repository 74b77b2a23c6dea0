package nes

import (
	"github.com/nesgo/emu/pkg/apu"
	"github.com/nesgo/emu/pkg/cartridge"
	"github.com/nesgo/emu/pkg/cpu"
	"github.com/nesgo/emu/pkg/input"
	"github.com/nesgo/emu/pkg/memory"
	"github.com/nesgo/emu/pkg/ppu"
)

// NES represents the Nintendo Entertainment System
type NES struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Memory    *memory.Memory
	Cartridge *cartridge.Cartridge
	Input     *input.Controller // port 1 ($4016)
	Input2    *input.Controller // port 2 ($4017 read)

	Cycles uint64
	Frame  uint64
}

// NewNES creates a new NES instance
func NewNES() *NES {
	nes := &NES{}

	// Initialize components
	nes.Memory = memory.New()
	nes.CPU = cpu.New(nes.Memory)
	nes.PPU = ppu.New(nes.Memory)
	nes.APU = apu.New()
	nes.Input = input.New()
	nes.Input2 = input.New()

	// Connect components to memory
	nes.Memory.SetPPU(nes.PPU)
	nes.Memory.SetAPU(nes.APU)
	nes.Memory.SetInput(nes.Input, nes.Input2)
	nes.Memory.SetCPU(nes.CPU)
	nes.APU.SetMemory(nes.Memory)
	nes.APU.SetCPU(nes.CPU)

	return nes
}

// LoadCartridge loads a cartridge into the NES
func (n *NES) LoadCartridge(cart *cartridge.Cartridge) {
	n.Cartridge = cart
	n.Memory.SetCartridge(cart)
	n.PPU.SetCartridge(cart)
}

// Reset resets the NES to initial state
func (n *NES) Reset() {
	n.CPU.Reset()
	n.PPU.Reset()
	n.APU.Reset()
	n.Cycles = 0
	n.Frame = 0
}

// Step executes one CPU instruction (or serviced interrupt) and runs the
// PPU and APU forward by the equivalent number of cycles.
func (n *NES) Step() {
	cpuCyclesBefore := n.CPU.CycleCount()
	n.CPU.Step()
	cpuCycles := n.CPU.CycleCount() - cpuCyclesBefore

	result := n.PPU.Step(n.CPU.CycleCount())
	if result.VBlankNMI {
		n.CPU.TriggerNMI()
	}
	if result.ScanlineIRQ {
		n.CPU.TriggerIRQ()
	}

	for i := 0; i < cpuCycles; i++ {
		n.APU.Step()
	}

	n.Cycles = uint64(n.CPU.CycleCount())
}

// StepFrame executes until frame is complete
func (n *NES) StepFrame() {
	stepCount := 0
	maxSteps := 50000 // Proper limit for normal NES frame processing

	for !n.PPU.FrameComplete {
		n.Step()
		stepCount++

		// Safety check to prevent infinite loops during game freezes
		if stepCount > maxSteps {
			n.PPU.FrameComplete = true
			break
		}
	}

	n.PPU.FrameComplete = false
	// Frame counter is managed by PPU, don't increment here
	n.Frame = n.PPU.Frame
}

// GetInput returns the port 1 controller
func (n *NES) GetInput() *input.Controller {
	return n.Input
}

// GetInput2 returns the port 2 controller
func (n *NES) GetInput2() *input.Controller {
	return n.Input2
}

// GetFramebuffer returns the current framebuffer from PPU
func (n *NES) GetFramebuffer() []uint8 {
	return n.PPU.GetFramebuffer()
}

// GetFrame returns the current frame number
func (n *NES) GetFrame() uint64 {
	return n.Frame
}

// GetFramebufferRaw returns the raw indexed framebuffer: one 6-bit
// master-palette index per pixel, resolvable to RGB via ppu.MasterPalette().
// The SDL front end draws GetDisplayFramebuffer instead.
func (n *NES) GetFramebufferRaw() []uint8 {
	return n.PPU.FrameBuffer[:]
}

// GetDisplayFramebuffer returns the framebuffer resolved to RGBA bytes.
func (n *NES) GetDisplayFramebuffer() []uint8 {
	return n.PPU.GetFramebuffer()
}
