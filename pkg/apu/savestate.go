package apu

import "errors"

var errShortState = errors.New("apu save state: blob too short")

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

func appendEnvelope(buf []byte, e EnvelopeGenerator) []byte {
	return append(buf, boolToByte(e.Start), boolToByte(e.Loop), boolToByte(e.Constant), e.Volume, e.Counter, e.Divider)
}

func readEnvelope(data []byte) (EnvelopeGenerator, int) {
	return EnvelopeGenerator{
		Start:    byteToBool(data[0]),
		Loop:     byteToBool(data[1]),
		Constant: byteToBool(data[2]),
		Volume:   data[3],
		Counter:  data[4],
		Divider:  data[5],
	}, 6
}

func appendLength(buf []byte, l LengthCounter) []byte {
	return append(buf, boolToByte(l.Enabled), l.Value, boolToByte(l.Halt))
}

func readLength(data []byte) (LengthCounter, int) {
	return LengthCounter{
		Enabled: byteToBool(data[0]),
		Value:   data[1],
		Halt:    byteToBool(data[2]),
	}, 3
}

func appendSweep(buf []byte, s SweepUnit) []byte {
	return append(buf, boolToByte(s.Enabled), s.Period, boolToByte(s.Negate), s.Shift, boolToByte(s.Reload), s.Counter)
}

func readSweep(data []byte) (SweepUnit, int) {
	return SweepUnit{
		Enabled: byteToBool(data[0]),
		Period:  data[1],
		Negate:  byteToBool(data[2]),
		Shift:   data[3],
		Reload:  byteToBool(data[4]),
		Counter: data[5],
	}, 6
}

func appendPulse(buf []byte, p PulseChannel) []byte {
	buf = append(buf, boolToByte(p.Enabled), p.DutyCycle, p.Volume)
	buf = appendSweep(buf, p.Sweep)
	buf = appendLength(buf, p.Length)
	buf = appendEnvelope(buf, p.Envelope)
	buf = append(buf, byte(p.Timer), byte(p.Timer>>8), byte(p.TimerValue), byte(p.TimerValue>>8), p.Sequence)
	return buf
}

func readPulse(data []byte) (PulseChannel, int) {
	var p PulseChannel
	p.Enabled = byteToBool(data[0])
	p.DutyCycle = data[1]
	p.Volume = data[2]
	i := 3
	var n int
	p.Sweep, n = readSweep(data[i:])
	i += n
	p.Length, n = readLength(data[i:])
	i += n
	p.Envelope, n = readEnvelope(data[i:])
	i += n
	p.Timer = uint16(data[i]) | uint16(data[i+1])<<8
	p.TimerValue = uint16(data[i+2]) | uint16(data[i+3])<<8
	p.Sequence = data[i+4]
	i += 5
	return p, i
}

// SaveState returns all channel generator state, the frame sequencer, and
// the cumulative cycle counter as a fixed-layout byte blob.
func (a *APU) SaveState() []byte {
	buf := make([]byte, 0, 128)
	buf = appendPulse(buf, a.Pulse1)
	buf = appendPulse(buf, a.Pulse2)

	buf = append(buf, boolToByte(a.Triangle.Enabled), a.Triangle.LinearCounter, a.Triangle.LinearReload, boolToByte(a.Triangle.LinearControl))
	buf = appendLength(buf, a.Triangle.Length)
	buf = append(buf, byte(a.Triangle.Timer), byte(a.Triangle.Timer>>8), byte(a.Triangle.TimerValue), byte(a.Triangle.TimerValue>>8), a.Triangle.Sequence)

	buf = append(buf, boolToByte(a.Noise.Enabled), a.Noise.Volume)
	buf = appendLength(buf, a.Noise.Length)
	buf = appendEnvelope(buf, a.Noise.Envelope)
	buf = append(buf, byte(a.Noise.Timer), byte(a.Noise.Timer>>8), byte(a.Noise.TimerValue), byte(a.Noise.TimerValue>>8))
	buf = append(buf, byte(a.Noise.ShiftReg), byte(a.Noise.ShiftReg>>8), boolToByte(a.Noise.Mode))

	d := a.DMC
	buf = append(buf, boolToByte(d.Enabled), boolToByte(d.IRQEnabled), boolToByte(d.IRQFlag), boolToByte(d.Loop), d.Rate, d.LoadCounter)
	buf = append(buf, byte(d.SampleAddress), byte(d.SampleAddress>>8), byte(d.SampleLength), byte(d.SampleLength>>8))
	buf = append(buf, byte(d.CurrentAddress), byte(d.CurrentAddress>>8), byte(d.CurrentLength), byte(d.CurrentLength>>8))
	buf = append(buf, d.Buffer, d.ShiftReg, d.BitsRemaining, boolToByte(d.Silence), d.SampleBuffer, boolToByte(d.BufferEmpty))

	buf = append(buf, a.FrameCounter, boolToByte(a.FrameIRQ))
	buf = append(buf, int32ToBytes(int32(a.FrameStep))...)
	buf = append(buf, int32ToBytes(int32(a.frameCycles))...)

	cycles := a.Cycles
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(cycles>>(8*i)))
	}

	return buf
}

// LoadState restores channel generator, frame-sequencer, and cycle-counter
// state from a blob previously returned by SaveState.
func (a *APU) LoadState(data []byte) error {
	const pulseLen = 3 + 6 + 3 + 6 + 5
	const triLen = 4 + 3 + 5
	const noiseLen = 2 + 3 + 6 + 4 + 3
	const dmcLen = 6 + 4 + 4 + 6
	const tailLen = 2 + 4 + 4 + 8
	minLen := pulseLen*2 + triLen + noiseLen + dmcLen + tailLen
	if len(data) < minLen {
		return errShortState
	}

	i := 0
	var n int
	a.Pulse1, n = readPulse(data[i:])
	i += n
	a.Pulse2, n = readPulse(data[i:])
	i += n

	a.Triangle.Enabled = byteToBool(data[i])
	a.Triangle.LinearCounter = data[i+1]
	a.Triangle.LinearReload = data[i+2]
	a.Triangle.LinearControl = byteToBool(data[i+3])
	i += 4
	a.Triangle.Length, n = readLength(data[i:])
	i += n
	a.Triangle.Timer = uint16(data[i]) | uint16(data[i+1])<<8
	a.Triangle.TimerValue = uint16(data[i+2]) | uint16(data[i+3])<<8
	a.Triangle.Sequence = data[i+4]
	i += 5

	a.Noise.Enabled = byteToBool(data[i])
	a.Noise.Volume = data[i+1]
	i += 2
	a.Noise.Length, n = readLength(data[i:])
	i += n
	a.Noise.Envelope, n = readEnvelope(data[i:])
	i += n
	a.Noise.Timer = uint16(data[i]) | uint16(data[i+1])<<8
	a.Noise.TimerValue = uint16(data[i+2]) | uint16(data[i+3])<<8
	i += 4
	a.Noise.ShiftReg = uint16(data[i]) | uint16(data[i+1])<<8
	a.Noise.Mode = byteToBool(data[i+2])
	i += 3

	a.DMC.Enabled = byteToBool(data[i])
	a.DMC.IRQEnabled = byteToBool(data[i+1])
	a.DMC.IRQFlag = byteToBool(data[i+2])
	a.DMC.Loop = byteToBool(data[i+3])
	a.DMC.Rate = data[i+4]
	a.DMC.LoadCounter = data[i+5]
	i += 6
	a.DMC.SampleAddress = uint16(data[i]) | uint16(data[i+1])<<8
	a.DMC.SampleLength = uint16(data[i+2]) | uint16(data[i+3])<<8
	i += 4
	a.DMC.CurrentAddress = uint16(data[i]) | uint16(data[i+1])<<8
	a.DMC.CurrentLength = uint16(data[i+2]) | uint16(data[i+3])<<8
	i += 4
	a.DMC.Buffer = data[i]
	a.DMC.ShiftReg = data[i+1]
	a.DMC.BitsRemaining = data[i+2]
	a.DMC.Silence = byteToBool(data[i+3])
	a.DMC.SampleBuffer = data[i+4]
	a.DMC.BufferEmpty = byteToBool(data[i+5])
	i += 6

	a.FrameCounter = data[i]
	a.FrameIRQ = byteToBool(data[i+1])
	i += 2
	a.FrameStep = int(bytesToInt32(data[i : i+4]))
	i += 4
	a.frameCycles = int(bytesToInt32(data[i : i+4]))
	i += 4

	var cycles uint64
	for j := 0; j < 8; j++ {
		cycles |= uint64(data[i+j]) << (8 * j)
	}
	a.Cycles = cycles

	return nil
}
