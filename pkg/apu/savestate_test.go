package apu

import "testing"

func TestAPUSaveLoadStateRoundTrip(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4000, 0xBF)
	a.WriteRegister(0x4002, 0x34)
	a.WriteRegister(0x4003, 0x05)
	a.WriteRegister(0x400C, 0x3F)
	a.WriteRegister(0x4015, 0x0F)
	for i := 0; i < 1000; i++ {
		a.Step()
	}

	data := a.SaveState()

	b := createTestAPU()
	if err := b.LoadState(data); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}

	if b.Pulse1 != a.Pulse1 {
		t.Errorf("Pulse1 mismatch: got %+v, want %+v", b.Pulse1, a.Pulse1)
	}
	if b.Pulse2 != a.Pulse2 {
		t.Errorf("Pulse2 mismatch: got %+v, want %+v", b.Pulse2, a.Pulse2)
	}
	if b.Triangle != a.Triangle {
		t.Errorf("Triangle mismatch: got %+v, want %+v", b.Triangle, a.Triangle)
	}
	if b.Noise != a.Noise {
		t.Errorf("Noise mismatch: got %+v, want %+v", b.Noise, a.Noise)
	}
	if b.DMC != a.DMC {
		t.Errorf("DMC mismatch: got %+v, want %+v", b.DMC, a.DMC)
	}
	if b.FrameCounter != a.FrameCounter || b.FrameIRQ != a.FrameIRQ ||
		b.FrameStep != a.FrameStep || b.frameCycles != a.frameCycles {
		t.Errorf("frame sequencer mismatch")
	}
	if b.Cycles != a.Cycles {
		t.Errorf("Cycles mismatch: got %d, want %d", b.Cycles, a.Cycles)
	}
}

func TestAPULoadStateShortBlobFails(t *testing.T) {
	a := createTestAPU()
	if err := a.LoadState([]byte{1, 2, 3}); err != errShortState {
		t.Errorf("expected errShortState, got %v", err)
	}
}
