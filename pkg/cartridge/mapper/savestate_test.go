package mapper

import "testing"

func writeMMC1(m *Mapper1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		bit := (value >> i) & 1
		m.WritePRG(addr, bit)
	}
}

func TestMapper0SaveLoadStateRoundTrip(t *testing.T) {
	m := NewMapper0(&CartridgeData{PRGROM: testPRGROM16KB, CHRROM: testCHRROM8KB})
	data := m.SaveState()

	other := NewMapper0(&CartridgeData{PRGROM: testPRGROM16KB, CHRROM: testCHRROM8KB})
	if err := other.LoadState(data); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if other.ReadPRG(0x8000) != m.ReadPRG(0x8000) {
		t.Errorf("NROM has no mutable state, reads should still match")
	}
}

func TestMapper1SaveLoadStateRoundTrip(t *testing.T) {
	m := NewMapper1(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	writeMMC1(m, 0x8000, 0x0F) // 16KB PRG mode
	writeMMC1(m, 0xE000, 0x01) // select PRG bank 1

	data := m.SaveState()

	other := NewMapper1(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	if err := other.LoadState(data); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if other.prgBank != m.prgBank || other.prgMode != m.prgMode || other.control != m.control {
		t.Errorf("bank/mode mismatch: got %+v, want %+v", other, m)
	}
	if other.ReadPRG(0x8000) != m.ReadPRG(0x8000) {
		t.Errorf("bank-switched read mismatch after load")
	}
}

func TestMapper2SaveLoadStateRoundTrip(t *testing.T) {
	m := NewMapper2(&CartridgeData{PRGROM: testPRGROM32KB})
	m.WritePRG(0x8000, 0x01)

	data := m.SaveState()

	other := NewMapper2(&CartridgeData{PRGROM: testPRGROM32KB})
	if err := other.LoadState(data); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if other.prgBank != m.prgBank {
		t.Errorf("prgBank mismatch: got %d, want %d", other.prgBank, m.prgBank)
	}
}

func TestMapper3SaveLoadStateRoundTrip(t *testing.T) {
	m := NewMapper3(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM32KB})
	m.WritePRG(0x8000, 0x02)

	data := m.SaveState()

	other := NewMapper3(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM32KB})
	if err := other.LoadState(data); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if other.chrBank != m.chrBank {
		t.Errorf("chrBank mismatch: got %d, want %d", other.chrBank, m.chrBank)
	}
}

func TestMapper4SaveLoadStateRoundTrip(t *testing.T) {
	m := NewMapper4(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	m.WritePRG(0x8000, 0x00) // select bank register 0
	m.WritePRG(0x8001, 0x05) // bank data
	m.WritePRG(0xA000, 0x01) // mirroring
	m.WritePRG(0xC000, 0x10) // IRQ reload value
	m.WritePRG(0xE001, 0x00) // enable IRQ

	data := m.SaveState()

	other := NewMapper4(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	if err := other.LoadState(data); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if other.bankRegisters != m.bankRegisters {
		t.Errorf("bankRegisters mismatch: got %v, want %v", other.bankRegisters, m.bankRegisters)
	}
	if other.bankSelect != m.bankSelect || other.mirroringMode != m.mirroringMode {
		t.Errorf("bankSelect/mirroringMode mismatch")
	}
	if other.irqReloadValue != m.irqReloadValue || other.irqEnabled != m.irqEnabled {
		t.Errorf("IRQ state mismatch")
	}
}

func TestMapper7SaveLoadStateRoundTrip(t *testing.T) {
	m := NewMapper7(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	m.WritePRG(0x8000, 0x11) // select bank 1, nametable B

	data := m.SaveState()

	other := NewMapper7(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	if err := other.LoadState(data); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if other.prgBank != m.prgBank || other.mirroring != m.mirroring {
		t.Errorf("prgBank/mirroring mismatch: got %+v, want %+v", other, m)
	}
}

func TestMapperLoadStateShortBlobFails(t *testing.T) {
	m1 := NewMapper1(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	if err := m1.LoadState([]byte{1}); err == nil {
		t.Errorf("expected error loading truncated mapper1 state")
	}

	m4 := NewMapper4(&CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB})
	if err := m4.LoadState([]byte{1, 2, 3}); err == nil {
		t.Errorf("expected error loading truncated mapper4 state")
	}
}
