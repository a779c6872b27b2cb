package vcnl4040

import (
	"bytes"
	"errors"
	"testing"
)

// fakeBus emulates the VCNL4040 command-code protocol: reads are a
// repeated-start write of the command byte followed by a two-byte read,
// writes are a three-byte frame.
type fakeBus struct {
	regs   map[uint8][2]byte // little-endian register values
	writes [][]byte
	err    error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	if len(r) > 0 {
		v := b.regs[w[0]]
		copy(r, v[:])
		return nil
	}
	cp := make([]byte, len(w))
	copy(cp, w)
	b.writes = append(b.writes, cp)
	return nil
}

func (b *fakeBus) ReadRegister(addr uint8, reg uint8, buf []byte) error { return nil }

func (b *fakeBus) WriteRegister(addr uint8, reg uint8, buf []byte) error { return nil }

func TestConnected(t *testing.T) {
	tests := []struct {
		name string
		id   [2]byte
		want bool
	}{
		{"VCNL4040 ID", [2]byte{0x86, 0x01}, true},
		{"no device", [2]byte{0x00, 0x00}, false},
		{"byte-swapped ID (wrong endianness)", [2]byte{0x01, 0x86}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(&fakeBus{regs: map[uint8][2]byte{regID: tt.id}})
			got, err := d.Connected()
			if err != nil {
				t.Fatalf("Connected() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Connected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	bus := &fakeBus{regs: map[uint8][2]byte{regID: {0x86, 0x01}}}
	d := New(bus)

	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	// Both measurement blocks powered on by clearing the config words.
	want := [][]byte{
		{regALSConf, 0x00, 0x00},
		{regPSConf12, 0x00, 0x00},
		{regPSConf3MS, 0x00, 0x00},
	}
	if len(bus.writes) != len(want) {
		t.Fatalf("Configure wrote %d frames, want %d", len(bus.writes), len(want))
	}
	for i := range want {
		if !bytes.Equal(bus.writes[i], want[i]) {
			t.Errorf("write[%d] = % X, want % X", i, bus.writes[i], want[i])
		}
	}
}

func TestConfigureNoDevice(t *testing.T) {
	d := New(&fakeBus{regs: map[uint8][2]byte{}})
	if err := d.Configure(Config{}); err == nil {
		t.Fatal("Configure() expected error with no device on bus")
	}
}

func TestReadings(t *testing.T) {
	bus := &fakeBus{regs: map[uint8][2]byte{
		regPSData:    {0x3C, 0x00}, // 60, knob-distance from the sensor
		regALSData:   {0xE8, 0x03}, // 1000 counts
		regWhiteData: {0x34, 0x12},
	}}
	d := New(bus)

	if got, err := d.Proximity(); err != nil || got != 60 {
		t.Errorf("Proximity() = %d, %v, want 60, nil", got, err)
	}
	if got, err := d.AmbientLight(); err != nil || got != 1000 {
		t.Errorf("AmbientLight() = %d, %v, want 1000, nil", got, err)
	}
	if got, err := d.Lux(); err != nil || got != 100 {
		t.Errorf("Lux() = %v, %v, want 100, nil", got, err)
	}
	if got, err := d.White(); err != nil || got != 0x1234 {
		t.Errorf("White() = %d, %v, want %d, nil", got, err, 0x1234)
	}
}

func TestBusErrorPropagates(t *testing.T) {
	busErr := errors.New("i2c timeout")
	d := New(&fakeBus{err: busErr})

	if _, err := d.Proximity(); err != busErr {
		t.Errorf("Proximity() error = %v, want %v", err, busErr)
	}
	if err := d.Configure(Config{}); err != busErr {
		t.Errorf("Configure() error = %v, want %v", err, busErr)
	}
}
