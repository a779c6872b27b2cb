package seesaw

import (
	"bytes"
	"errors"
	"testing"
)

// fakeBus emulates the Seesaw two-phase register protocol: a write of the
// (module, function) pair addresses a register, a follow-up read returns
// its canned value.
type fakeBus struct {
	regs    map[[2]byte][]byte
	writes  [][]byte
	pending [2]byte
	err     error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	if len(w) > 0 {
		cp := make([]byte, len(w))
		copy(cp, w)
		b.writes = append(b.writes, cp)
		b.pending = [2]byte{w[0], w[1]}
	}
	if len(r) > 0 {
		copy(r, b.regs[b.pending])
	}
	return nil
}

func (b *fakeBus) ReadRegister(addr uint8, reg uint8, buf []byte) error { return nil }

func (b *fakeBus) WriteRegister(addr uint8, reg uint8, buf []byte) error { return nil }

func newTestDevice(bus *fakeBus) *Device {
	d := New(bus)
	d.ReadDelay = 0
	return d
}

func TestProductID(t *testing.T) {
	bus := &fakeBus{regs: map[[2]byte][]byte{
		{statusBase, statusVersion}: {0x13, 0x7F, 0x01, 0x02}, // 4991 << 16 | datecode
	}}
	d := newTestDevice(bus)

	id, err := d.ProductID()
	if err != nil {
		t.Fatalf("ProductID() error = %v", err)
	}
	if id != RotaryProductID {
		t.Errorf("ProductID() = %d, want %d", id, RotaryProductID)
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name    string
		version []byte
		wantErr bool
	}{
		{"rotary encoder firmware", []byte{0x13, 0x7F, 0x00, 0x00}, false},
		{"soil sensor firmware", []byte{0x0F, 0xBA, 0x00, 0x00}, true},
		{"all zeros (no device)", []byte{0x00, 0x00, 0x00, 0x00}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &fakeBus{regs: map[[2]byte][]byte{
				{statusBase, statusVersion}: tt.version,
			}}
			d := newTestDevice(bus)

			err := d.Configure(Config{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Configure() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Configure() error = %v", err)
			}

			// The button pin setup is three bulk writes carrying the
			// pin 24 mask: direction clear, pull enable, bulk set.
			mask := []byte{0x01, 0x00, 0x00, 0x00}
			want := [][]byte{
				append([]byte{gpioBase, gpioDirClrBulk}, mask...),
				append([]byte{gpioBase, gpioPullEnSet}, mask...),
				append([]byte{gpioBase, gpioBulkSet}, mask...),
			}
			got := bus.writes[1:] // writes[0] addressed the version register
			if len(got) != len(want) {
				t.Fatalf("pullup setup wrote %d frames, want %d", len(got), len(want))
			}
			for i := range want {
				if !bytes.Equal(got[i], want[i]) {
					t.Errorf("write[%d] = % X, want % X", i, got[i], want[i])
				}
			}
		})
	}
}

func TestPressed(t *testing.T) {
	tests := []struct {
		name string
		bulk []byte
		want bool
	}{
		{"pin high (released)", []byte{0x01, 0x00, 0x00, 0x00}, false},
		{"pin low (pressed)", []byte{0x00, 0x00, 0x00, 0x00}, true},
		{"other pins high, button low", []byte{0xFE, 0xFF, 0xFF, 0xFF}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &fakeBus{regs: map[[2]byte][]byte{
				{gpioBase, gpioBulk}: tt.bulk,
			}}
			d := newTestDevice(bus)

			got, err := d.Pressed()
			if err != nil {
				t.Fatalf("Pressed() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Pressed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want int32
	}{
		{"no movement", []byte{0x00, 0x00, 0x00, 0x00}, 0},
		{"one detent clockwise", []byte{0x00, 0x00, 0x00, 0x01}, 1},
		{"one detent counterclockwise", []byte{0xFF, 0xFF, 0xFF, 0xFF}, -1},
		{"fast spin", []byte{0x00, 0x00, 0x00, 0x0C}, 12},
		{"fast reverse spin", []byte{0xFF, 0xFF, 0xFF, 0xF4}, -12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &fakeBus{regs: map[[2]byte][]byte{
				{encoderBase, encoderDelta}: tt.raw,
			}}
			d := newTestDevice(bus)

			got, err := d.Delta()
			if err != nil {
				t.Fatalf("Delta() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Delta() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetPosition(t *testing.T) {
	bus := &fakeBus{regs: map[[2]byte][]byte{}}
	d := newTestDevice(bus)

	if err := d.SetPosition(-2); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	want := []byte{encoderBase, encoderPosition, 0xFF, 0xFF, 0xFF, 0xFE}
	if len(bus.writes) != 1 || !bytes.Equal(bus.writes[0], want) {
		t.Errorf("SetPosition wrote % X, want % X", bus.writes, want)
	}
}

func TestBusErrorPropagates(t *testing.T) {
	busErr := errors.New("i2c timeout")
	bus := &fakeBus{err: busErr}
	d := newTestDevice(bus)

	if _, err := d.Delta(); err != busErr {
		t.Errorf("Delta() error = %v, want %v", err, busErr)
	}
	if _, err := d.Pressed(); err != busErr {
		t.Errorf("Pressed() error = %v, want %v", err, busErr)
	}
	if err := d.Configure(Config{}); err != busErr {
		t.Errorf("Configure() error = %v, want %v", err, busErr)
	}
}
