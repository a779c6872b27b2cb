// Package vcnl4040 provides a driver for the Vishay VCNL4040 proximity
// and ambient light sensor.
//
// Datasheet: https://www.vishay.com/docs/84274/vcnl4040.pdf
package vcnl4040

import (
	"errors"

	"tinygo.org/x/drivers"
)

var (
	errNotConnected = errors.New("vcnl4040: no device with VCNL4040 ID on bus")
)

// Config holds the configuration for the sensor. The zero value selects
// the power-on defaults with both measurement blocks enabled: 80 ms ALS
// integration time, 1/40 IRED duty cycle, 12-bit proximity output.
type Config struct{}

// Device wraps an I2C connection to a VCNL4040 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cmd [3]byte
	rx  [2]byte
}

// New creates a new VCNL4040 connection. The I2C bus must already be
// configured.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: DefaultAddress,
	}
}

// Connected reports whether a VCNL4040 answers on the bus.
func (d *Device) Connected() (bool, error) {
	id, err := d.readRegister(regID)
	if err != nil {
		return false, err
	}
	return id == deviceID, nil
}

// Configure verifies the device identity and powers on the ambient light
// and proximity measurement blocks.
func (d *Device) Configure(cfg Config) error {
	ok, err := d.Connected()
	if err != nil {
		return err
	}
	if !ok {
		return errNotConnected
	}
	// Power-on register values have the shutdown bits set. Writing
	// zeros keeps every other default and starts both blocks.
	if err := d.writeRegister(regALSConf, 0x0000); err != nil {
		return err
	}
	if err := d.writeRegister(regPSConf12, 0x0000); err != nil {
		return err
	}
	return d.writeRegister(regPSConf3MS, 0x0000)
}

// Proximity returns the proximity counts. The scale is roughly
// logarithmic in distance: about 1 with nothing in range (200 mm+) up to
// about 60 at 10 mm.
func (d *Device) Proximity() (uint16, error) {
	return d.readRegister(regPSData)
}

// AmbientLight returns the raw ambient light counts.
func (d *Device) AmbientLight() (uint16, error) {
	return d.readRegister(regALSData)
}

// Lux returns the ambient illumination in lux, scaled for the default
// 80 ms integration time.
func (d *Device) Lux() (float32, error) {
	counts, err := d.readRegister(regALSData)
	if err != nil {
		return 0, err
	}
	return float32(counts) * luxPerCount, nil
}

// White returns the white channel counts.
func (d *Device) White() (uint16, error) {
	return d.readRegister(regWhiteData)
}

// readRegister reads a 16-bit register with a repeated-start
// write/read, low byte first.
func (d *Device) readRegister(reg uint8) (uint16, error) {
	d.cmd[0] = reg
	err := d.bus.Tx(d.Address, d.cmd[:1], d.rx[:2])
	if err != nil {
		return 0, err
	}
	return uint16(d.rx[0]) | uint16(d.rx[1])<<8, nil
}

func (d *Device) writeRegister(reg uint8, value uint16) error {
	d.cmd[0] = reg
	d.cmd[1] = byte(value)
	d.cmd[2] = byte(value >> 8)
	return d.bus.Tx(d.Address, d.cmd[:3], nil)
}
