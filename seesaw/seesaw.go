// Package seesaw provides a driver for the Adafruit I2C QT rotary encoder
// breakouts (products 4991 and 5880), which run Seesaw firmware.
//
// Datasheet / protocol docs:
// https://learn.adafruit.com/adafruit-i2c-qt-rotary-encoder
// https://learn.adafruit.com/adafruit-seesaw-atsamd09-breakout
package seesaw

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

var (
	errWrongProduct = errors.New("seesaw: unexpected product ID")
)

// Config holds the configuration for a Seesaw rotary encoder.
type Config struct {
	// ProductID is the expected product ID reported by the Seesaw
	// firmware. Defaults to RotaryProductID.
	ProductID uint16
}

// Device wraps an I2C connection to a Seesaw rotary encoder.
type Device struct {
	bus     drivers.I2C
	Address uint16

	// ReadDelay is the pause between addressing a Seesaw register and
	// reading its value. The firmware needs a moment to prepare the
	// response.
	ReadDelay time.Duration

	tx [6]byte
	rx [4]byte
}

// New creates a new Seesaw rotary encoder connection. The I2C bus must
// already be configured.
//
// This function only creates the Device object, it does not touch the
// device. Call Configure before using it.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:       bus,
		Address:   DefaultAddress,
		ReadDelay: time.Millisecond,
	}
}

// Configure verifies the Seesaw firmware identity and sets up the
// knob-click button pin as an input with pullup.
func (d *Device) Configure(cfg Config) error {
	if cfg.ProductID == 0 {
		cfg.ProductID = RotaryProductID
	}
	id, err := d.ProductID()
	if err != nil {
		return err
	}
	if id != cfg.ProductID {
		return errWrongProduct
	}
	return d.pinModeInputPullup(ButtonPin)
}

// ProductID returns the product ID from the upper half of the status
// VERSION register.
func (d *Device) ProductID() (uint16, error) {
	err := d.read(statusBase, statusVersion, d.rx[:4])
	if err != nil {
		return 0, err
	}
	return uint16(d.rx[0])<<8 | uint16(d.rx[1]), nil
}

// Pressed returns true while the knob button is held down. The button
// pulls the GPIO pin low when pressed.
func (d *Device) Pressed() (bool, error) {
	err := d.read(gpioBase, gpioBulk, d.rx[:4])
	if err != nil {
		return false, err
	}
	pins := uint32(d.rx[0])<<24 | uint32(d.rx[1])<<16 | uint32(d.rx[2])<<8 | uint32(d.rx[3])
	return pins&(1<<ButtonPin) == 0, nil
}

// Delta returns how far the knob was turned since the last call.
// Clockwise is positive.
func (d *Device) Delta() (int32, error) {
	return d.readInt32(encoderBase, encoderDelta)
}

// Position returns the accumulated knob position.
func (d *Device) Position() (int32, error) {
	return d.readInt32(encoderBase, encoderPosition)
}

// SetPosition overwrites the accumulated knob position.
func (d *Device) SetPosition(pos int32) error {
	var data [4]byte
	data[0] = byte(pos >> 24)
	data[1] = byte(pos >> 16)
	data[2] = byte(pos >> 8)
	data[3] = byte(pos)
	return d.write(encoderBase, encoderPosition, data[:])
}

// pinModeInputPullup configures a Seesaw GPIO pin as an input with the
// internal pullup enabled: clear the output direction bit, enable the
// pull resistor, then drive the bulk output high to select pull-up.
func (d *Device) pinModeInputPullup(pin uint8) error {
	mask := uint32(1) << pin
	var data [4]byte
	data[0] = byte(mask >> 24)
	data[1] = byte(mask >> 16)
	data[2] = byte(mask >> 8)
	data[3] = byte(mask)
	if err := d.write(gpioBase, gpioDirClrBulk, data[:]); err != nil {
		return err
	}
	if err := d.write(gpioBase, gpioPullEnSet, data[:]); err != nil {
		return err
	}
	return d.write(gpioBase, gpioBulkSet, data[:])
}

func (d *Device) readInt32(module, function uint8) (int32, error) {
	err := d.read(module, function, d.rx[:4])
	if err != nil {
		return 0, err
	}
	return int32(uint32(d.rx[0])<<24 | uint32(d.rx[1])<<16 | uint32(d.rx[2])<<8 | uint32(d.rx[3])), nil
}

// read addresses a Seesaw register, waits ReadDelay for the firmware to
// prepare the response, then reads len(buf) bytes.
func (d *Device) read(module, function uint8, buf []byte) error {
	d.tx[0] = module
	d.tx[1] = function
	if err := d.bus.Tx(d.Address, d.tx[:2], nil); err != nil {
		return err
	}
	time.Sleep(d.ReadDelay)
	return d.bus.Tx(d.Address, nil, buf)
}

func (d *Device) write(module, function uint8, data []byte) error {
	d.tx[0] = module
	d.tx[1] = function
	n := copy(d.tx[2:], data)
	return d.bus.Tx(d.Address, d.tx[:2+n], nil)
}
