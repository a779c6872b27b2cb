package seesaw

// Seesaw registers are addressed by a (module base, function) byte pair.
// Multi-byte values are big-endian on the wire.

// DefaultAddress is the factory I2C address of the Adafruit rotary
// encoder breakouts (#4991, #5880).
const DefaultAddress = 0x36

// RotaryProductID is the product ID reported by the rotary encoder
// breakout firmware (upper 16 bits of the status VERSION register).
const RotaryProductID = 4991

// ButtonPin is the Seesaw GPIO pin wired to the knob-click button.
const ButtonPin = 24

// Module base addresses.
const (
	statusBase  = 0x00
	gpioBase    = 0x01
	encoderBase = 0x11
)

// Status module functions.
const (
	statusHWID    = 0x01
	statusVersion = 0x02
	statusSwrst   = 0x7F
)

// GPIO module functions. The bulk registers carry a 32-bit pin mask.
const (
	gpioDirClrBulk = 0x03
	gpioBulk       = 0x04
	gpioBulkSet    = 0x05
	gpioPullEnSet  = 0x0B
)

// Encoder module functions.
const (
	encoderPosition = 0x30
	encoderDelta    = 0x40
)
