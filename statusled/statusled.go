// Package statusled drives a single addressable LED as a proximity
// threshold indicator.
package statusled

import "image/color"

// Colors used by the threshold indicator. The values are kept low so the
// LED is comfortable to look at on a desk.
var (
	Cyan = color.RGBA{R: 0, G: 5, B: 5}
	Off  = color.RGBA{}
)

// ColorWriter transmits pixel colors to an LED strip. ws2812.Device
// implements it.
type ColorWriter interface {
	WriteColors(buf []color.RGBA) error
}

// LED is a one-pixel status indicator.
type LED struct {
	w   ColorWriter
	buf [1]color.RGBA
}

// New returns an LED writing to w.
func New(w ColorWriter) *LED {
	return &LED{w: w}
}

// Set writes a color to the LED.
func (l *LED) Set(c color.RGBA) error {
	l.buf[0] = c
	return l.w.WriteColors(l.buf[:])
}

// Update sets the LED to cyan when proximity has reached the threshold
// and turns it off otherwise.
func (l *LED) Update(proximity uint16, threshold int32) error {
	if int32(proximity) >= threshold {
		return l.Set(Cyan)
	}
	return l.Set(Off)
}
