//go:build tinygo

package main

import (
	"machine"
	"time"

	"proxbench/proxmenu/menu"
)

var newline = []byte{'\n'}

// showProximity redraws the live proximity reading on one console line
// until the knob is clicked.
func (a *app) showProximity() error {
	println("VCNL4040 Proximity (click to go back):")
	var clicks menu.ClickDetector
	for {
		time.Sleep(readoutInterval)

		prox, err := a.sensor.Proximity()
		if err != nil {
			return err
		}
		a.printBuf = menu.PrintReading(machine.Serial, a.printBuf, "proximity", int64(prox))

		pressed, err := a.enc.Pressed()
		if err != nil {
			return err
		}
		if clicks.Clicked(pressed) {
			machine.Serial.Write(newline)
			return nil
		}

		if err := a.updateLED(); err != nil {
			return err
		}
	}
}

// showLux redraws the live ambient illumination reading on one console
// line until the knob is clicked.
func (a *app) showLux() error {
	println("VCNL4040 Ambient Lux (click to go back):")
	var clicks menu.ClickDetector
	for {
		time.Sleep(readoutInterval)

		lux, err := a.sensor.Lux()
		if err != nil {
			return err
		}
		a.printBuf = menu.PrintReading(machine.Serial, a.printBuf, "lux", int64(lux))

		pressed, err := a.enc.Pressed()
		if err != nil {
			return err
		}
		if clicks.Clicked(pressed) {
			machine.Serial.Write(newline)
			return nil
		}

		if err := a.updateLED(); err != nil {
			return err
		}
	}
}

// setThreshold adjusts the LED proximity threshold with the knob. A
// click keeps the current value. Polls at the knob rate, not the
// readout rate, so turning feels immediate.
func (a *app) setThreshold() error {
	println("Proximity threshold, range 2..60 (click to save):")
	var clicks menu.ClickDetector
	for {
		time.Sleep(pollInterval)

		a.printBuf = menu.PrintReading(machine.Serial, a.printBuf, "threshold", int64(a.threshold))

		pressed, err := a.enc.Pressed()
		if err != nil {
			return err
		}
		delta, err := a.enc.Delta()
		if err != nil {
			return err
		}

		if clicks.Clicked(pressed) {
			machine.Serial.Write(newline)
			return nil
		}
		if delta != 0 {
			a.threshold = menu.Clamp(a.threshold+delta, thresholdMin, thresholdMax)
		}

		if err := a.updateLED(); err != nil {
			return err
		}
	}
}

// updateLED refreshes the threshold indicator from the current
// proximity reading. Every polling loop calls this so the LED stays
// live inside menu actions too.
func (a *app) updateLED() error {
	prox, err := a.sensor.Proximity()
	if err != nil {
		return err
	}
	return a.led.Update(prox, a.threshold)
}
