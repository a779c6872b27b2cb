//go:build tinygo

// Command proxmenu drives a serial-console menu for a VCNL4040
// proximity/lux sensor with an Adafruit I2C rotary encoder as input and
// a NeoPixel as a proximity threshold indicator.
//
// Wiring (Raspberry Pi Pico): encoder and sensor share I2C0 on GP4/GP5,
// the NeoPixel data line is on GP16.

package main

import (
	"log/slog"
	"machine"
	"time"

	"proxbench/proxmenu/menu"
	"proxbench/seesaw"
	"proxbench/statusled"
	"proxbench/vcnl4040"

	"tinygo.org/x/drivers/ws2812"
)

const (
	// Knob polling rate. 30 Hz keeps the knob feeling responsive.
	pollInterval = 33 * time.Millisecond
	// Live readout redraw rate. 10 Hz reduces console flicker.
	readoutInterval = 100 * time.Millisecond

	// Proximity threshold for the status LED, adjustable from the
	// menu. The VCNL4040 reads about 2 at 200 mm and about 60 at
	// 10 mm, so the useful range is small.
	thresholdMin     = 2
	thresholdMax     = 60
	thresholdDefault = 4
)

const neopixelPin = machine.GP16

// app is the state shared by the event loop and the menu actions.
type app struct {
	enc       *seesaw.Device
	sensor    *vcnl4040.Device
	led       *statusled.LED
	threshold int32
	// printBuf is reused by the readout loops so they don't allocate.
	printBuf []byte
}

func main() {
	// Give a USB console a moment to enumerate before the first logs.
	time.Sleep(time.Second)

	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		printErrForever(logger, "configure I2C", slog.Any("reason", err))
	}

	enc := seesaw.New(machine.I2C0)
	if err := enc.Configure(seesaw.Config{}); err != nil {
		printErrForever(logger, "configure rotary encoder", slog.Any("reason", err))
	}

	sensor := vcnl4040.New(machine.I2C0)
	if err := sensor.Configure(vcnl4040.Config{}); err != nil {
		printErrForever(logger, "configure VCNL4040", slog.Any("reason", err))
	}

	neopixelPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pixels := ws2812.NewWS2812(neopixelPin)

	a := &app{
		enc:       enc,
		sensor:    sensor,
		led:       statusled.New(&pixels),
		threshold: thresholdDefault,
		printBuf:  make([]byte, 0, 40),
	}

	m := menu.New(machine.Serial, "Main", []menu.Item{
		{Name: "Show Proximity", Run: a.showProximity},
		{Name: "Show Lux", Run: a.showLux},
		{Name: "Set Threshold", Run: a.setThreshold},
	})

	var clicks menu.ClickDetector
	for {
		time.Sleep(pollInterval)

		// Repaint every iteration so a console attached after boot
		// sees the menu immediately.
		m.Render()

		pressed, err := a.enc.Pressed()
		if err != nil {
			logger.Error("read encoder button", slog.Any("reason", err))
			continue
		}
		delta, err := a.enc.Delta()
		if err != nil {
			logger.Error("read encoder delta", slog.Any("reason", err))
			continue
		}

		if clicks.Clicked(pressed) {
			if err := m.Activate(); err != nil {
				logger.Error("menu action", slog.Any("reason", err))
			}
		}
		if delta != 0 {
			m.Move(delta)
		}

		if err := a.updateLED(); err != nil {
			logger.Error("update status LED", slog.Any("reason", err))
		}
	}
}

// printErrForever logs msg at 1 Hz. It blocks forever, in case the
// serial monitor is not attached when the error first happens.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
