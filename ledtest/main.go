//go:build tinygo

// Command ledtest cycles the status NeoPixel through a fixed color
// sequence to check the wiring and data line before flashing proxmenu.

package main

import (
	"image/color"
	"machine"
	"time"

	"proxbench/statusled"

	"tinygo.org/x/drivers/ws2812"
)

const neopixelPin = machine.GP16

func main() {
	neopixelPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pixels := ws2812.NewWS2812(neopixelPin)
	led := statusled.New(&pixels)

	steps := []struct {
		name string
		c    color.RGBA
	}{
		{"red", color.RGBA{R: 5}},
		{"green", color.RGBA{G: 5}},
		{"blue", color.RGBA{B: 5}},
		{"cyan", statusled.Cyan},
		{"off", statusled.Off},
	}

	for {
		for _, s := range steps {
			if err := led.Set(s.c); err != nil {
				println("set LED:", err.Error())
			}
			println("LED", s.name)
			time.Sleep(time.Second)
		}
	}
}
