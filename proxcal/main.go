//go:build tinygo

// Command proxcal prints raw VCNL4040 channel counts at 10 Hz for
// calibrating the proxmenu threshold: park an object at the distance
// that should trip the LED and read off the proximity counts.

package main

import (
	"machine"
	"strconv"
	"time"

	"proxbench/vcnl4040"
)

const debugLEDPin = machine.GP21

func main() {
	time.Sleep(time.Second)

	debugLED := debugLEDPin
	debugLED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		for {
			println("could not configure I2C:", err.Error())
			time.Sleep(time.Second)
		}
	}

	dev := vcnl4040.New(machine.I2C0)
	if err := dev.Configure(vcnl4040.Config{}); err != nil {
		for {
			println("VCNL4040 not responding:", err.Error())
			time.Sleep(time.Second)
		}
	}

	// Preallocated buffer so the print loop doesn't exhaust the heap
	// with fmt calls.
	printBuf := make([]byte, 0, 64)
	blink := false
	for {
		time.Sleep(100 * time.Millisecond)

		prox, err := dev.Proximity()
		if err != nil {
			println("read proximity:", err.Error())
			continue
		}
		als, err := dev.AmbientLight()
		if err != nil {
			println("read ambient:", err.Error())
			continue
		}
		white, err := dev.White()
		if err != nil {
			println("read white:", err.Error())
			continue
		}

		printBuf = printBuf[:0]
		printBuf = append(printBuf, "ps: "...)
		printBuf = strconv.AppendUint(printBuf, uint64(prox), 10)
		printBuf = append(printBuf, "  als: "...)
		printBuf = strconv.AppendUint(printBuf, uint64(als), 10)
		printBuf = append(printBuf, "  white: "...)
		printBuf = strconv.AppendUint(printBuf, uint64(white), 10)
		printBuf = append(printBuf, "\r\n"...)
		machine.Serial.Write(printBuf)

		blink = !blink
		debugLED.Set(blink)
	}
}
