//go:build tinygo

// Command mqttprox runs on a Raspberry Pi Pico W and publishes VCNL4040
// proximity/lux readings to an MQTT broker as JSON, while mirroring the
// proxmenu sketch's threshold LED with a fixed threshold.
//
// WiFi credentials come in through linker flags, see package wifi.

package main

import (
	"log/slog"
	"machine"
	"net/netip"
	"time"

	"proxbench/mqttprox/mqtt"
	"proxbench/mqttprox/sensor"
	"proxbench/mqttprox/wifi"
	"proxbench/statusled"
	"proxbench/vcnl4040"

	"tinygo.org/x/drivers/ws2812"
)

const (
	brokerAddr = "10.0.0.9:1883"
	hostname   = "proxbench"

	// sampleInterval is how often a reading is published;
	// sensorInterval is how often the bus is actually read.
	sampleInterval = time.Second
	sensorInterval = 250 * time.Millisecond

	// Fixed LED threshold. Use the proxmenu sketch to find a value
	// that suits the installation.
	ledThreshold = 4
)

const neopixelPin = machine.GP16

func main() {
	start := time.Now()
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

	dev := vcnl4040.New(machine.I2C0)
	if err := dev.Configure(vcnl4040.Config{}); err != nil {
		printErrForever(logger, "configure VCNL4040", slog.Any("reason", err))
	}

	neopixelPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pixels := ws2812.NewWS2812(neopixelPin)
	led := statusled.New(&pixels)

	link, err := wifi.Join(wifi.SSID(), wifi.Password(), wifi.Config{
		Hostname: hostname,
		Logger:   logger,
		RandSeed: time.Since(start).Nanoseconds(),
	})
	if err != nil {
		printErrForever(logger, "join wifi", slog.Any("reason", err))
	}

	// The stack needs packets moving before DHCP can complete.
	go func() {
		for {
			link.PumpOnce()
			time.Sleep(5 * time.Millisecond)
		}
	}()

	if _, err := link.ObtainAddr(netip.Addr{}); err != nil {
		printErrForever(logger, "obtain address", slog.Any("reason", err))
	}

	// Buffered channel of readings so a flaky broker connection does
	// not stall the sampler.
	readings := make(chan mqtt.Telemetry, 10)
	client := mqtt.Client{
		ID:                hostname,
		Logger:            logger,
		Timeout:           5 * time.Second,
		TCPBufSize:        2030, // MTU - ethhdr - iphdr - tcphdr
		HeartbeatInterval: 30 * time.Second,
	}
	go func() {
		err := client.ConnectAndPublish(link, brokerAddr, readings)
		if err != nil {
			printErrForever(logger, "connect to MQTT broker", slog.Any("reason", err))
		}
	}()

	reader := sensor.New(dev, sensorInterval)
	for {
		time.Sleep(sampleInterval)

		reading, cached, err := reader.Read()
		if err != nil {
			logger.Error("read sensor", slog.Any("reason", err))
			continue
		}

		if err := led.Update(reading.Proximity, ledThreshold); err != nil {
			logger.Error("update status LED", slog.Any("reason", err))
		}
		if cached {
			continue
		}

		select {
		case readings <- mqtt.Telemetry{
			Proximity:   reading.Proximity,
			Ambient:     reading.Ambient,
			Lux:         reading.Lux,
			SinceBootNS: time.Since(start),
		}:
		default:
			// Channel full: the broker is behind, drop the sample
			// rather than stall the LED loop.
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
