//go:build tinygo

// Package wifi brings up the CYW43439 radio on a Raspberry Pi Pico W
// and wires it to an lneto network stack: WPA2 join, DHCP with a
// static-IP fallback, gateway resolution, and the packet pump.
//
// The bring-up sequence is adapted from the examples in the
// soypat/cyw43439 repository:
// https://github.com/soypat/cyw43439/tree/main/examples/common

package wifi

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/x/xnet"
)

const mtu = cyw43439.MTU

// Network credentials, injected at link time:
//
//	tinygo flash -ldflags="-X 'proxbench/mqttprox/wifi.ssid=MyNet' -X 'proxbench/mqttprox/wifi.pass=secret'"
var (
	ssid string
	pass string
)

// SSID returns the WiFi SSID set via linker flags.
func SSID() string { return ssid }

// Password returns the WiFi password set via linker flags.
func Password() string { return pass }

// Config configures the link bring-up.
type Config struct {
	// Hostname is used for DHCP requests. Required.
	Hostname string
	// MaxTCPConns is the number of TCP ports the stack can hold open.
	// Defaults to 1.
	MaxTCPConns int
	// Logger for bring-up and pump diagnostics.
	Logger *slog.Logger
	// RandSeed adds entropy to the stack's PRNG seed.
	RandSeed int64
}

// Link is a joined WiFi network with a running lneto stack on top.
type Link struct {
	stack   xnet.StackAsync
	dev     *cyw43439.Device
	log     *slog.Logger
	sendbuf []byte
}

// Join initializes the radio, joins the network, and prepares the
// stack. It retries the join indefinitely, so it only returns an error
// for failures that retrying cannot fix.
func Join(ssid, pass string, cfg Config) (*Link, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("wifi: empty hostname")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127), // discard everything
		}))
	}

	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)

	logger.Info("wifi:initializing radio")
	err := dev.Init(cyw43439.DefaultWifiConfig())
	if err != nil {
		return nil, errors.New("wifi init: " + err.Error())
	}
	logger.Info("wifi:radio up", slog.Duration("took", time.Since(start)))

	if len(pass) == 0 {
		logger.Info("wifi:joining open network", slog.String("ssid", ssid))
	} else {
		logger.Info("wifi:joining WPA2 network", slog.String("ssid", ssid))
	}
	for {
		err = dev.JoinWPA2(ssid, pass)
		if err == nil {
			break
		}
		logger.Error("wifi:join failed, retrying", slog.String("err", err.Error()))
		time.Sleep(5 * time.Second)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("wifi hardware address: " + err.Error())
	}
	logger.Info("wifi:joined", slog.String("mac", net.HardwareAddr(mac[:]).String()))

	l := &Link{
		dev:     dev,
		log:     logger,
		sendbuf: make([]byte, mtu),
	}

	maxTCP := cfg.MaxTCPConns
	if maxTCP < 1 {
		maxTCP = 1
	}
	err = l.stack.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     maxTCP,
		RandSeed:        time.Since(start).Nanoseconds() ^ cfg.RandSeed,
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("stack reset: " + err.Error())
	}

	dev.RecvEthHandle(func(pkt []byte) error {
		return l.stack.Demux(pkt, 0)
	})

	return l, nil
}

// ObtainAddr runs DHCP and applies the results, falling back to
// requested as a static address when DHCP fails and requested is set.
func (l *Link) ObtainAddr(requested netip.Addr) (netip.Addr, error) {
	if !requested.Is4() {
		if requested.IsValid() {
			return netip.Addr{}, errors.New("wifi: only dhcpv4 supported")
		}
		requested = netip.AddrFrom4([4]byte{})
	}

	const pollTime = 50 * time.Millisecond
	rstack := l.stack.StackRetrying(pollTime)

	l.log.Info("dhcp:starting")
	results, err := rstack.DoDHCPv4(requested.As4(), 3*time.Second, 3)
	if err != nil {
		if requested.IsValid() && !requested.IsUnspecified() {
			l.log.Info("dhcp:failed, using static address", slog.String("ip", requested.String()))
			l.stack.SetIPAddr(requested)
			return requested, nil
		}
		return netip.Addr{}, errors.New("dhcp: " + err.Error())
	}

	err = l.stack.AssimilateDHCPResults(results)
	if err != nil {
		return netip.Addr{}, errors.New("assimilate dhcp: " + err.Error())
	}

	gatewayHW, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return netip.Addr{}, errors.New("resolve gateway: " + err.Error())
	}
	l.stack.SetGateway6(gatewayHW)

	l.log.Info("dhcp:complete",
		slog.String("addr", results.AssignedAddr.String()),
		slog.String("router", results.Router.String()),
		slog.Uint64("lease_sec", uint64(results.TLease)),
	)
	return results.AssignedAddr, nil
}

// PumpOnce moves one round of packets in each direction. Call it in a
// tight loop from its own goroutine.
func (l *Link) PumpOnce() (send, recv int, err error) {
	gotPacket, errRecv := l.dev.PollOne()
	if gotPacket {
		recv = 1
	}
	if errRecv != nil {
		l.log.Error("pump:PollOne", slog.String("err", errRecv.Error()))
	}

	send, err = l.stack.Encapsulate(l.sendbuf, -1, 0)
	if err != nil {
		l.log.Error("pump:Encapsulate", slog.Int("plen", send), slog.String("err", err.Error()))
	} else {
		err = errRecv
	}
	if send == 0 {
		return send, recv, err
	}

	err = l.dev.SendEth(l.sendbuf[:send])
	if err != nil {
		l.log.Error("pump:SendEth", slog.Int("plen", send), slog.String("err", err.Error()))
	}
	return send, recv, err
}

// Stack exposes the underlying lneto stack for TCP and DNS operations.
func (l *Link) Stack() *xnet.StackAsync {
	return &l.stack
}

// Prand32 returns a pseudo-random number from the stack's PRNG.
func (l *Link) Prand32() uint32 {
	return l.stack.Prand32()
}

// Addr returns the link's current IP address.
func (l *Link) Addr() netip.Addr {
	return l.stack.Addr()
}
