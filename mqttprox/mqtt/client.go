//go:build tinygo

// Package mqtt publishes VCNL4040 readings to an MQTT broker over the
// lneto TCP stack.
package mqtt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"runtime"
	"time"

	"proxbench/mqttprox/wifi"

	"github.com/soypat/lneto/tcp"
	mqtt "github.com/soypat/natiu-mqtt"
)

var (
	pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	pubVar      = mqtt.VariablesPublish{
		TopicName: []byte("proxbench/vcnl4040"),
	}
)

// Telemetry is the JSON payload published for each sample.
type Telemetry struct {
	Proximity   uint16        // PS counts, log scale
	Ambient     uint16        // raw ALS counts
	Lux         float32       // scaled illumination
	SinceBootNS time.Duration // nanoseconds since boot
}

// Client publishes telemetry to a single broker, reconnecting as needed.
type Client struct {
	ID                string
	Timeout           time.Duration
	TCPBufSize        int
	Logger            *slog.Logger
	HeartbeatInterval time.Duration
	Username          string // broker username (optional)
	Password          string // broker password (optional, requires Username)
}

// ConnectAndPublish connects to the broker at addr ("host:port", host
// may be an IP literal or a DNS name) and publishes readings from the
// channel until the connection is beyond saving, reconnecting in
// between. The link must already have an address.
func (c *Client) ConnectAndPublish(link *wifi.Link, addr string, readings <-chan Telemetry) error {
	const pollTime = 5 * time.Millisecond

	host, portStr, err := splitHostPort(addr)
	if err != nil {
		return errors.New("parsing host:port from " + addr + ": " + err.Error())
	}

	stack := link.Stack()
	rstack := stack.StackRetrying(pollTime)

	var brokerAddr netip.Addr
	if parsed, err := netip.ParseAddr(host); err == nil {
		brokerAddr = parsed
	} else {
		c.Logger.Info("dns:resolving " + host)
		addrs, err := rstack.DoLookupIP(host, 5*time.Second, 3)
		if err != nil {
			return errors.New("dns lookup for " + host + ": " + err.Error())
		}
		if len(addrs) == 0 {
			return errors.New("dns lookup for " + host + ": no addresses returned")
		}
		brokerAddr = addrs[0]
	}
	c.Logger.Info("mqtt:broker resolved", slog.String("ip", brokerAddr.String()))

	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 4096)},
		OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			c.Logger.Info("received message", slog.String("topic", string(varPub.TopicName)))
			return nil
		},
	}
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(c.ID))
	if c.Username != "" {
		varconn.Username = []byte(c.Username)
		if c.Password != "" {
			varconn.Password = []byte(c.Password)
		}
	}

	mqttClient := mqtt.NewClient(cfg)

	var conn tcp.Conn
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, c.TCPBufSize),
		TxBuf:             make([]byte, c.TCPBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return errors.New("tcp configure: " + err.Error())
	}

	closeConn := func(reason string) {
		c.Logger.Error("tcp:closing", slog.String("reason", reason))
		conn.Close()
		for i := 0; i < 50 && !conn.State().IsClosed(); i++ {
			time.Sleep(100 * time.Millisecond)
		}
		conn.Abort()
	}

	serverAddr := netip.AddrPortFrom(brokerAddr, parsePort(portStr))

	for {
		localPort := uint16(link.Prand32()>>17) + 1024
		c.Logger.Info("tcp:dialing", slog.Uint64("localPort", uint64(localPort)))
		err = rstack.DoDialTCP(&conn, localPort, serverAddr, 10*time.Second, 3)
		if err != nil {
			c.Logger.Error("tcp:dial failed", slog.String("err", err.Error()))
			closeConn("dial failed: " + err.Error())
			time.Sleep(2 * time.Second)
			continue
		}
		c.Logger.Info("tcp:connected", slog.String("state", conn.State().String()))

		conn.SetDeadline(time.Now().Add(c.Timeout))
		err = mqttClient.StartConnect(&conn, &varconn)
		if err != nil {
			c.Logger.Error("mqtt:start-connect failed", slog.String("reason", err.Error()))
			closeConn("connect failed")
			continue
		}
		retries := 50
		for retries > 0 && !mqttClient.IsConnected() {
			time.Sleep(100 * time.Millisecond)
			err = mqttClient.HandleNext()
			if err != nil {
				c.Logger.Error("mqtt:handle-next failed", slog.String("err", err.Error()))
			}
			retries--
		}
		if !mqttClient.IsConnected() {
			c.Logger.Error("mqtt:connect timed out", slog.Any("reason", mqttClient.Err()))
			closeConn("connect timed out")
			continue
		}
		c.Logger.Info("mqtt:connected, publishing")

		heartbeat := time.NewTicker(c.HeartbeatInterval)
		for mqttClient.IsConnected() {
			select {
			case reading := <-readings:
				payload, err := json.Marshal(reading)
				if err != nil {
					c.Logger.Error("mqtt:marshal failed", slog.Any("reason", err))
					continue
				}
				conn.SetDeadline(time.Now().Add(c.Timeout))
				pubVar.PacketIdentifier = uint16(link.Prand32())
				err = mqttClient.PublishPayload(pubFlags, pubVar, payload)
				if err != nil {
					c.Logger.Error("mqtt:publish failed", slog.Any("reason", err))
					continue
				}
				err = mqttClient.HandleNext()
				if err != nil {
					c.Logger.Error("mqtt:handle-next failed", slog.String("err", err.Error()))
				}
			case <-heartbeat.C:
				// No readings since the last interval; service the
				// connection so the broker keeps it alive.
				err = mqttClient.HandleNext()
				if err != nil {
					c.Logger.Error("mqtt:handle-next failed", slog.String("err", err.Error()))
				}
			default:
				// Nothing to do. TinyGo runs goroutines on a single
				// core, so yield the thread.
				runtime.Gosched()
			}
		}
		heartbeat.Stop()

		c.Logger.Error("mqtt:disconnected", slog.Any("reason", mqttClient.Err()))
		closeConn("disconnected")
		runtime.Gosched()
	}
}

// splitHostPort splits "host:port" on the last colon so IPv6 literals
// keep working.
func splitHostPort(addr string) (host, port string, err error) {
	colonIdx := -1
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			colonIdx = i
			break
		}
	}
	if colonIdx == -1 {
		return "", "", errors.New("missing port in address")
	}
	host = addr[:colonIdx]
	port = addr[colonIdx+1:]
	if host == "" {
		return "", "", errors.New("empty host")
	}
	if port == "" {
		return "", "", errors.New("empty port")
	}
	return host, port, nil
}

// parsePort converts a decimal port string to uint16, returning 0 on
// any malformed input.
func parsePort(portStr string) uint16 {
	var port uint16
	for i := 0; i < len(portStr); i++ {
		if portStr[i] < '0' || portStr[i] > '9' {
			return 0
		}
		port = port*10 + uint16(portStr[i]-'0')
	}
	return port
}
