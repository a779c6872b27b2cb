// Package sensor wraps the VCNL4040 with throttling and caching so the
// publish cadence and the sensor cadence stay decoupled: callers can
// poll as often as they like and the I2C bus is only touched once per
// interval.
package sensor

import (
	"time"
)

// Device is the slice of the VCNL4040 driver this reader needs.
type Device interface {
	Proximity() (uint16, error)
	AmbientLight() (uint16, error)
}

// Reading is one sample of the proximity/light channels.
type Reading struct {
	Proximity uint16  // PS counts, log scale
	Ambient   uint16  // raw ALS counts
	Lux       float32 // ALS counts scaled by the 80 ms resolution
}

// Reader reads a VCNL4040 at most once per interval and serves cached
// values in between.
type Reader struct {
	dev         Device
	minInterval time.Duration
	cached      Reading
	lastRead    time.Time
	hasCache    bool
}

// New returns a Reader over dev that touches the bus at most once per
// minInterval.
func New(dev Device, minInterval time.Duration) *Reader {
	return &Reader{
		dev:         dev,
		minInterval: minInterval,
	}
}

// Read returns the current reading and whether it came from the cache.
// On a read error the last good reading is returned alongside the
// error, if one exists.
func (r *Reader) Read() (reading Reading, isCached bool, err error) {
	now := time.Now()
	if r.hasCache && now.Sub(r.lastRead) < r.minInterval {
		return r.cached, true, nil
	}

	prox, err := r.dev.Proximity()
	if err != nil {
		return r.cached, r.hasCache, err
	}
	ambient, err := r.dev.AmbientLight()
	if err != nil {
		return r.cached, r.hasCache, err
	}

	r.cached = Reading{
		Proximity: prox,
		Ambient:   ambient,
		Lux:       float32(ambient) * 0.1,
	}
	r.lastRead = now
	r.hasCache = true
	return r.cached, false, nil
}
