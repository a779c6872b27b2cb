package vcnl4040

// DefaultAddress is the fixed I2C address of the VCNL4040.
const DefaultAddress = 0x60

// deviceID is the value of the ID register for a VCNL4040.
const deviceID = 0x0186

// Command codes. Every register is a 16-bit little-endian word.
const (
	regALSConf    = 0x00 // ALS_CONF (low byte), reserved (high byte)
	regALSThreshH = 0x01
	regALSThreshL = 0x02
	regPSConf12   = 0x03 // PS_CONF1 (low), PS_CONF2 (high)
	regPSConf3MS  = 0x04 // PS_CONF3 (low), PS_MS (high)
	regPSCanc     = 0x05
	regPSThreshL  = 0x06
	regPSThreshH  = 0x07
	regPSData     = 0x08
	regALSData    = 0x09
	regWhiteData  = 0x0A
	regIntFlag    = 0x0B
	regID         = 0x0C
)

// Shutdown bits. Clearing them powers the corresponding block on.
const (
	alsShutdown = 1 << 0 // ALS_CONF ALS_SD
	psShutdown  = 1 << 0 // PS_CONF1 PS_SD
)

// luxPerCount is the ALS resolution with the default 80 ms integration
// time. Doubling the integration time halves the resolution.
const luxPerCount = 0.1
