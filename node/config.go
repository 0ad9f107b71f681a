package node

import (
	"fmt"
	"time"

	n2k "github.com/oceanbus/n2k-node"
	"github.com/oceanbus/n2k-node/pgn"
)

// DefaultHeartbeatInterval is the PGN 126993 broadcast period used when
// Config.HeartbeatInterval is left zero.
const DefaultHeartbeatInterval = 60 * time.Second

// DefaultSendQueueSize bounds the outgoing message queue when
// Config.SendQueueSize is left zero.
const DefaultSendQueueSize = 40

// DefaultClaimTimeout is how long a broadcast ISO Address Claim waits for
// contention before the node considers the address its own.
const DefaultClaimTimeout = 250 * time.Millisecond

// Config is everything a Node needs to identify itself on the bus and
// answer requests about itself.
type Config struct {
	// Name is this node's ISO 11783 NAME, broadcast on address claim and
	// used as the contention tie-breaker (lower NAME wins).
	Name pgn.Name
	// PreferredSource is the source address claim starts from.
	PreferredSource uint8

	ProductInfo pgn.ProductInformation
	ConfigInfo  pgn.ConfigurationInformation

	// HeartbeatInterval is the PGN 126993 broadcast period, 10ms..655320ms.
	// Zero means DefaultHeartbeatInterval.
	HeartbeatInterval time.Duration
	// SendQueueSize bounds the outgoing message queue. Zero means
	// DefaultSendQueueSize.
	SendQueueSize int
	// ClaimTimeout is how long an address claim waits to settle. Zero means
	// DefaultClaimTimeout.
	ClaimTimeout time.Duration
}

// Validate reports a configuration error, wrapped in n2k.ErrConfigError.
func (c Config) Validate() error {
	if c.Name.Uint64()&0x7FFFFFFFFFFFFFFF == 0 {
		return fmt.Errorf("%w: NAME must be non-zero", n2k.ErrConfigError)
	}
	if c.PreferredSource >= n2k.AddressNull {
		return fmt.Errorf("%w: preferred source must be < %d", n2k.ErrConfigError, n2k.AddressNull)
	}
	for _, s := range []string{c.ProductInfo.ModelID, c.ProductInfo.SoftwareVersionCode, c.ProductInfo.ModelVersion, c.ProductInfo.ModelSerialCode} {
		if len(s) > 32 {
			return fmt.Errorf("%w: product information strings must be at most 32 bytes", n2k.ErrConfigError)
		}
	}
	if c.HeartbeatInterval != 0 && (c.HeartbeatInterval < 10*time.Millisecond || c.HeartbeatInterval > 655320*time.Millisecond) {
		return fmt.Errorf("%w: heartbeat interval must be between 10ms and 655320ms", n2k.ErrConfigError)
	}
	if c.SendQueueSize < 0 {
		return fmt.Errorf("%w: send queue size must not be negative", n2k.ErrConfigError)
	}
	if c.ClaimTimeout < 0 {
		return fmt.Errorf("%w: claim timeout must not be negative", n2k.ErrConfigError)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.SendQueueSize == 0 {
		c.SendQueueSize = DefaultSendQueueSize
	}
	if c.ClaimTimeout == 0 {
		c.ClaimTimeout = DefaultClaimTimeout
	}
	return c
}
