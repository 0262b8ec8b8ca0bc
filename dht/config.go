package dht

import (
	"time"

	"github.com/pkg/errors"

	"ringdht/index"
	"ringdht/rdcommon"
)

const (
	defaultRouteCacheSize = 256
	defaultRouteCacheTTL  = 5 * time.Minute
)

// Config fixes a DHT instance at construction time. Bits sets the
// identifier space to [0, 2^Bits); Order is the branching factor of each
// machine's B-tree index.
type Config struct {
	Bits    int
	Order   int
	Backend index.Backend

	// Route cache tuning; zero values pick the defaults.
	RouteCacheSize int
	RouteCacheTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.RouteCacheSize == 0 {
		c.RouteCacheSize = defaultRouteCacheSize
	}
	if c.RouteCacheTTL == 0 {
		c.RouteCacheTTL = defaultRouteCacheTTL
	}
	return c
}

func (c Config) validate() error {
	if c.Bits < rdcommon.MinBits || c.Bits > rdcommon.MaxBits {
		return errors.Wrapf(rdcommon.ErrInvalidConfiguration, "bits %d not in [%d, %d]", c.Bits, rdcommon.MinBits, rdcommon.MaxBits)
	}
	if c.Order < index.MinOrder {
		return errors.Wrapf(rdcommon.ErrInvalidConfiguration, "branching factor %d below minimum %d", c.Order, index.MinOrder)
	}
	if c.Backend != index.BackendBTree && c.Backend != index.BackendLLRB {
		return errors.Wrapf(rdcommon.ErrInvalidConfiguration, "unknown index backend %d", c.Backend)
	}
	return nil
}
