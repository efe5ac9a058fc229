package common

import (
	"math/big"
	"time"
)

const (
	// MaxReferrers bounds the referrer list of a single distribution call.
	MaxReferrers = 50

	// ClaimCooldown is how long after the deadline the residue stays locked.
	ClaimCooldown = 7 * 24 * time.Hour
)

// ParseAmount parses a decimal integer. Empty strings are zero.
func ParseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return big.NewInt(0), true
	}

	return new(big.Int).SetString(s, 10)
}
