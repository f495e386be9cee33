package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var memberIDSpan = big.NewInt(900000)

// NewMemberID returns "M" followed by a random number in [100000, 999999]
func NewMemberID() (string, error) {
	n, err := rand.Int(rand.Reader, memberIDSpan)
	if err != nil {
		return "", fmt.Errorf("failed to generate member id: %w", err)
	}
	return fmt.Sprintf("M%d", 100000+n.Int64()), nil
}
