package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// NewOrderNo returns a unique purchase order number.
func NewOrderNo() string {
	return "PP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

// NewBarcode returns a 16-digit numeric barcode for a redeemed reward.
func NewBarcode() string {
	return randomDigits(16)
}

// NewPIN returns a 6-digit usage PIN.
func NewPIN() string {
	return randomDigits(6)
}

func randomDigits(n int) string {
	digits := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			v = big.NewInt(int64(i) % 10)
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}
