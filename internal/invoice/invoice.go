// Package invoice generates document numbers and product barcodes.
package invoice

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	PrefixSale     = "TRX"
	PrefixStockOut = "STO"
	PrefixStockIn  = "STI"
)

// Generate returns {prefix}-{YYYYMMDD}-{last 6 digits of unix ms}-{3 digit random}.
func Generate(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%06d-%03d",
		prefix,
		now.Format("20060102"),
		now.UnixMilli()%1_000_000,
		rand.IntN(1000),
	)
}

// Barcode returns a random 8 digit code. Uniqueness is checked by the caller.
func Barcode() string {
	return fmt.Sprintf("%08d", rand.IntN(100_000_000))
}
