package invoice

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 0, 0, 123_000_000, time.UTC)
	got := Generate(PrefixSale, now)

	assert.Regexp(t, `^TRX-20260309-\d{6}-\d{3}$`, got)
	millis, err := strconv.ParseInt(got[13:19], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli()%1_000_000, millis)
}

func TestBarcode(t *testing.T) {
	for range 50 {
		assert.Regexp(t, `^\d{8}$`, Barcode())
	}
}
