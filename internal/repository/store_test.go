package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLike_EscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"Gelas":      "%gelas%",
		"  diskon  ": "%diskon%",
		"50%":        `%50\%%`,
		"kode_a":     `%kode\_a%`,
		`c:\temp`:    `%c:\\temp%`,
	}
	for in, want := range cases {
		assert.Equal(t, want, like(in), in)
	}
}
