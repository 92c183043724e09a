package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumKnownValue(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sum(nil))
}

func TestShort(t *testing.T) {
	full := Sum([]byte("sgk"))
	assert.Equal(t, full[:12], Short([]byte("sgk"), 12))
	assert.Equal(t, full, Short([]byte("sgk"), 0))
	assert.Equal(t, full, Short([]byte("sgk"), 100))
}
