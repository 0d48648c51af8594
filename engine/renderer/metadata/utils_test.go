package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAligned(t *testing.T) {
	assert.Equal(t, uint64(0), GetAligned(0, 8))
	assert.Equal(t, uint64(8), GetAligned(1, 8))
	assert.Equal(t, uint64(8), GetAligned(8, 8))
	assert.Equal(t, uint64(16), GetAligned(12, 8))
	assert.Equal(t, uint64(256), GetAligned(129, 256))
}
