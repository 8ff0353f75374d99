package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "ab***yz", MaskSecret("abcdefxyz"))
	assert.Equal(t, "***", MaskSecret("abcd"))
	assert.Equal(t, "***", MaskSecret(""))
}
