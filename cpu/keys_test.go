package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert := assert.New(t)

	var k Keys
	assert.False(k.Pressed(0))

	k = k.With(0).With(0xf)
	assert.True(k.Pressed(0))
	assert.True(k.Pressed(0xf))
	assert.False(k.Pressed(7))
	assert.Equal("1000000000000001", k.String())

	k = k.Without(0)
	assert.False(k.Pressed(0))
	assert.Equal(Keys(0x8000), k)

	assert.False(k.Pressed(0x1f))
	assert.False(Keys(0xffff).Pressed(KEY_COUNT))
}

func TestKeys_Pressing(t *testing.T) {
	assert := assert.New(t)

	prior := Keys(0).With(3)

	_, ok := prior.Pressing(prior)
	assert.False(ok)

	_, ok = Keys(0).Pressing(prior)
	assert.False(ok)

	key, ok := prior.With(9).With(5).Pressing(prior)
	assert.True(ok)
	assert.Equal(uint8(5), key)
}
