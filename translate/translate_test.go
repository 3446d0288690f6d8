package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLanguage(language.AmericanEnglish)

	assert.Equal("stack empty", From("stack empty"))
	assert.Equal("bad opcode 0x00ee", From("bad opcode 0x%04x", 0xee))
	assert.Equal("1,234 cycles", From("%d cycles", 1234))
}
