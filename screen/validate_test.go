package screen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidName(t *testing.T) {
	valid := []string{
		"Osama Bin Laden",
		"to the Mr. Osama Bin Laden",
		"O'Neil, Mary-Jane",
		"Osámá Bín Läden",
		"Jo",
		strings.Repeat("a", 50),
		strings.Repeat("a\u0301", 50), // decomposed, 50 runes once composed
		"Osa\u0301ma\u0301 Bi\u0301n",
	}
	for _, s := range valid {
		assert.True(t, IsValidName(s), "expected valid: %q", s)
	}

	invalid := []string{
		"",
		"   ",
		"J",
		strings.Repeat("a", 51),
		"Agent 007",
		"john@doe",
		"..",
		" - ",
		"Osama\nBin Laden",
		"Osama\tBin",
		"Osama\r\nBin",
		strings.Repeat("a\u0301", 51),
	}
	for _, s := range invalid {
		assert.False(t, IsValidName(s), "expected invalid: %q", s)
	}
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(1))
	assert.False(t, IsValidID(0))
	assert.False(t, IsValidID(-4))
}
