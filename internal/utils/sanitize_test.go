package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  asha   rao  ", "Asha Rao"},
		{"VIKRAM RAO", "Vikram Rao"},
		{"meena<script>", "Meenascript"},
		{"jean-luc o.brien", "Jean-luc O.brien"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeText(tt.input), "input %q", tt.input)
	}
}

func TestSanitizeAddressComponent(t *testing.T) {
	// '#' survives in address components but not in names
	assert.Equal(t, "#12, Mg Road", SanitizeAddressComponent("  #12,   MG Road "))
	assert.Equal(t, "12, Mg Road", SanitizeText("  #12,   MG Road "))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("asha@example.com"))
	assert.True(t, ValidateEmail("a.b+c@sub.example.co.in"))
	assert.False(t, ValidateEmail("asha@example"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("two words@example.com"))
}
