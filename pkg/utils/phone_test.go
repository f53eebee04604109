package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidZambianMobile(t *testing.T) {
	testCases := []struct {
		phone string
		valid bool
	}{
		{"0971234567", true},
		{"0961234567", true},
		{"0951234567", true},
		{"0771234567", true},
		{"260971234567", true},
		{"+260971234567", true},
		{"971234567", true},
		{"+260 97 123 4567", true},
		{"097-123-4567", true},
		{"", false},
		{"12345", false},
		{"0911234567", false},
		{"097123456", false},
		{"09712345678", false},
		{"+1 555 0100", false},
		{"lorem", false},
	}

	for _, tc := range testCases {
		t.Run(tc.phone, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidZambianMobile(tc.phone))
		})
	}
}
