package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidINN(t *testing.T) {
	tests := []struct {
		name string
		inn  string
		want bool
	}{
		{"10 digits", "1234567890", true},
		{"12 digits", "123456789012", true},
		{"11 digits", "12345678901", false},
		{"9 digits", "123456789", false},
		{"13 digits", "1234567890123", false},
		{"empty", "", false},
		{"letters", "12345678ab", false},
		{"unicode digits", "１２３４５６７８９０", false},
		{"leading zero ok", "0123456789", true},
		{"embedded space", "12345 7890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidINN(tt.inn))
		})
	}
}
