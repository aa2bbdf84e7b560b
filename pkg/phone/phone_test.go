package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionCode(t *testing.T) {
	assert.Equal(t, "BR", RegionCode("Brazil"))
	assert.Equal(t, "BR", RegionCode(" brasil "))
	assert.Equal(t, "US", RegionCode("United States"))
	assert.Equal(t, "", RegionCode("Narnia"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		country string
		want    string
	}{
		{"brazilian mobile", "11987654321", "Brazil", "+55 11 98765-4321"},
		{"already international", "+55 11 98765-4321", "Brazil", "+55 11 98765-4321"},
		{"us number", "(650) 253-0000", "United States", "+1 650-253-0000"},
		{"unknown country without prefix is kept", "12345", "Narnia", "12345"},
		{"invalid number is kept", " 123 ", "Brazil", "123"},
		{"empty", "", "Brazil", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.number, tt.country))
		})
	}
}
