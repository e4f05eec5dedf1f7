package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"1,2,3", Position{X: 1, Y: 2, Z: 3}},
		{"-10, 64 , 128", Position{X: -10, Y: 64, Z: 128}},
		{"", Position{}},
		{"1,2", Position{}},
		{"1,2,3,4", Position{}},
		{"a,b,c", Position{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePosition(tt.in), "input %q", tt.in)
	}
}

func TestPosition_RoundTrip(t *testing.T) {
	p := Position{X: -5, Y: 70, Z: 12}
	assert.Equal(t, "-5,70,12", p.String())
	assert.Equal(t, p, ParsePosition(p.String()))
}
