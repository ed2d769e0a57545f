package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundQueueDepth(t *testing.T) {
	tests := []struct {
		in, max, want int
	}{
		{0, 128, 1},
		{1, 128, 1},
		{2, 128, 2},
		{3, 128, 4},
		{10, 128, 16},
		{60, 128, 64},
		{65, 128, 128},
		{128, 128, 128},
		{129, 128, 128},
		{255, 128, 128},
		{-5, 128, 1},
		{5, 4, 4},
		{5, 6, 4},
		{3, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundQueueDepth(tt.in, tt.max), "RoundQueueDepth(%d, %d)", tt.in, tt.max)
	}
}
