package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "threats"},
		{1, "threat"},
		{2, "threats"},
		{-1, "threats"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pluralize(tt.count, "threat", "threats"), "count %d", tt.count)
	}
}
