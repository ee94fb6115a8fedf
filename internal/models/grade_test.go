package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterFor(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{100, "A"},
		{70, "A"},
		{69.9, "B"},
		{69, "B"},
		{60, "B"},
		{59, "C"},
		{50, "C"},
		{49, "D"},
		{45, "D"},
		{44, "E"},
		{40, "E"},
		{39, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LetterFor(tc.total), "total %v", tc.total)
	}
}
