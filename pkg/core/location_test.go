package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition2D_String(t *testing.T) {
	assert.Equal(t, "(31,40)", Position2D{X: 31, Y: 40}.String())
	assert.Equal(t, "(-2,0)", Position2D{X: -2}.String())
}
