package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWillBePrintedAlways(t *testing.T) {
	assert.True(t, WillBePrinted(ALWAYS))
}

func TestWillBePrintedRespectsEnv(t *testing.T) {
	t.Setenv(envVar, "INSERT;ROTATE")
	assert.True(t, WillBePrinted(INSERT))
	assert.False(t, WillBePrinted(PARK))
}
