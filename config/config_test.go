package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.EqualValues(t, 4, c.NumCores)
	assert.Equal(t, 3*time.Millisecond, c.PreemptiveTimeslice.Duration())
	assert.EqualValues(t, 0, c.PreemptionPriorityFor(2))
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesFields(t *testing.T) {
	dir := t.TempDir()
	pn := filepath.Join(dir, "sched.yaml")
	contents := "numCores: 8\npreemptiveTimeslice: 5ms\ndefaultPreemptionPriority: 2\npreemptionPriority:\n  0: 1\n"
	require.NoError(t, os.WriteFile(pn, []byte(contents), 0644))

	c, err := Load(pn)
	require.NoError(t, err)
	assert.EqualValues(t, 8, c.NumCores)
	assert.Equal(t, 5*time.Millisecond, c.PreemptiveTimeslice.Duration())
	assert.EqualValues(t, 1, c.PreemptionPriorityFor(0))
	assert.EqualValues(t, 2, c.PreemptionPriorityFor(3))
}
