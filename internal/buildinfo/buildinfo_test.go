package buildinfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "", FormatUptime(0))
	assert.Equal(t, "59 second(s)", FormatUptime(59*time.Second))
	assert.Equal(t, "1 hour(s) 5 second(s)", FormatUptime(time.Hour+5*time.Second))
	assert.Equal(t, "2 day(s) 3 hour(s) 4 minute(s) 5 second(s)",
		FormatUptime(2*24*time.Hour+3*time.Hour+4*time.Minute+5*time.Second+300*time.Millisecond))
	assert.Equal(t, "1 day(s)", FormatUptime(24*time.Hour))
}

func TestVersion(t *testing.T) {
	prev := rawVersion
	t.Cleanup(func() { rawVersion = prev })

	rawVersion = "v1.4"
	assert.Equal(t, "1.4.0", Version())

	ok, err := AtLeast("1.3.9")
	require.NoError(t, err)
	assert.True(t, ok)

	rawVersion = "not-a-version"
	assert.Equal(t, "not-a-version", Version())
	_, err = AtLeast("1.0.0")
	require.Error(t, err)
}
