package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func apply(funcs ...OptionFunc) Options {
	var o Options
	for _, f := range funcs {
		f(&o)
	}
	return o
}

func TestWithDefaultOptions(t *testing.T) {
	o := apply(WithDefaultOptions())
	assert.Equal(t, DefaultDataDir, o.DataDir)
	assert.Equal(t, DefaultMaxValueSize, o.MaxValueSize)
	assert.True(t, o.SyncOnWrite)
}

func TestWithDataDirTrimsAndIgnoresBlank(t *testing.T) {
	o := apply(WithDefaultOptions(), WithDataDir("  /tmp/db  "))
	assert.Equal(t, "/tmp/db", o.DataDir)

	o2 := apply(WithDefaultOptions(), WithDataDir("   "))
	assert.Equal(t, DefaultDataDir, o2.DataDir)
}

func TestWithMaxValueSizeRejectsOutOfRange(t *testing.T) {
	o := apply(WithDefaultOptions(), WithMaxValueSize(1024))
	assert.Equal(t, uint32(1024), o.MaxValueSize)

	o2 := apply(WithDefaultOptions(), WithMaxValueSize(MaxAllowedValueSize+1))
	assert.Equal(t, DefaultMaxValueSize, o2.MaxValueSize)

	o3 := apply(WithDefaultOptions(), WithMaxValueSize(0))
	assert.Equal(t, DefaultMaxValueSize, o3.MaxValueSize)
}

func TestWithSyncOnWrite(t *testing.T) {
	o := apply(WithDefaultOptions(), WithSyncOnWrite(false))
	assert.False(t, o.SyncOnWrite)
}
