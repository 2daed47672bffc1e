package version

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/layergraphgo/internal/layer"
)

func TestCurrent_CoversEveryKnownKind(t *testing.T) {
	for _, tag := range []layer.TypeTag{
		layer.TypeFolder, layer.TypeSolidColor, layer.TypeImage,
		layer.TypeGradient, layer.TypeTexture, layer.TypeAdjustment,
		layer.TypeNodeGroup,
	} {
		assert.Greater(t, Current(tag), 0, string(tag))
	}
	assert.Equal(t, 0, Current("hologram"))
}

func TestStale(t *testing.T) {
	l := layer.New("Base", layer.TypeSolidColor)
	assert.True(t, Stale(l), "fresh layers have version 0 and are stale")

	l.RecordedVersion = Current(layer.TypeSolidColor)
	assert.False(t, Stale(l))

	l.RecordedVersion--
	assert.True(t, Stale(l))
}
