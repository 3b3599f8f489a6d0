package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/agent"
)

func newTestMapper(t *testing.T, width, height int) *agent.CoordinateMapper {
	return agent.NewCoordinateMapper(schemas.Viewport{Width: width, Height: height}, zaptest.NewLogger(t))
}

func TestDenormalizeStaysInsideAxis(t *testing.T) {
	m := newTestMapper(t, 1440, 900)

	for _, axis := range []int{1, 100, 900, 1440, 3840} {
		for v := 0; v < 1000; v++ {
			px := m.Denormalize(v, axis)
			assert.GreaterOrEqual(t, px, 0, "v=%d axis=%d", v, axis)
			assert.Less(t, px, axis, "v=%d axis=%d", v, axis)
		}
	}
}

func TestDenormalizeAnchors(t *testing.T) {
	m := newTestMapper(t, 1440, 900)

	assert.Equal(t, 0, m.Denormalize(0, 900))
	// floor(999/1000*S) lands within one pixel of the far edge.
	assert.InDelta(t, 899, m.Denormalize(999, 900), 1)
	assert.InDelta(t, 1439, m.Denormalize(999, 1440), 1)
}

func TestDenormalizeIsDeterministic(t *testing.T) {
	m := newTestMapper(t, 1440, 900)

	first := m.Denormalize(617, 1440)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Denormalize(617, 1440))
	}
}

func TestDenormalizeClampsOutOfRange(t *testing.T) {
	m := newTestMapper(t, 1440, 900)

	assert.Equal(t, 0, m.Denormalize(-50, 900))
	assert.Equal(t, 899, m.Denormalize(1000, 900))
	assert.Equal(t, 899, m.Denormalize(5000, 900))
}

func TestMapPointUsesViewportAxes(t *testing.T) {
	m := newTestMapper(t, 1440, 900)

	x, y := m.MapPoint(500, 50)
	assert.Equal(t, 720, x)
	assert.Equal(t, 45, y)
}
