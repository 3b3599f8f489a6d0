// internal/agent/coords.go
package agent

import (
	"go.uber.org/zap"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
)

// normalizedRange is the coordinate space the model reports positions in.
const normalizedRange = 1000

// CoordinateMapper translates normalized model coordinates into device pixels
// for one fixed viewport. Denormalization is deterministic and total: values
// outside [0,999] are clamped rather than rejected, because a misbehaving
// model must not crash the run.
type CoordinateMapper struct {
	viewport schemas.Viewport
	logger   *zap.Logger
}

func NewCoordinateMapper(viewport schemas.Viewport, logger *zap.Logger) *CoordinateMapper {
	return &CoordinateMapper{
		viewport: viewport,
		logger:   logger.Named("coords"),
	}
}

// Denormalize maps value from [0,999] onto [0,axisSize-1].
func (m *CoordinateMapper) Denormalize(value, axisSize int) int {
	pixel := value * axisSize / normalizedRange
	if value < 0 || value >= normalizedRange {
		m.logger.Warn("Model coordinate out of range, clamping.",
			zap.Int("value", value),
			zap.Int("axis_size", axisSize))
	}
	if pixel < 0 {
		return 0
	}
	if pixel >= axisSize {
		return axisSize - 1
	}
	return pixel
}

// MapPoint denormalizes an (x, y) pair against the viewport axes.
func (m *CoordinateMapper) MapPoint(x, y int) (int, int) {
	return m.Denormalize(x, m.viewport.Width), m.Denormalize(y, m.viewport.Height)
}
