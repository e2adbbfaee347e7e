package pixel

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorDistance 各通道差的绝对值之和（只比较 RGB，不含 alpha）
func ColorDistance(a, b Color) uint32 {
	return absDiff(a.R, b.R) + absDiff(a.G, b.G) + absDiff(a.B, b.B)
}

// IsBackground reports whether p is within tolerance of the reference colour.
func IsBackground(p, ref Color, tolerance uint8) bool {
	return ColorDistance(p, ref) <= uint32(tolerance)
}

// Brightness returns (r+g+b)/3.
func Brightness(c Color) float64 {
	return float64(int(c.R)+int(c.G)+int(c.B)) / 3
}

// BrighterThan 等价于 (r+g+b)/3 > threshold，但全程整数运算
func BrighterThan(c Color, threshold uint8) bool {
	return int(c.R)+int(c.G)+int(c.B) > 3*int(threshold)
}

// IsNearGray reports max(|r-g|, |g-b|, |r-b|) < delta.
func IsNearGray(c Color, delta uint8) bool {
	d := max(absDiff(c.R, c.G), absDiff(c.G, c.B), absDiff(c.R, c.B))
	return d < uint32(delta)
}

// ChannelsWithin 每个通道的差都严格小于 tolerance
// tolerance 为 0 时永远不成立，为 1 时只有颜色完全相同才成立
func ChannelsWithin(a, b Color, tolerance uint8) bool {
	t := uint32(tolerance)
	return absDiff(a.R, b.R) < t && absDiff(a.G, b.G) < t && absDiff(a.B, b.B) < t
}

// PerceptualDistance is the CIEDE2000 difference of the two colours scaled to
// roughly the 0-255 range of a tolerance value.
func PerceptualDistance(a, b Color) uint32 {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	d := math.Round(ca.DistanceCIEDE2000(cb) * 255)
	return uint32(min(d, 255))
}

// Metric selects the colour distance used by tolerance based fills.
type Metric int

const (
	MetricManhattan Metric = iota
	MetricPerceptual
)

func (m Metric) Distance(a, b Color) uint32 {
	if m == MetricPerceptual {
		return PerceptualDistance(a, b)
	}
	return ColorDistance(a, b)
}

func (m Metric) String() string {
	switch m {
	case MetricManhattan:
		return "manhattan"
	case MetricPerceptual:
		return "perceptual"
	}
	return "unknown"
}

// ParseMetric maps a config value to a Metric; unknown names fall back to manhattan.
func ParseMetric(s string) (Metric, bool) {
	switch s {
	case "", "manhattan":
		return MetricManhattan, true
	case "perceptual":
		return MetricPerceptual, true
	}
	return MetricManhattan, false
}

func absDiff(a, b uint8) uint32 {
	if a > b {
		return uint32(a - b)
	}
	return uint32(b - a)
}
