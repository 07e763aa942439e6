package motion

import "math"

// FoldAngle maps an angular difference (degrees) into [0, 90].
// Directions are treated as undirected lines, so 200 folds to 20 and 95 to 85.
func FoldAngle(ang float64) float64 {
	ang = math.Mod(math.Abs(ang), 360.0)
	if ang > 180.0 {
		ang = 360.0 - ang
	}
	if ang > 90.0 {
		ang = 180.0 - ang
	}
	return ang
}

// angleDeviation returns the smallest absolute difference between two bearings, in [0, 180]
func angleDeviation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360.0)
	if d > 180.0 {
		d = 360.0 - d
	}
	return d
}
