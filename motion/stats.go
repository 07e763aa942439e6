package motion

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StatsFields is number of values each finalized trajectory contributes to a feature vector
const StatsFields = 7

// curvatureSteps is number of leading and trailing steps which bearings are compared for curvature
const curvatureSteps = 3

// Stats is a kinematic summary of trajectory.
// Longitudinal axis goes from the first sample to the last one, lateral axis is perpendicular to it.
// Velocities and accelerations are per frame, scaled by trajectory's scale.
type Stats struct {
	VelocityLong float64
	VelocityLat  float64
	AccelLong    float64
	AccelLat     float64
	// Change of bearing (degrees) between the first and the last steps
	Curvature float64
	// Angle (degrees, [0, 360)) of the longitudinal axis
	Direction float64
	// Scaled path length
	Length float64
}

// Stats returns kinematic statistics of trajectory.
// Values are recomputed only if samples were added since previous call.
// Trajectories with less than 3 samples keep previous (possibly zero) statistics.
func (traj *Trajectory) Stats() Stats {
	if !traj.dirty || len(traj.samples) < 3 {
		return traj.stats
	}
	traj.stats = computeStats(traj.samples, traj.scale)
	traj.dirty = false
	return traj.stats
}

func computeStats(samples []Sample, scale float64) Stats {
	first := samples[0]
	last := samples[len(samples)-1]
	dirX := last.Point.Sub(first.Point).Normalize()
	dirY := Point{X: -dirX.Y, Y: dirX.X}

	steps := len(samples) - 1
	frames := make([]float64, steps)
	velLong := make([]float64, steps)
	velLat := make([]float64, steps)
	sumLong, sumLat := 0.0, 0.0
	for i := 1; i < len(samples); i++ {
		shift := samples[i].Point.Sub(samples[i-1].Point)
		long := shift.Dot(dirX)
		lat := shift.Dot(dirY)
		gap := float64(samples[i].Frame - samples[i-1].Frame)
		frames[i-1] = float64(samples[i].Frame)
		velLong[i-1] = long / gap
		velLat[i-1] = lat / gap
		sumLong += long
		sumLat += lat
	}

	head, tail := 0.0, 0.0
	for i := 1; i <= min(curvatureSteps, steps); i++ {
		head += samples[i].Bearing
	}
	for i := max(1, len(samples)-curvatureSteps); i < len(samples); i++ {
		tail += samples[i].Bearing
	}

	// Samples have strictly increasing frames, so span is zero only for a degenerate trajectory
	span := float64(max(last.Frame-first.Frame, 1))
	return Stats{
		VelocityLong: sumLong / span * scale,
		VelocityLat:  sumLat / span * scale,
		AccelLong:    fitSlope(frames, velLong) * scale,
		AccelLat:     fitSlope(frames, velLat) * scale,
		Curvature:    math.Abs((tail - head) / curvatureSteps),
		Direction:    bearing(dirX.Y, dirX.X),
		Length:       last.PathLength * scale,
	}
}

// fitSlope fits a line through (x, y) minimizing squared orthogonal distances and returns its slope.
// Line direction is the principal eigenvector of the covariance matrix. A vertical fit gives zero.
func fitSlope(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	sxx := stat.Variance(x, nil)
	syy := stat.Variance(y, nil)
	sxy := stat.Covariance(x, y, nil)
	cov := mat.NewSymDense(2, []float64{
		sxx, sxy,
		sxy, syy,
	})
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return 0
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	// Eigenvalues are ascending, so the principal direction is the last column
	dx := vecs.At(0, 1)
	dy := vecs.At(1, 1)
	if dx == 0 {
		return 0
	}
	return dy / dx
}
