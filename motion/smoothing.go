package motion

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// Smoothed replays trajectory's samples through a constant-acceleration Kalman filter
// and returns filtered positions, one per sample. Missed frames are bridged with extra predictions.
// Result is meant for drawing only: statistics always use raw samples.
func (traj *Trajectory) Smoothed() ([]Point, error) {
	seed := traj.samples[0]

	/* Kalman filter props */
	dt := 1.0
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(seed.Point.X, seed.Point.Y))

	out := make([]Point, 0, len(traj.samples))
	out = append(out, seed.Point)
	for i := 1; i < len(traj.samples); i++ {
		sample := traj.samples[i]
		for f := traj.samples[i-1].Frame; f < sample.Frame; f++ {
			kf.Predict()
		}
		err := kf.Update(sample.Point.X, sample.Point.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't smooth sample at frame %d", sample.Frame)
		}
		stateX, stateY := kf.GetState()
		out = append(out, Point{X: stateX, Y: stateY})
	}
	return out, nil
}
