package motion

import (
	"cmp"
	"math"

	"github.com/google/uuid"
)

// Sample is a single accepted point of a trajectory
type Sample struct {
	// Frame index the point was observed at
	Frame int
	// Position in pixels
	Point Point
	// Bearing (degrees, [0, 360)) of the segment leading to this sample. Zero for the seed
	Bearing float64
	// Path length (pixels) from the seed up to and including this sample
	PathLength float64
}

// Trajectory is a sequence of samples left by a single moving point.
// It grows while new candidates pass the match test and becomes done after
// Config.MissedFrames frames without a match.
type Trajectory struct {
	id      uuid.UUID
	samples []Sample
	scale   float64
	cfg     Config
	stats   Stats
	dirty   bool
}

// NewTrajectory creates trajectory seeded by point observed at given frame.
// Scale is taken from cfg.Scale
func NewTrajectory(point Point, frame int, cfg Config) *Trajectory {
	return NewTrajectoryWithScale(point, frame, cfg, cfg.Scale)
}

// NewTrajectoryWithScale creates trajectory with explicit scale factor (e.g. perspective correction for seed position)
func NewTrajectoryWithScale(point Point, frame int, cfg Config, scale float64) *Trajectory {
	if scale <= 0 {
		scale = 1.0
	}
	traj := Trajectory{
		id:      uuid.New(),
		samples: make([]Sample, 0, 16),
		scale:   scale,
		cfg:     cfg,
	}
	traj.samples = append(traj.samples, Sample{
		Frame:      frame,
		Point:      point,
		Bearing:    0.0,
		PathLength: 0.0,
	})
	return &traj
}

// ID returns trajectory's identifier
func (traj *Trajectory) ID() uuid.UUID {
	return traj.id
}

// Len returns number of samples
func (traj *Trajectory) Len() int {
	return len(traj.samples)
}

// Scale returns trajectory's scale factor
func (traj *Trajectory) Scale() float64 {
	return traj.scale
}

// Samples returns copy of trajectory's samples
func (traj *Trajectory) Samples() []Sample {
	out := make([]Sample, len(traj.samples))
	copy(out, traj.samples)
	return out
}

// Points returns copy of accepted positions
func (traj *Trajectory) Points() []Point {
	out := make([]Point, len(traj.samples))
	for i := range traj.samples {
		out[i] = traj.samples[i].Point
	}
	return out
}

// Last returns the most recent sample
func (traj *Trajectory) Last() Sample {
	return traj.samples[len(traj.samples)-1]
}

// Push tries to extend trajectory with point observed at frame.
// The point is tested against the last sample first and then against the one before it;
// in the latter case the last sample is considered noise and dropped.
// Returns true if the point was accepted. Frames must be increasing: a point at or
// before the last sample's frame is never accepted.
func (traj *Trajectory) Push(point Point, frame int) bool {
	if frame <= traj.Last().Frame {
		return false
	}
	dist, ang, ok := traj.testMatch(point, 0, frame)
	if !ok {
		dist, ang, ok = traj.testMatch(point, 1, frame)
		if !ok {
			return false
		}
		traj.samples = traj.samples[:len(traj.samples)-1]
	}
	traj.samples = append(traj.samples, Sample{
		Frame:      frame,
		Point:      point,
		Bearing:    ang,
		PathLength: traj.Last().PathLength + dist,
	})
	traj.dirty = true
	return true
}

// testMatch checks whether point observed at frame continues trajectory from sample
// located lag positions before the last one. Returns distance and bearing to point.
func (traj *Trajectory) testMatch(point Point, lag int, frame int) (float64, float64, bool) {
	idx := len(traj.samples) - lag - 1
	if idx < 0 {
		return 0, 0, false
	}
	ref := traj.samples[idx]
	dist := euclideanDistance(point, ref.Point)
	ang := bearing(point.Y-ref.Point.Y, point.X-ref.Point.X)
	if dist*traj.scale > traj.cfg.MaxJumpDistance {
		return dist, ang, false
	}
	// Seed has no incoming segment to compare with, and staying still is always fine
	if idx == 0 || dist == 0 {
		return dist, ang, true
	}
	if angleDeviation(ang, ref.Bearing) > traj.cfg.MaxTurnAngle {
		return dist, ang, false
	}
	prev := traj.samples[idx-1]
	speed := dist / float64(frame-ref.Frame)
	tailSpeed := (ref.PathLength - prev.PathLength) / float64(ref.Frame-prev.Frame)
	speedRatio := math.Max(speed/tailSpeed, tailSpeed/speed)
	if math.IsNaN(speedRatio) || speedRatio > traj.cfg.MaxSpeedRatio {
		return dist, ang, false
	}
	return dist, ang, true
}

// Done returns true if trajectory has not been extended for Config.MissedFrames frames
func (traj *Trajectory) Done(frame int) bool {
	return frame-traj.Last().Frame >= traj.cfg.MissedFrames
}

// Valid returns true if trajectory is long enough both in samples and in scaled path length
func (traj *Trajectory) Valid() bool {
	return len(traj.samples) >= traj.cfg.MinSamples && traj.Last().PathLength*traj.scale >= traj.cfg.MinLength
}

// BySampleCount orders trajectories by number of samples, shortest first
func BySampleCount(a, b *Trajectory) int {
	return cmp.Compare(a.Len(), b.Len())
}
