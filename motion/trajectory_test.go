package motion

import (
	"math"
	"slices"
	"testing"

	"github.com/google/uuid"
)

func pushAll(t *testing.T, traj *Trajectory, points []Point, startFrame int) {
	t.Helper()
	for i, pt := range points {
		if !traj.Push(pt, startFrame+i) {
			t.Fatalf("Point %v at frame %d should be accepted", pt, startFrame+i)
		}
	}
}

func TestNewTrajectory(t *testing.T) {
	cfg := DefaultConfig()
	traj := NewTrajectory(NewPoint(5, 7), 12, cfg)
	if traj.ID() == uuid.Nil {
		t.Error("Trajectory ID should not be nil")
	}
	if traj.Len() != 1 {
		t.Errorf("Expected 1 sample, got %d", traj.Len())
	}
	last := traj.Last()
	if last.Frame != 12 || last.Point != NewPoint(5, 7) || last.PathLength != 0 || last.Bearing != 0 {
		t.Errorf("Unexpected seed sample: %+v", last)
	}
	if traj.Scale() != 1.0 {
		t.Errorf("Expected default scale 1.0, got %f", traj.Scale())
	}
	if NewTrajectoryWithScale(Point{}, 0, cfg, -3).Scale() != 1.0 {
		t.Error("Non-positive scale should fall back to 1.0")
	}
}

func TestPushStraightLine(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	pushAll(t, traj, []Point{{10, 0}, {20, 0}, {30, 0}}, 1)
	if traj.Len() != 4 {
		t.Fatalf("Expected 4 samples, got %d", traj.Len())
	}
	samples := traj.Samples()
	for i := 1; i < len(samples); i++ {
		if samples[i].Frame <= samples[i-1].Frame {
			t.Errorf("Frames must increase: %d after %d", samples[i].Frame, samples[i-1].Frame)
		}
		if samples[i].PathLength < samples[i-1].PathLength {
			t.Errorf("Path length must not decrease: %f after %f", samples[i].PathLength, samples[i-1].PathLength)
		}
	}
	if math.Abs(traj.Last().PathLength-30) > eps {
		t.Errorf("Expected path length 30, got %f", traj.Last().PathLength)
	}
	expectedPoints := []Point{{0, 0}, {10, 0}, {20, 0}, {30, 0}}
	if !slices.Equal(traj.Points(), expectedPoints) {
		t.Errorf("Expected points %v, got %v", expectedPoints, traj.Points())
	}
}

func TestPushMaxJump(t *testing.T) {
	cfg := DefaultConfig()

	traj := NewTrajectory(NewPoint(0, 0), 0, cfg)
	if traj.Push(NewPoint(51, 0), 1) {
		t.Error("Point farther than max jump distance should be rejected")
	}
	if !traj.Push(NewPoint(50, 0), 1) {
		t.Error("Point exactly at max jump distance should be accepted")
	}

	scaled := NewTrajectoryWithScale(NewPoint(0, 0), 0, cfg, 2.0)
	if scaled.Push(NewPoint(30, 0), 1) {
		t.Error("Scaled distance 60 exceeds max jump distance 50 and should be rejected")
	}
	if scaled.Len() != 1 {
		t.Errorf("Rejected point must not change trajectory, got %d samples", scaled.Len())
	}
}

func TestPushTurnAngle(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	pushAll(t, traj, []Point{{10, 0}, {20, 0}}, 1)
	// 45 degrees from the last sample and ~26.6 degrees from the one before it
	if traj.Push(NewPoint(30, 10), 3) {
		t.Error("Sharp turn should be rejected")
	}
	if traj.Len() != 3 {
		t.Errorf("Expected 3 samples, got %d", traj.Len())
	}
	// ~5.7 degrees is fine
	if !traj.Push(NewPoint(30, 1), 3) {
		t.Error("Gentle turn should be accepted")
	}
}

func TestPushTurnAngleWrapsAround(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	// Bearing ~354.3 degrees for the last segment
	pushAll(t, traj, []Point{{10, 0}, {20, -1}}, 1)
	// Bearing ~5.7 degrees: 11.4 degrees away through zero
	if !traj.Push(NewPoint(30, 0), 3) {
		t.Fatal("Point should be accepted")
	}
	if traj.Len() != 4 {
		t.Errorf("Turn across zero bearing should be measured the short way and match the last sample, got %d samples", traj.Len())
	}
}

func TestPushSpeedRatio(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	pushAll(t, traj, []Point{{10, 0}, {20, 0}}, 1)
	// Speed 32 after 10 (lag 0) and 21 after 10 (lag 1)
	if traj.Push(NewPoint(52, 0), 3) {
		t.Error("Sudden speed up should be rejected")
	}
	pushAll(t, traj, []Point{{30, 0}}, 3)
	// Speed 0.25 after 10 (lag 0) and 3.5 after 10 (lag 1)
	if traj.Push(NewPoint(30.5, 0), 5) {
		t.Error("Sudden slow down should be rejected")
	}
	if traj.Len() != 4 {
		t.Errorf("Expected 4 samples, got %d", traj.Len())
	}
}

func TestPushZeroDistance(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	pushAll(t, traj, []Point{{10, 0}, {10, 0}}, 1)
	if traj.Len() != 3 {
		t.Errorf("Expected 3 samples, got %d", traj.Len())
	}
	if math.Abs(traj.Last().PathLength-10) > eps {
		t.Errorf("Standing still must not add path length, got %f", traj.Last().PathLength)
	}
}

func TestPushSameFrame(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 4, DefaultConfig())
	if traj.Push(NewPoint(1, 0), 4) {
		t.Error("Point on the same frame as the last sample should be rejected")
	}
	if traj.Push(NewPoint(1, 0), 3) {
		t.Error("Point from the past should be rejected")
	}
}

func TestPushLagOneRollback(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	// (30, 2) is noise which is still accepted on frame 3
	pushAll(t, traj, []Point{{10, 0}, {20, 0}, {30, 2}}, 1)
	before := traj.Len()

	// Fails against (30, 2) by turn angle, matches (20, 0)
	if !traj.Push(NewPoint(40, 0), 4) {
		t.Fatal("Point should be accepted via the second-to-last sample")
	}
	if traj.Len() != before {
		t.Errorf("Rollback and append should keep sample count %d, got %d", before, traj.Len())
	}
	expectedPoints := []Point{{0, 0}, {10, 0}, {20, 0}, {40, 0}}
	if !slices.Equal(traj.Points(), expectedPoints) {
		t.Errorf("Expected points %v, got %v", expectedPoints, traj.Points())
	}
	last := traj.Last()
	if last.Frame != 4 {
		t.Errorf("Expected last frame 4, got %d", last.Frame)
	}
	if math.Abs(last.PathLength-40) > eps {
		t.Errorf("Expected path length 40 after rollback, got %f", last.PathLength)
	}
	if math.Abs(last.Bearing) > eps {
		t.Errorf("Expected bearing 0, got %f", last.Bearing)
	}
}

func TestPushLagOneFromSeed(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	pushAll(t, traj, []Point{{10, 0}}, 1)
	// 45 degrees off the last segment, but the seed has no incoming segment
	if !traj.Push(NewPoint(20, 10), 2) {
		t.Fatal("Point should be accepted against the seed")
	}
	if traj.Len() != 2 {
		t.Errorf("Expected 2 samples, got %d", traj.Len())
	}
}

func TestDone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MissedFrames = 3
	traj := NewTrajectory(NewPoint(0, 0), 10, cfg)
	cases := []struct {
		frame    int
		expected bool
	}{
		{10, false},
		{11, false},
		{12, false},
		{13, true},
		{20, true},
	}
	for _, tc := range cases {
		if traj.Done(tc.frame) != tc.expected {
			t.Errorf("Done(%d) should be %v", tc.frame, tc.expected)
		}
	}
}

func TestValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSamples = 6
	cfg.MinLength = 50

	traj := NewTrajectory(NewPoint(0, 0), 0, cfg)
	pushAll(t, traj, []Point{{12.5, 0}, {25, 0}, {37.5, 0}, {50, 0}}, 1)
	if traj.Valid() {
		t.Errorf("Trajectory with %d samples should not be valid", traj.Len())
	}
	pushAll(t, traj, []Point{{62.5, 0}}, 5)
	if !traj.Valid() {
		t.Errorf("Trajectory with %d samples and length %f should be valid", traj.Len(), traj.Last().PathLength)
	}

	short := NewTrajectoryWithScale(NewPoint(0, 0), 0, cfg, 0.5)
	pushAll(t, short, []Point{{10, 0}, {20, 0}, {30, 0}, {40, 0}, {50, 0}, {60, 0}}, 1)
	if short.Valid() {
		t.Error("Scaled length 30 is below min length and trajectory should not be valid")
	}
}

func TestBySampleCount(t *testing.T) {
	cfg := DefaultConfig()
	a := NewTrajectory(NewPoint(0, 0), 0, cfg)
	b := NewTrajectory(NewPoint(100, 100), 0, cfg)
	pushAll(t, b, []Point{{110, 100}}, 1)
	if BySampleCount(a, b) >= 0 {
		t.Error("Shorter trajectory should go first")
	}
	if BySampleCount(b, a) <= 0 {
		t.Error("Longer trajectory should go last")
	}
	if BySampleCount(a, a) != 0 {
		t.Error("Equal lengths should compare equal")
	}
}

func TestSmoothed(t *testing.T) {
	traj := NewTrajectory(NewPoint(0, 0), 0, DefaultConfig())
	pushAll(t, traj, []Point{{10, 0}, {20, 0}, {30, 0}}, 1)
	smoothed, err := traj.Smoothed()
	if err != nil {
		t.Fatal(err)
	}
	if len(smoothed) != traj.Len() {
		t.Errorf("Expected %d smoothed points, got %d", traj.Len(), len(smoothed))
	}
	if smoothed[0] != NewPoint(0, 0) {
		t.Errorf("Smoothing should start at the seed, got %v", smoothed[0])
	}
}
