package motion

import (
	"io"
	"log/slog"
	"slices"

	"github.com/pkg/errors"
)

// TrackManager grows many trajectories at once and turns finalized ones into feature vectors.
// It is driven by one Evaluate call per video frame and is not safe for concurrent use.
type TrackManager struct {
	cfg Config
	// Index of the frame the next Evaluate call processes
	frame int
	// Trajectories still accepting samples, longest first after every spawn
	tentative []*Trajectory
	// Finalized valid trajectories, newest first
	window *Window
	// Optional per-trajectory scale (e.g. perspective correction by seed position)
	scaleFn func(Point) float64
	// Optional observer of finalized trajectories
	onFinalize func(traj *Trajectory, valid bool)
	logger     *slog.Logger
}

// Option configures TrackManager
type Option func(*TrackManager)

// WithLogger sets logger for debug messages on finalization and feature emission
func WithLogger(logger *slog.Logger) Option {
	return func(tm *TrackManager) {
		if logger != nil {
			tm.logger = logger
		}
	}
}

// WithScaleFunc sets function which picks scale factor for new trajectory by its seed point.
// Config.Scale is used when not set
func WithScaleFunc(fn func(seed Point) float64) Option {
	return func(tm *TrackManager) {
		tm.scaleFn = fn
	}
}

// WithFinalizeHook sets function called for every trajectory leaving the tentative pool
func WithFinalizeHook(fn func(traj *Trajectory, valid bool)) Option {
	return func(tm *TrackManager) {
		tm.onFinalize = fn
	}
}

// NewTrackManagerDefault creates TrackManager with DefaultConfig
func NewTrackManagerDefault() *TrackManager {
	tm, _ := NewTrackManager(DefaultConfig())
	return tm
}

// NewTrackManager creates new instance of TrackManager
func NewTrackManager(cfg Config, opts ...Option) (*TrackManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Can't create track manager")
	}
	tm := &TrackManager{
		cfg:       cfg,
		tentative: make([]*Trajectory, 0, 32),
		window:    NewWindow(cfg.WindowSize),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Evaluate processes candidate points of the current frame and advances frame counter.
// Done trajectories leave the tentative pool first: valid ones go to the window and each of them
// yields a feature vector when the window is full afterwards. Remaining trajectories take the first
// candidate they accept (greedy, in pool order). Every unclaimed candidate seeds a new trajectory.
// Candidates slice is not modified.
func (tm *TrackManager) Evaluate(candidates []Point) []FeatureVector {
	pool := make([]Point, len(candidates))
	copy(pool, candidates)

	var features []FeatureVector
	kept := tm.tentative[:0]
	for _, traj := range tm.tentative {
		if traj.Done(tm.frame) {
			if fv, ok := tm.finalize(traj); ok {
				features = append(features, fv)
			}
			continue
		}
		for i := range pool {
			if traj.Push(pool[i], tm.frame) {
				pool = slices.Delete(pool, i, i+1)
				break
			}
		}
		kept = append(kept, traj)
	}
	clear(tm.tentative[len(kept):])

	for _, pt := range pool {
		kept = append(kept, tm.spawn(pt))
	}
	if len(pool) > 0 {
		slices.SortStableFunc(kept, func(a, b *Trajectory) int {
			return BySampleCount(b, a)
		})
	}
	tm.tentative = kept
	tm.frame++
	return features
}

// finalize moves done trajectory out of the tentative pool.
// Returns feature vector if trajectory was valid and the window is full after insertion.
func (tm *TrackManager) finalize(traj *Trajectory) (FeatureVector, bool) {
	valid := traj.Valid()
	if tm.onFinalize != nil {
		tm.onFinalize(traj, valid)
	}
	if !valid {
		return nil, false
	}
	tm.window.Push(traj)
	st := traj.Stats()
	tm.logger.Debug("trajectory finalized",
		"id", traj.ID(),
		"frame", tm.frame,
		"samples", traj.Len(),
		"length", st.Length,
		"direction", st.Direction,
	)
	if !tm.window.Full() {
		return nil, false
	}
	fv := assembleFeatures(tm.window.items)
	tm.logger.Debug("feature vector emitted", "frame", tm.frame, "width", len(fv))
	return fv, true
}

func (tm *TrackManager) spawn(pt Point) *Trajectory {
	scale := tm.cfg.Scale
	if tm.scaleFn != nil {
		scale = tm.scaleFn(pt)
	}
	return NewTrajectoryWithScale(pt, tm.frame, tm.cfg, scale)
}

// Reset drops every tentative and finalized trajectory. Frame counter keeps going
func (tm *TrackManager) Reset() {
	clear(tm.tentative)
	tm.tentative = tm.tentative[:0]
	tm.window.Clear()
}

// Config returns manager's thresholds
func (tm *TrackManager) Config() Config {
	return tm.cfg
}

// Frame returns index of the frame the next Evaluate call will process
func (tm *TrackManager) Frame() int {
	return tm.frame
}

// TentativeCount returns number of trajectories still accepting samples
func (tm *TrackManager) TentativeCount() int {
	return len(tm.tentative)
}

// Tentative returns copy of the tentative pool in evaluation order
func (tm *TrackManager) Tentative() []*Trajectory {
	out := make([]*Trajectory, len(tm.tentative))
	copy(out, tm.tentative)
	return out
}

// Window returns finalized trajectories, newest first
func (tm *TrackManager) Window() []*Trajectory {
	return tm.window.Items()
}

// WindowLen returns number of finalized trajectories in the window
func (tm *TrackManager) WindowLen() int {
	return tm.window.Len()
}

// LastStats returns statistics of the most recently finalized trajectory, zero if there is none
func (tm *TrackManager) LastStats() Stats {
	traj := tm.window.Front()
	if traj == nil {
		return Stats{}
	}
	return traj.Stats()
}
