// Package pipeline drives a track manager frame by frame: candidate points come from a Source,
// feature vectors go to a Sink.
package pipeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/LdDl/motion-features/motion"
	"github.com/pkg/errors"
)

// Frame is a single video frame reduced to candidate points
type Frame struct {
	// Sequential index assigned by source
	Index int
	// Candidate points, unordered, possibly empty
	Points []motion.Point
	// Source specific payload (e.g. decoded image) for hooks
	Image any
}

// Source yields frames until io.EOF
type Source interface {
	Next(ctx context.Context) (Frame, error)
}

// Sink consumes feature vectors
type Sink interface {
	Write(frame int, row []float64) error
}

// Result summarizes a run
type Result struct {
	Frames   int
	Features int
}

type settings struct {
	onFrame func(frame Frame, features []motion.FeatureVector)
	logger  *slog.Logger
}

// Option configures Run
type Option func(*settings)

// WithFrameHook sets function called after every evaluated frame (e.g. for drawing overlays)
func WithFrameHook(fn func(frame Frame, features []motion.FeatureVector)) Option {
	return func(s *settings) {
		s.onFrame = fn
	}
}

// WithLogger sets logger for run progress
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Run evaluates frames from src with mgr and passes every feature vector to sink.
// Returns when src reports io.EOF, ctx is canceled or any stage fails.
// Track manager state is left as is: call Reset on it to discard in-flight trajectories.
func Run(ctx context.Context, src Source, mgr *motion.TrackManager, sink Sink, opts ...Option) (Result, error) {
	s := settings{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&s)
	}

	res := Result{}
	s.logger.Info("pipeline started", "frame", mgr.Frame())
	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("pipeline canceled", "frames", res.Frames, "features", res.Features)
			return res, err
		}
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, errors.Wrapf(err, "Can't read frame %d", res.Frames)
		}

		frameIndex := mgr.Frame()
		features := mgr.Evaluate(frame.Points)
		res.Frames++
		res.Features += len(features)
		for _, fv := range features {
			if sink == nil {
				break
			}
			if err := sink.Write(frameIndex, fv); err != nil {
				s.logger.Warn("sink failed", "frame", frameIndex, "error", err)
				return res, errors.Wrapf(err, "Can't write features of frame %d", frameIndex)
			}
		}
		if s.onFrame != nil {
			s.onFrame(frame, features)
		}
	}
	s.logger.Info("pipeline finished", "frames", res.Frames, "features", res.Features)
	return res, nil
}
