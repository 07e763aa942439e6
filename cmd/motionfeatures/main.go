// Command motionfeatures extracts trajectory feature vectors from a video (or a CSV dump of candidates)
// and writes them to CSV and/or sqlite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/LdDl/motion-features/detect"
	"github.com/LdDl/motion-features/internal/config"
	applog "github.com/LdDl/motion-features/internal/log"
	"github.com/LdDl/motion-features/motion"
	"github.com/LdDl/motion-features/overlay"
	"github.com/LdDl/motion-features/pipeline"
	"github.com/LdDl/motion-features/sink"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

type options struct {
	video       string
	points      string
	configPath  string
	csvPath     string
	dbPath      string
	show        bool
	logLevel    string
	logFormat   string
	scale       float64
	scaleBottom float64
	window      int
}

func main() {
	opts := options{}
	flag.StringVar(&opts.video, "video", "", "Path to input video")
	flag.StringVar(&opts.points, "points", "", "Path to ';'-separated frame;x;y candidates (instead of -video)")
	flag.StringVar(&opts.configPath, "config", "", "Path to JSON tuning file")
	flag.StringVar(&opts.csvPath, "csv", "", "Path to output CSV with feature vectors")
	flag.StringVar(&opts.dbPath, "db", "", "Path to sqlite database for feature vectors and trajectories")
	flag.BoolVar(&opts.show, "show", false, "Show preview window with overlays (video only)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	flag.StringVar(&opts.logFormat, "log-format", "text", "Log format: text|json")
	flag.Float64Var(&opts.scale, "scale", 0, "Scale factor (pixels to output units), overrides config when > 0")
	flag.Float64Var(&opts.scaleBottom, "scale-bottom", 0, "Scale factor at the bottom row of the frame; enables perspective scaling when > 0 (video only)")
	flag.IntVar(&opts.window, "window", 0, "Number of trajectories per feature vector, overrides config when > 0")
	flag.Parse()

	logger := applog.New(opts.logLevel, opts.logFormat, os.Stderr)
	if err := run(opts, logger); err != nil {
		logger.Error("motionfeatures failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	if (opts.video == "") == (opts.points == "") {
		return errors.New("exactly one of -video and -points must be set")
	}

	tuning := &config.TuningConfig{}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return errors.Wrapf(err, "Can't load config %s", opts.configPath)
		}
		tuning = loaded
	}
	cfg := tuning.Apply(motion.DefaultConfig())
	if opts.scale > 0 {
		cfg.Scale = opts.scale
	}
	if opts.window > 0 {
		cfg.WindowSize = opts.window
	}

	var store *sink.Store
	if opts.dbPath != "" {
		var err error
		store, err = sink.Open(opts.dbPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var src pipeline.Source
	var video *detect.VideoSource
	if opts.video != "" {
		detector, err := detect.NewBallDetector(tuning.GetMinBallArea(), tuning.GetMaxBallArea())
		if err != nil {
			return errors.Wrap(err, "Can't create ball detector")
		}
		defer detector.Close()
		video, err = detect.OpenVideo(opts.video, detector)
		if err != nil {
			return err
		}
		defer video.Close()
		src = video
	} else {
		f, err := os.Open(opts.points)
		if err != nil {
			return errors.Wrapf(err, "Can't open points file %s", opts.points)
		}
		frames, err := pipeline.ReadPointsCSV(f)
		f.Close()
		if err != nil {
			return err
		}
		src = pipeline.NewSliceSource(frames)
	}

	mgrOpts := []motion.Option{motion.WithLogger(logger)}
	if store != nil {
		mgrOpts = append(mgrOpts, motion.WithFinalizeHook(func(traj *motion.Trajectory, valid bool) {
			if err := store.SaveTrajectory(traj, valid); err != nil {
				logger.Warn("can't save trajectory", "id", traj.ID(), "error", err)
			}
		}))
	}
	if opts.scaleBottom > 0 {
		if video == nil {
			return errors.New("-scale-bottom needs -video to know frame height")
		}
		_, height := video.FrameSize()
		mgrOpts = append(mgrOpts, motion.WithScaleFunc(detect.ScaleByRow(height, cfg.Scale, opts.scaleBottom)))
	}
	mgr, err := motion.NewTrackManager(cfg, mgrOpts...)
	if err != nil {
		return errors.Wrap(err, "Can't create track manager")
	}

	var writers sink.Multi
	var csvSink *sink.CSV
	if opts.csvPath != "" {
		f, err := os.Create(opts.csvPath)
		if err != nil {
			return errors.Wrapf(err, "Can't create %s", opts.csvPath)
		}
		defer f.Close()
		csvSink = sink.NewCSV(f, cfg.FeatureWidth())
		writers = append(writers, csvSink)
	}
	if store != nil {
		writers = append(writers, store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if opts.show && video != nil {
		window := gocv.NewWindow("motion features")
		defer window.Close()
		runOpts = append(runOpts, pipeline.WithFrameHook(func(frame pipeline.Frame, features []motion.FeatureVector) {
			img, ok := frame.Image.(*gocv.Mat)
			if !ok {
				return
			}
			overlay.DrawBlobs(img, video.Blobs())
			overlay.DrawTrails(img, mgr.Window())
			for _, traj := range mgr.Tentative() {
				overlay.DrawSmoothed(img, traj)
			}
			overlay.DrawStatus(img, mgr.TentativeCount(), mgr.LastStats())
			window.IMShow(*img)
			// Esc
			if window.WaitKey(1) == 27 {
				cancel()
			}
		}))
	}

	res, err := pipeline.Run(ctx, src, mgr, writers, runOpts...)
	if csvSink != nil {
		if flushErr := csvSink.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("stopped by user", "frames", res.Frames, "features", res.Features)
		mgr.Reset()
		err = nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "frames: %d, feature vectors: %d\n", res.Frames, res.Features)
	return nil
}
