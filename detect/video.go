package detect

import (
	"context"
	"io"

	"github.com/LdDl/motion-features/motion"
	"github.com/LdDl/motion-features/pipeline"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// VideoSource reads frames from a video file and reduces them to ball candidates.
// Frame.Image holds *gocv.Mat which stays valid until the next call of Next.
type VideoSource struct {
	capture  *gocv.VideoCapture
	detector *BallDetector
	img      gocv.Mat
	index    int
}

// OpenVideo opens video file at path. Detector is owned by caller
func OpenVideo(path string, detector *BallDetector) (*VideoSource, error) {
	if detector == nil {
		return nil, errors.New("nil detector")
	}
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open video %s", path)
	}
	return &VideoSource{
		capture:  capture,
		detector: detector,
		img:      gocv.NewMat(),
	}, nil
}

// Next decodes next frame and returns its candidates; io.EOF after the last frame
func (src *VideoSource) Next(ctx context.Context) (pipeline.Frame, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Frame{}, err
	}
	if ok := src.capture.Read(&src.img); !ok || src.img.Empty() {
		return pipeline.Frame{}, io.EOF
	}
	points, err := src.detector.Detect(src.img)
	if err != nil {
		return pipeline.Frame{}, errors.Wrapf(err, "Can't detect candidates on frame %d", src.index)
	}
	frame := pipeline.Frame{
		Index:  src.index,
		Points: points,
		Image:  &src.img,
	}
	src.index++
	return frame, nil
}

// Blobs returns contours of the last decoded frame
func (src *VideoSource) Blobs() []Blob {
	return src.detector.Blobs()
}

// FrameSize returns width and height of decoded frames as reported by container
func (src *VideoSource) FrameSize() (int, int) {
	return int(src.capture.Get(gocv.VideoCaptureFrameWidth)), int(src.capture.Get(gocv.VideoCaptureFrameHeight))
}

// Close releases decoder and frame buffer
func (src *VideoSource) Close() error {
	if err := src.img.Close(); err != nil {
		return errors.Wrap(err, "Can't close frame buffer")
	}
	return errors.Wrap(src.capture.Close(), "Can't close video")
}

// ScaleByRow returns scale function for motion.WithScaleFunc that grows linearly from top to bottom
// of a frame with given height: near (bottom) pixels cover less ground than far (top) ones.
// top and bottom are scale factors at rows 0 and height.
func ScaleByRow(height int, top, bottom float64) func(seed motion.Point) float64 {
	return func(seed motion.Point) float64 {
		if height <= 0 {
			return top
		}
		t := seed.Y / float64(height)
		t = max(0, min(1, t))
		return top + (bottom-top)*t
	}
}
