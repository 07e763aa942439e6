// Package detect turns video frames into candidate points using background subtraction.
package detect

import (
	"image"
	"math"

	"github.com/LdDl/motion-features/motion"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Blob is a foreground contour found on a frame
type Blob struct {
	Center  motion.Point
	Area    float64
	Contour []image.Point
	// True if area is within detector's bounds and the center was reported as a candidate
	Accepted bool
}

// BallDetector extracts centers of small moving blobs.
// Foreground mask from MOG2 background subtraction is cleaned by two median filters
// and an elliptical dilation; external contours with area strictly between
// MinArea and MaxArea become candidates.
type BallDetector struct {
	MinArea float64
	MaxArea float64

	bgsub  gocv.BackgroundSubtractorMOG2
	mask   gocv.Mat
	kernel gocv.Mat
	blobs  []Blob
}

// dilateRadius is radius (pixels) of the elliptical dilation kernel
const dilateRadius = 5

func NewBallDetector(minArea, maxArea float64) (*BallDetector, error) {
	if minArea < 0 || maxArea <= minArea {
		return nil, errors.Errorf("area bounds must satisfy 0 <= min < max, got [%f, %f]", minArea, maxArea)
	}
	return &BallDetector{
		MinArea: minArea,
		MaxArea: maxArea,
		bgsub:   gocv.NewBackgroundSubtractorMOG2(),
		mask:    gocv.NewMat(),
		kernel:  gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(2*dilateRadius+1, 2*dilateRadius+1)),
	}, nil
}

// Detect updates background model with img and returns candidate points
func (d *BallDetector) Detect(img gocv.Mat) ([]motion.Point, error) {
	if img.Empty() {
		return nil, errors.New("empty frame")
	}
	d.bgsub.Apply(img, &d.mask)
	gocv.MedianBlur(d.mask, &d.mask, 5)
	gocv.MedianBlur(d.mask, &d.mask, 5)
	gocv.Dilate(d.mask, &d.mask, d.kernel)

	contours := gocv.FindContours(d.mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	d.blobs = d.blobs[:0]
	points := make([]motion.Point, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		pts := contour.ToPoints()
		blob := Blob{
			Center:  contourCentroid(pts),
			Area:    gocv.ContourArea(contour),
			Contour: pts,
		}
		blob.Accepted = blob.Area > d.MinArea && blob.Area < d.MaxArea
		if blob.Accepted {
			points = append(points, blob.Center)
		}
		d.blobs = append(d.blobs, blob)
	}
	return points, nil
}

// Blobs returns every contour found by the last Detect call, accepted or not
func (d *BallDetector) Blobs() []Blob {
	out := make([]Blob, len(d.blobs))
	copy(out, d.blobs)
	return out
}

// Close releases OpenCV resources
func (d *BallDetector) Close() error {
	if err := d.bgsub.Close(); err != nil {
		return errors.Wrap(err, "Can't close background subtractor")
	}
	if err := d.mask.Close(); err != nil {
		return errors.Wrap(err, "Can't close mask")
	}
	return errors.Wrap(d.kernel.Close(), "Can't close kernel")
}

// contourCentroid returns centroid of polygon area enclosed by contour (first order moments over area).
// Degenerate contours (lines, single points) fall back to the mean of their vertices.
func contourCentroid(pts []image.Point) motion.Point {
	if len(pts) == 0 {
		return motion.Point{}
	}
	m00, m10, m01 := 0.0, 0.0, 0.0
	for i := range pts {
		p := pts[i]
		q := pts[(i+1)%len(pts)]
		cross := float64(p.X*q.Y - q.X*p.Y)
		m00 += cross
		m10 += float64(p.X+q.X) * cross
		m01 += float64(p.Y+q.Y) * cross
	}
	if math.Abs(m00) < 1e-12 {
		sx, sy := 0.0, 0.0
		for _, p := range pts {
			sx += float64(p.X)
			sy += float64(p.Y)
		}
		n := float64(len(pts))
		return motion.Point{X: sx / n, Y: sy / n}
	}
	// m00 here is twice the signed area, so 3*m00 equals 6*area
	return motion.Point{X: m10 / (3 * m00), Y: m01 / (3 * m00)}
}
