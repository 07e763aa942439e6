// Package overlay draws debug information (window trails, detector blobs, status line) on video frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/LdDl/motion-features/detect"
	"github.com/LdDl/motion-features/motion"
	"gocv.io/x/gocv"
)

var (
	newestColor   = color.RGBA{R: 82, G: 151, B: 255, A: 255}
	oldestColor   = color.RGBA{R: 255, G: 82, B: 154, A: 255}
	acceptedColor = color.RGBA{R: 148, G: 255, B: 71, A: 255}
	rejectedColor = color.RGBA{R: 255, G: 71, B: 169, A: 255}
	smoothedColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	statusColor   = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// DrawTrails draws every trajectory of window (most recent first) as a polyline with dots
// and an arrow head on its last segment. Colour fades from newest to oldest.
func DrawTrails(img *gocv.Mat, window []*motion.Trajectory) {
	for i, traj := range window {
		c := trailColor(i, len(window))
		pts := traj.Points()
		for j := range pts {
			pt := pts[j].ImagePoint()
			gocv.Circle(img, pt, 2, c, -1)
			if j == 0 {
				continue
			}
			prev := pts[j-1].ImagePoint()
			if j == len(pts)-1 {
				gocv.ArrowedLine(img, prev, pt, c, 2)
				continue
			}
			gocv.Line(img, prev, pt, c, 2)
		}
	}
}

// DrawSmoothed draws Kalman smoothed polyline of trajectory. Trajectories which can't be smoothed are skipped
func DrawSmoothed(img *gocv.Mat, traj *motion.Trajectory) {
	pts, err := traj.Smoothed()
	if err != nil {
		return
	}
	for j := 1; j < len(pts); j++ {
		gocv.Line(img, pts[j-1].ImagePoint(), pts[j].ImagePoint(), smoothedColor, 1)
	}
}

// DrawBlobs draws contours found by detector: accepted candidates in green, rejected ones in magenta
func DrawBlobs(img *gocv.Mat, blobs []detect.Blob) {
	for _, blob := range blobs {
		if len(blob.Contour) == 0 {
			continue
		}
		c := rejectedColor
		if blob.Accepted {
			c = acceptedColor
		}
		contours := gocv.NewPointsVectorFromPoints([][]image.Point{blob.Contour})
		gocv.DrawContours(img, contours, -1, c, 1)
		contours.Close()
		if blob.Accepted {
			gocv.Circle(img, blob.Center.ImagePoint(), 3, c, -1)
		}
	}
}

// DrawStatus prints number of tentative trajectories and statistics of the last finalized one
func DrawStatus(img *gocv.Mat, tentative int, stats motion.Stats) {
	gocv.PutText(img, fmt.Sprintf("tentative: %d", tentative), image.Pt(10, 20), gocv.FontHersheySimplex, 0.5, statusColor, 1)
	gocv.PutText(img, statusLine(stats), image.Pt(10, 40), gocv.FontHersheySimplex, 0.5, statusColor, 1)
}

func statusLine(stats motion.Stats) string {
	return fmt.Sprintf("v=%.1f/%.1f a=%.2f/%.2f k=%.2f dir=%.0f len=%.0f",
		stats.VelocityLong, stats.VelocityLat, stats.AccelLong, stats.AccelLat,
		stats.Curvature, stats.Direction, stats.Length,
	)
}

// trailColor interpolates between newest and oldest colour for position i of n
func trailColor(i, n int) color.RGBA {
	if n <= 1 {
		return newestColor
	}
	t := float64(i) / float64(n-1)
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return color.RGBA{
		R: lerp(newestColor.R, oldestColor.R),
		G: lerp(newestColor.G, oldestColor.G),
		B: lerp(newestColor.B, oldestColor.B),
		A: 255,
	}
}
