package motion

import (
	"image"
	"math"
)

// Point is a 2D position in pixel coordinates
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

// ImagePoint rounds point to the nearest pixel
func (p Point) ImagePoint() image.Point {
	return image.Point{
		X: int(math.Round(p.X)),
		Y: int(math.Round(p.Y)),
	}
}

// Sub returns vector p - other
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Dot returns scalar product of p and other treated as vectors
func (p Point) Dot(other Point) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Norm returns length of p treated as vector
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalize returns unit vector with the same direction as p.
// Zero vector stays zero.
func (p Point) Normalize() Point {
	n := p.Norm()
	if n == 0 {
		return Point{}
	}
	return Point{X: p.X / n, Y: p.Y / n}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(float64(p1.X-p2.X), 2) + math.Pow(float64(p1.Y-p2.Y), 2))
}

// bearing returns angle of vector (dx, dy) in degrees within [0, 360)
func bearing(dy, dx float64) float64 {
	deg := math.Atan2(dy, dx) * 180.0 / math.Pi
	if deg < 0 {
		deg += 360.0
	}
	if deg >= 360.0 {
		deg -= 360.0
	}
	return deg
}
