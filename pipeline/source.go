package pipeline

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/LdDl/motion-features/motion"
	"github.com/pkg/errors"
)

// SliceSource replays in-memory candidate sets, one per frame
type SliceSource struct {
	frames [][]motion.Point
	pos    int
}

func NewSliceSource(frames [][]motion.Point) *SliceSource {
	return &SliceSource{frames: frames}
}

// Next returns next frame or io.EOF
func (src *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if src.pos >= len(src.frames) {
		return Frame{}, io.EOF
	}
	frame := Frame{
		Index:  src.pos,
		Points: src.frames[src.pos],
	}
	src.pos++
	return frame, nil
}

// ReadPointsCSV reads candidate points stored as "frame;x;y" lines (header optional).
// Frames without any line become empty candidate sets.
func ReadPointsCSV(r io.Reader) ([][]motion.Point, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var frames [][]motion.Point
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "Can't read points CSV")
		}
		line++
		if line == 1 && strings.EqualFold(record[0], "frame") {
			continue
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, errors.Wrapf(err, "Bad frame index on line %d", line)
		}
		if frame < 0 {
			return nil, errors.Errorf("negative frame index %d on line %d", frame, line)
		}
		x, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad x on line %d", line)
		}
		y, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad y on line %d", line)
		}
		for len(frames) <= frame {
			frames = append(frames, nil)
		}
		frames[frame] = append(frames[frame], motion.NewPoint(x, y))
	}
	return frames, nil
}
