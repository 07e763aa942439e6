// Package sink provides consumers for feature vectors: CSV files and a sqlite store.
package sink

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// CSV writes feature vectors as ';'-separated lines: frame index followed by values
type CSV struct {
	writer      *csv.Writer
	width       int
	wroteHeader bool
}

// NewCSV creates CSV sink for vectors of the given width.
// Header "frame;f0;f1;..." is written before the first vector
func NewCSV(w io.Writer, width int) *CSV {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	return &CSV{
		writer: writer,
		width:  width,
	}
}

// Write writes a single feature vector
func (s *CSV) Write(frame int, row []float64) error {
	if len(row) != s.width {
		return errors.Errorf("feature vector width %d, expected %d", len(row), s.width)
	}
	if !s.wroteHeader {
		header := make([]string, 0, s.width+1)
		header = append(header, "frame")
		for i := 0; i < s.width; i++ {
			header = append(header, "f"+strconv.Itoa(i))
		}
		if err := s.writer.Write(header); err != nil {
			return errors.Wrap(err, "Can't write CSV header")
		}
		s.wroteHeader = true
	}
	record := make([]string, 0, len(row)+1)
	record = append(record, strconv.Itoa(frame))
	for _, value := range row {
		record = append(record, strconv.FormatFloat(value, 'g', -1, 64))
	}
	if err := s.writer.Write(record); err != nil {
		return errors.Wrapf(err, "Can't write features of frame %d", frame)
	}
	return nil
}

// Flush flushes buffered lines to the underlying writer
func (s *CSV) Flush() error {
	s.writer.Flush()
	return errors.Wrap(s.writer.Error(), "Can't flush CSV")
}

// Writer is anything accepting feature vectors
type Writer interface {
	Write(frame int, row []float64) error
}

// Multi passes every vector to each of writers in order, stopping on the first error
type Multi []Writer

func (m Multi) Write(frame int, row []float64) error {
	for _, w := range m {
		if err := w.Write(frame, row); err != nil {
			return err
		}
	}
	return nil
}
