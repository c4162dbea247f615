// Package telemetry writes per-frame confetti statistics as CSV.
package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/iburimskiy/confetti-rain/internal/confetti"
)

// FrameRecord is one CSV row.
type FrameRecord struct {
	Frame    int `csv:"frame"`
	Living   int `csv:"living"`
	Recycled int `csv:"recycled"`
	Killed   int `csv:"killed"`
}

// FrameLog appends frame records to a CSV file. A nil *FrameLog discards
// everything, so callers need not check whether output is enabled.
type FrameLog struct {
	out           io.WriteCloser
	headerWritten bool
	err           error
}

// Open creates the CSV file at path. Returns nil if path is empty.
func Open(path string) (*FrameLog, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating stats directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return NewFrameLog(f), nil
}

// NewFrameLog writes records to w and closes it on Close.
func NewFrameLog(w io.WriteCloser) *FrameLog {
	return &FrameLog{out: w}
}

// Write appends one record.
func (l *FrameLog) Write(stats confetti.FrameStats) error {
	if l == nil {
		return nil
	}

	records := []FrameRecord{{
		Frame:    stats.Frame,
		Living:   stats.Living,
		Recycled: stats.Recycled,
		Killed:   stats.Killed,
	}}

	if !l.headerWritten {
		if err := gocsv.Marshal(records, l.out); err != nil {
			return fmt.Errorf("writing frame stats: %w", err)
		}
		l.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, l.out); err != nil {
			return fmt.Errorf("writing frame stats: %w", err)
		}
	}
	return nil
}

// Observer adapts the log to confetti.WithFrameObserver. Only the first
// write error is logged; later frames are dropped after a failure.
func (l *FrameLog) Observer(logger *slog.Logger) func(confetti.FrameStats) {
	return func(stats confetti.FrameStats) {
		if l == nil || l.err != nil {
			return
		}
		if err := l.Write(stats); err != nil {
			l.err = err
			logger.Error("frame stats disabled", "error", err)
		}
	}
}

// Err returns the first write error seen by the observer.
func (l *FrameLog) Err() error {
	if l == nil {
		return nil
	}
	return l.err
}

// Close closes the underlying file.
func (l *FrameLog) Close() error {
	if l == nil {
		return nil
	}
	return l.out.Close()
}
