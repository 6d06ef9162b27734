package telemetry

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteSliceStatsCSV writes one CSV row per slice, with a header.
func WriteSliceStatsCSV(w io.Writer, stats []SliceStats) error {
	if err := gocsv.Marshal(stats, w); err != nil {
		return fmt.Errorf("writing slice stats: %w", err)
	}
	return nil
}

// SliceStatsCSV renders stats as a CSV document.
func SliceStatsCSV(stats []SliceStats) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSliceStatsCSV(&buf, stats); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadSliceStatsCSV parses a document written by WriteSliceStatsCSV.
func ReadSliceStatsCSV(r io.Reader) ([]SliceStats, error) {
	var stats []SliceStats
	if err := gocsv.Unmarshal(r, &stats); err != nil {
		return nil, fmt.Errorf("reading slice stats: %w", err)
	}
	return stats, nil
}
