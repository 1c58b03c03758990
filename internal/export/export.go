// Package export writes result tables as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rustam-sa/nba-01/internal/models"
)

// DateLayout is the date stamp used in exported file names
const DateLayout = "2006-01-02"

// Table file prefixes
const (
	PropsPrefix        = "props"
	CombinationsPrefix = "combinations"
	ParlaysPrefix      = "parlays"
)

// FileName returns "<prefix>_<date>.csv"
func FileName(prefix string, date time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, date.Format(DateLayout))
}

// WriteTable writes the header and rows of t as CSV
func WriteTable(w io.Writer, t models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteTableFile writes t to dir/name, creating dir when missing
func WriteTableFile(dir, name string, t models.Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTable(f, t); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// WriteRun exports the proposition, combination and parlay tables of a run
// and returns the written paths in that order.
func WriteRun(dir string, run *models.Run) ([]string, error) {
	date := run.StartedAt
	if date.IsZero() {
		date = time.Now()
	}

	tables := []struct {
		prefix string
		table  models.Table
	}{
		{PropsPrefix, models.PropositionTable(run.Propositions)},
		{CombinationsPrefix, models.CombinationTable(run.Propositions, run.Combinations)},
		{ParlaysPrefix, models.ParlayTable(run.Propositions, run.Portfolio)},
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path, err := WriteTableFile(dir, FileName(t.prefix, date), t.table)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
