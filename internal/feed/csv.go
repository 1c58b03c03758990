package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVColumns is the header of the structured feed
var CSVColumns = []string{"player", "team", "stat", "over_threshold", "over_odds", "under_threshold", "under_odds"}

// ParseCSV reads the structured feed. Columns are located by header name so
// their order is free.
func ParseCSV(r io.Reader) ([]Line, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range CSVColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("feed header lacks column %q", name)
		}
	}

	var lines []Line
	for row := 2; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		get := func(name string) string { return strings.TrimSpace(record[col[name]]) }
		l := Line{Player: get("player"), Team: get("team"), Stat: strings.ToLower(get("stat"))}
		if l.Player == "" || l.Stat == "" {
			return nil, fmt.Errorf("row %d: player and stat are required", row)
		}
		if l.OverThreshold, err = strconv.ParseFloat(get("over_threshold"), 64); err != nil {
			return nil, fmt.Errorf("row %d: over_threshold: %w", row, err)
		}
		if l.UnderThreshold, err = strconv.ParseFloat(get("under_threshold"), 64); err != nil {
			return nil, fmt.Errorf("row %d: under_threshold: %w", row, err)
		}
		if l.OverOdds, err = ParseOdds(get("over_odds")); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if l.UnderOdds, err = ParseOdds(get("under_odds")); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
