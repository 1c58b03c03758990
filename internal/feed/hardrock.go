package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rustam-sa/nba-01/internal/models"
)

// Categories maps sportsbook section labels to statistic names
var Categories = map[string]string{
	"PointsSGP":           models.StatPoints,
	"AssistsSGP":          models.StatAssists,
	"Threes MadeSGP":      models.StatFG3M,
	"ReboundsSGP":         models.StatRebounds,
	"Field Goals MadeSGP": models.StatFGM,
	"StealsSGP":           models.StatSteals,
	"BlocksSGP":           models.StatBlocks,
}

var thresholdPattern = regexp.MustCompile(`(\d+\.\d+)`)

// lineCells is the number of cells following a player name: over
// threshold, over odds, under threshold, under odds.
const lineCells = 4

// ParseHardRock reads the single-column sportsbook layout. The first row is
// a header. Category labels set the statistic, team nicknames set the team,
// and each player name is followed by its four line cells.
func ParseHardRock(r io.Reader, roster *Roster) ([]Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		lines    []Line
		stat     string
		team     string
		current  *Line
		cells    []string
		rowIndex int
	)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read feed: %w", err)
		}
		rowIndex++
		if rowIndex == 1 || len(record) == 0 {
			continue
		}
		cell := strings.TrimSpace(record[0])
		if cell == "" {
			continue
		}

		if s, ok := Categories[cell]; ok {
			stat = s
		}
		if roster.IsTeam(cell) {
			team = cell
		}
		if rosterTeam, ok := roster.Player(cell); ok {
			if stat == "" {
				return nil, fmt.Errorf("row %d: player %s listed before any category", rowIndex, cell)
			}
			lineTeam := team
			if lineTeam == "" {
				lineTeam = rosterTeam
			}
			if lineTeam == "" {
				return nil, fmt.Errorf("row %d: no team known for %s", rowIndex, cell)
			}
			current = &Line{Player: cell, Team: lineTeam, Stat: stat}
			cells = cells[:0]
			continue
		}

		if current == nil {
			continue
		}
		cells = append(cells, cell)
		if len(cells) < lineCells {
			continue
		}

		if err := fillLine(current, cells); err != nil {
			return nil, fmt.Errorf("row %d: %s %s: %w", rowIndex, current.Player, current.Stat, err)
		}
		lines = append(lines, *current)
		current = nil
	}

	return lines, nil
}

func fillLine(l *Line, cells []string) error {
	var err error
	if l.OverThreshold, err = ExtractThreshold(cells[0]); err != nil {
		return err
	}
	if l.OverOdds, err = ParseOdds(cells[1]); err != nil {
		return err
	}
	if l.UnderThreshold, err = ExtractThreshold(cells[2]); err != nil {
		return err
	}
	if l.UnderOdds, err = ParseOdds(cells[3]); err != nil {
		return err
	}
	return nil
}

// ExtractThreshold pulls the first decimal number out of a cell such as "O 24.5"
func ExtractThreshold(cell string) (float64, error) {
	m := thresholdPattern.FindString(cell)
	if m == "" {
		return 0, fmt.Errorf("no threshold in %q", cell)
	}
	return strconv.ParseFloat(m, 64)
}

// ParseOdds reads American odds such as "+120" or "-115"
func ParseOdds(cell string) (int, error) {
	odds, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0, fmt.Errorf("invalid odds %q: %w", cell, err)
	}
	if odds == 0 {
		return 0, fmt.Errorf("%w: zero", models.ErrInvalidOdds)
	}
	return odds, nil
}
