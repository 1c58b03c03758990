package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rustam-sa/nba-01/internal/feed"
	"github.com/rustam-sa/nba-01/internal/models"
)

// DataValidator checks feed lines and game logs before they are used
type DataValidator struct {
	logger *logrus.Entry
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DataValidator{logger: logger.WithField("component", "validator")}
}

func validOdds(american int) bool {
	return american >= 100 || american <= -100
}

// ValidateLine returns every problem found in a feed line
func (v *DataValidator) ValidateLine(line feed.Line) []string {
	var errors []string

	if strings.TrimSpace(line.Player) == "" {
		errors = append(errors, "player is required")
	}
	if !models.KnownStat(line.Stat) {
		errors = append(errors, fmt.Sprintf("unknown statistic %q", line.Stat))
	}
	if line.OverThreshold < 0 || line.UnderThreshold < 0 {
		errors = append(errors, "thresholds cannot be negative")
	}
	if !validOdds(line.OverOdds) {
		errors = append(errors, fmt.Sprintf("over odds %d are not valid american odds", line.OverOdds))
	}
	if !validOdds(line.UnderOdds) {
		errors = append(errors, fmt.Sprintf("under odds %d are not valid american odds", line.UnderOdds))
	}

	return errors
}

// FilterLines drops invalid lines, logging each at warn
func (v *DataValidator) FilterLines(lines []feed.Line) ([]feed.Line, int) {
	kept := make([]feed.Line, 0, len(lines))
	dropped := 0
	for _, l := range lines {
		if problems := v.ValidateLine(l); len(problems) > 0 {
			dropped++
			v.logger.WithFields(logrus.Fields{
				"player": l.Player,
				"stat":   l.Stat,
				"errors": strings.Join(problems, "; "),
			}).Warn("Feed line rejected")
			continue
		}
		kept = append(kept, l)
	}
	return kept, dropped
}

// ValidateGameLog returns every problem found in a box score line
func (v *DataValidator) ValidateGameLog(log *models.GameLog) []string {
	var errors []string

	if log.GameExternalID == "" {
		errors = append(errors, "game id is required")
	}
	if log.GameDate.IsZero() {
		errors = append(errors, "game date is required")
	}

	counts := map[string]int{
		models.StatPoints: log.Points, models.StatRebounds: log.Rebounds,
		models.StatAssists: log.Assists, models.StatSteals: log.Steals,
		models.StatBlocks: log.Blocks, models.StatTurnovers: log.Turnovers,
		models.StatFGM: log.FGM, models.StatFGA: log.FGA,
		models.StatFG3M: log.FG3M, models.StatFG3A: log.FG3A,
		models.StatFTM: log.FTM, models.StatFTA: log.FTA,
	}
	for stat, n := range counts {
		if n < 0 {
			errors = append(errors, fmt.Sprintf("%s cannot be negative, got %d", stat, n))
		}
	}

	if log.FGM > log.FGA {
		errors = append(errors, fmt.Sprintf("fgm %d exceeds fga %d", log.FGM, log.FGA))
	}
	if log.FG3M > log.FG3A {
		errors = append(errors, fmt.Sprintf("fg3m %d exceeds fg3a %d", log.FG3M, log.FG3A))
	}
	if log.FTM > log.FTA {
		errors = append(errors, fmt.Sprintf("ftm %d exceeds fta %d", log.FTM, log.FTA))
	}
	if log.FG3M > log.FGM {
		errors = append(errors, fmt.Sprintf("fg3m %d exceeds fgm %d", log.FG3M, log.FGM))
	}

	return errors
}
