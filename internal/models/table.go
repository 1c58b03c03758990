package models

import (
	"strconv"
)

// Column names of the flat tables handed to exporters
var (
	PropositionColumns = []string{"PLAYER", "TEAM", "STAT", "THRESH", "ODDS", "TYPE", "PROB", "EV", "HOUSE_PROB"}
	CombinationColumns = []string{"COMBO", "COMBINED_PROB", "COMBINED_HOUSE_PROB", "COMBINED_EV", "TO_WIN"}
	ParlayColumns      = []string{"PARLAY_ID", "COMBO", "COMBINED_PROB", "COMBINED_HOUSE_PROB", "COMBINED_EV", "TO_WIN"}
)

// Table is a flat, string-typed view of a result set
type Table struct {
	Header []string
	Rows   [][]string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PropositionTable flattens scored propositions
func PropositionTable(props []Proposition) Table {
	t := Table{Header: PropositionColumns, Rows: make([][]string, 0, len(props))}
	for i := range props {
		p := &props[i]
		t.Rows = append(t.Rows, []string{
			p.Player,
			p.Team,
			p.Stat,
			formatFloat(p.Threshold),
			strconv.Itoa(p.AmericanOdds),
			string(p.Side),
			formatFloat(p.Probability),
			formatFloat(p.ExpectedValue),
			formatFloat(p.HouseProbability),
		})
	}
	return t
}

// CombinationTable flattens scored combinations against their proposition table
func CombinationTable(props []Proposition, combos []Combination) Table {
	t := Table{Header: CombinationColumns, Rows: make([][]string, 0, len(combos))}
	for i := range combos {
		c := &combos[i]
		t.Rows = append(t.Rows, []string{
			c.Describe(props),
			formatFloat(c.CombinedProbability),
			formatFloat(c.CombinedHouseProbability),
			formatFloat(c.CombinedEV),
			c.ToWin.StringFixed(2),
		})
	}
	return t
}

// ParlayTable flattens a selected portfolio
func ParlayTable(props []Proposition, portfolio *Portfolio) Table {
	t := Table{Header: ParlayColumns}
	if portfolio == nil {
		return t
	}
	t.Rows = make([][]string, 0, len(portfolio.Parlays))
	for i := range portfolio.Parlays {
		p := &portfolio.Parlays[i]
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(p.ParlayID),
			p.Describe(props),
			formatFloat(p.CombinedProbability),
			formatFloat(p.CombinedHouseProbability),
			formatFloat(p.CombinedEV),
			p.ToWin.StringFixed(2),
		})
	}
	return t
}
