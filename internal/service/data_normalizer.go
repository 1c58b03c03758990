package service

import (
	"strings"

	"github.com/rustam-sa/nba-01/internal/feed"
)

// DataNormalizer puts feed lines into the form the rest of the system keys on
type DataNormalizer struct {
	aliases map[string]string
}

// NewDataNormalizer creates a normalizer. aliases maps feed spellings of
// player names to the canonical roster spelling.
func NewDataNormalizer(aliases map[string]string) *DataNormalizer {
	n := &DataNormalizer{aliases: make(map[string]string, len(aliases))}
	for from, to := range aliases {
		n.aliases[strings.ToLower(sanitizeName(from))] = sanitizeName(to)
	}
	return n
}

// NormalizeLine cleans names and lowercases the statistic
func (n *DataNormalizer) NormalizeLine(line feed.Line) feed.Line {
	line.Player = sanitizeName(line.Player)
	if canonical, ok := n.aliases[strings.ToLower(line.Player)]; ok {
		line.Player = canonical
	}
	line.Team = sanitizeName(line.Team)
	line.Stat = strings.ToLower(strings.TrimSpace(line.Stat))
	return line
}

// NormalizeLines normalizes every line in place order
func (n *DataNormalizer) NormalizeLines(lines []feed.Line) []feed.Line {
	out := make([]feed.Line, len(lines))
	for i, l := range lines {
		out[i] = n.NormalizeLine(l)
	}
	return out
}

// sanitizeName trims and collapses internal whitespace
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
