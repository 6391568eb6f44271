package domain

import "strings"

// Severity levels as the service usually spells them. The service may send
// any casing; compare through Rank.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityInfo     = "INFO"
)

// Severity ranks returned by Rank.
const (
	RankOther = iota
	RankLow
	RankMedium
	RankHigh
	RankCritical
)

// Rank orders severities from RankOther (info or unknown) to RankCritical.
func Rank(severity string) int {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case SeverityCritical:
		return RankCritical
	case SeverityHigh:
		return RankHigh
	case SeverityMedium:
		return RankMedium
	case SeverityLow:
		return RankLow
	default:
		return RankOther
	}
}

// AtLeast reports whether severity is at or above threshold.
// An unknown threshold never matches.
func AtLeast(severity, threshold string) bool {
	t := Rank(threshold)
	if t == RankOther {
		return false
	}
	return Rank(severity) >= t
}

// SeveritySummary counts findings per severity bucket.
type SeveritySummary struct {
	Critical int `json:"critical" toml:"critical" yaml:"critical"`
	High     int `json:"high" toml:"high" yaml:"high"`
	Medium   int `json:"medium" toml:"medium" yaml:"medium"`
	Low      int `json:"low" toml:"low" yaml:"low"`
	Other    int `json:"other" toml:"other" yaml:"other"`
}

// Add counts one finding of the given severity.
func (s *SeveritySummary) Add(severity string) {
	switch Rank(severity) {
	case RankCritical:
		s.Critical++
	case RankHigh:
		s.High++
	case RankMedium:
		s.Medium++
	case RankLow:
		s.Low++
	default:
		s.Other++
	}
}

// Total returns the number of findings counted.
func (s SeveritySummary) Total() int {
	return s.Critical + s.High + s.Medium + s.Low + s.Other
}
