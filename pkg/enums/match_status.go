package enums

import "fmt"

// MatchStatus maps to the match_status enum in Postgres.
//
// pending is the initial state on insert; notified is terminal and is only
// reached when the match email for the pair is delivered.
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusNotified MatchStatus = "notified"
)

var validMatchStatuses = []MatchStatus{
	MatchStatusPending,
	MatchStatusNotified,
}

// IsValid checks whether the given status matches the canonical enum.
func (s MatchStatus) IsValid() bool {
	for _, candidate := range validMatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMatchStatus converts raw strings into MatchStatus.
func ParseMatchStatus(value string) (MatchStatus, error) {
	for _, candidate := range validMatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid match status %q", value)
}
