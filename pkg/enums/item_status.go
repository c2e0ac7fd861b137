package enums

import "fmt"

// ItemStatus maps to the item_status enum in Postgres.
type ItemStatus string

const (
	ItemStatusLost     ItemStatus = "lost"
	ItemStatusFound    ItemStatus = "found"
	ItemStatusClaimed  ItemStatus = "claimed"
	ItemStatusReturned ItemStatus = "returned"
)

var validItemStatuses = []ItemStatus{
	ItemStatusLost,
	ItemStatusFound,
	ItemStatusClaimed,
	ItemStatusReturned,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsReportable reports whether the status is one a user can file a report
// with. Claimed/returned are reached through the claim workflow only.
func (s ItemStatus) IsReportable() bool {
	return s == ItemStatusLost || s == ItemStatusFound
}

// Opposite returns the counterpart status used for candidate retrieval.
// Only lost and found have counterparts.
func (s ItemStatus) Opposite() (ItemStatus, bool) {
	switch s {
	case ItemStatusLost:
		return ItemStatusFound, true
	case ItemStatusFound:
		return ItemStatusLost, true
	default:
		return "", false
	}
}

// ParseItemStatus converts raw strings into ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
