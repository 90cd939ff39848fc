package booking

import (
	"strings"

	"github.com/itemshare/service-booking/pkg/domain"
)

// SearchState is the symbolic filter applied to booking listings. It
// selects either a time window relative to "now" or an explicit status,
// never both.
type SearchState string

const (
	// SearchAll selects every booking regardless of time or status.
	SearchAll SearchState = "ALL"
	// SearchCurrent selects bookings whose interval contains now.
	SearchCurrent SearchState = "CURRENT"
	// SearchPast selects bookings that ended before now.
	SearchPast SearchState = "PAST"
	// SearchFuture selects bookings that start after now.
	SearchFuture SearchState = "FUTURE"
	// SearchWaiting selects bookings still pending approval.
	SearchWaiting SearchState = "WAITING"
	// SearchRejected selects bookings the owner declined.
	SearchRejected SearchState = "REJECTED"
)

// ParseSearchState parses a symbolic search state case-insensitively.
// An empty token defaults to ALL.
func ParseSearchState(raw string) (SearchState, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return SearchAll, nil
	}
	switch SearchState(token) {
	case SearchAll, SearchCurrent, SearchPast, SearchFuture, SearchWaiting, SearchRejected:
		return SearchState(token), nil
	}
	return "", domain.NewValidationError("unknown state: " + raw)
}
