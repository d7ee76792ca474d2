package billing

import (
	"strings"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
)

// allowedSources returns the set of statuses a subscription may hold for a
// transition into target to apply. Compare-and-set updates use this set in the
// WHERE clause, so a stale webhook can never move a subscription backward out
// of a terminal or newer state.
func allowedSources(target string) []string {
	switch target {
	case models.SubscriptionStatusActive:
		// payment success, trial conversion, past_due recovery
		return []string{
			models.SubscriptionStatusIncomplete,
			models.SubscriptionStatusTrialing,
			models.SubscriptionStatusPastDue,
			models.SubscriptionStatusActive,
		}
	case models.SubscriptionStatusPastDue:
		return []string{
			models.SubscriptionStatusActive,
			models.SubscriptionStatusTrialing,
			models.SubscriptionStatusPastDue,
		}
	case models.SubscriptionStatusCanceled:
		// any non-terminal state may cancel
		return []string{
			models.SubscriptionStatusIncomplete,
			models.SubscriptionStatusTrialing,
			models.SubscriptionStatusActive,
			models.SubscriptionStatusPastDue,
		}
	case models.SubscriptionStatusIncompleteExpired:
		return []string{models.SubscriptionStatusIncomplete}
	case models.SubscriptionStatusTrialing:
		return []string{
			models.SubscriptionStatusIncomplete,
			models.SubscriptionStatusTrialing,
		}
	default:
		return nil
	}
}

// MapProviderStatus normalizes a processor-reported subscription status to the
// internal enumeration. Unknown values map to incomplete, matching how an
// unrecognized membership state is treated elsewhere.
func MapProviderStatus(providerStatus string) string {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "active", "paid", "succeeded":
		return models.SubscriptionStatusActive
	case "trialing":
		return models.SubscriptionStatusTrialing
	case "past_due", "unpaid":
		return models.SubscriptionStatusPastDue
	case "canceled", "cancelled":
		return models.SubscriptionStatusCanceled
	case "incomplete_expired":
		return models.SubscriptionStatusIncompleteExpired
	case "incomplete":
		return models.SubscriptionStatusIncomplete
	default:
		return models.SubscriptionStatusIncomplete
	}
}

// unixToTime converts processor epoch seconds to a timestamp pointer; zero
// stays nil so absent fields never overwrite stored periods.
func unixToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0)
	return &t
}
