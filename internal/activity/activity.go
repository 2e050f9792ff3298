package activity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"backend/internal/logger"
	"backend/internal/storage"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Log appends an activity event, best-effort. Analytics must never fail
// the operation it accompanies, so append errors are logged and swallowed.
func Log(store storage.ActivityStore, slug, action string, details storage.Details, clientEmail string) {
	event := &storage.ActivityEvent{
		Slug:    slug,
		Action:  action,
		Details: details,
	}

	if normalized := storage.NormalizeEmail(clientEmail); normalized != "" {
		event.ClientEmail = &normalized
	}

	if err := store.AppendActivity(event); err != nil {
		logger.Error("failed to log activity", zap.String("slug", slug), zap.String("action", action), zap.Error(err))
	}
}

func formatValue(value *float64) string {
	if value == nil {
		return "?"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

// Describe maps an action kind and its details to a human-readable
// sentence. Unknown kinds render as the kind itself with underscores
// replaced by spaces.
func Describe(action string, details storage.Details) string {
	switch action {
	case storage.ProposalCreatedAction:
		name := details.ClientName
		if name == "" {
			name = "client"
		}
		return "Proposal created for " + name
	case storage.ProposalDeactivatedAction:
		return "Proposal was deactivated by admin"
	case storage.PageVisitedAction:
		return "Opened the proposal link"
	case storage.OTPRequestedAction:
		return "Requested a verification code"
	case storage.OTPRequestFailedAction:
		reason := details.Reason
		if reason == "" {
			reason = "unknown"
		}
		return "Verification code request failed: " + reason
	case storage.OTPVerifiedAction:
		return "Successfully verified and accessed the proposal"
	case storage.OTPFailedAction:
		return "Entered an incorrect verification code"
	case storage.OpenedProposalAction:
		return "Started viewing the calculator"
	case storage.ChangedEventsAction:
		return "Changed events/year to " + formatValue(details.Value)
	case storage.ChangedTicketsAction:
		if details.Value != nil {
			return "Changed tickets/event to " + humanize.Comma(int64(*details.Value))
		}
		return "Changed tickets/event to ?"
	case storage.ChangedPriceAction:
		return "Changed avg ticket price to " + formatValue(details.Value) + " AED"
	case storage.ViewedSectionAction:
		section := details.Section
		if section == "" {
			section = "a section"
		}
		return "Scrolled to " + section
	case storage.SessionEndedAction:
		duration := details.Duration
		if duration == "" {
			duration = "unknown"
		}
		return fmt.Sprintf("Finished viewing (%s on page)", duration)
	default:
		return strings.ReplaceAll(action, "_", " ")
	}
}

// TimeAgo renders how long ago t was in coarse buckets, falling back to
// an absolute date beyond a week.
func TimeAgo(t time.Time) string {
	return timeAgo(t, time.Now())
}

func timeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	case seconds < 604800:
		return fmt.Sprintf("%dd ago", seconds/86400)
	default:
		return t.Format("1/2/2006")
	}
}
