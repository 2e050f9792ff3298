package activity

import (
	"testing"
	"time"

	"backend/internal/storage"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestDescribe(t *testing.T) {
	cases := []struct {
		name    string
		action  string
		details storage.Details
		want    string
	}{
		{"created", storage.ProposalCreatedAction, storage.Details{ClientName: "Acme Events"}, "Proposal created for Acme Events"},
		{"created without name", storage.ProposalCreatedAction, storage.Details{}, "Proposal created for client"},
		{"deactivated", storage.ProposalDeactivatedAction, storage.Details{}, "Proposal was deactivated by admin"},
		{"page visited", storage.PageVisitedAction, storage.Details{}, "Opened the proposal link"},
		{"otp requested", storage.OTPRequestedAction, storage.Details{}, "Requested a verification code"},
		{"otp request failed", storage.OTPRequestFailedAction, storage.Details{Reason: "proposal deactivated"}, "Verification code request failed: proposal deactivated"},
		{"otp request failed no reason", storage.OTPRequestFailedAction, storage.Details{}, "Verification code request failed: unknown"},
		{"otp verified", storage.OTPVerifiedAction, storage.Details{}, "Successfully verified and accessed the proposal"},
		{"otp failed", storage.OTPFailedAction, storage.Details{}, "Entered an incorrect verification code"},
		{"opened", storage.OpenedProposalAction, storage.Details{}, "Started viewing the calculator"},
		{"changed events", storage.ChangedEventsAction, storage.Details{Value: floatPtr(21)}, "Changed events/year to 21"},
		{"changed tickets", storage.ChangedTicketsAction, storage.Details{Value: floatPtr(2500)}, "Changed tickets/event to 2,500"},
		{"changed price", storage.ChangedPriceAction, storage.Details{Value: floatPtr(250)}, "Changed avg ticket price to 250 AED"},
		{"viewed section", storage.ViewedSectionAction, storage.Details{Section: "benchmarks"}, "Scrolled to benchmarks"},
		{"session ended", storage.SessionEndedAction, storage.Details{Duration: "45s"}, "Finished viewing (45s on page)"},
		{"session ended no duration", storage.SessionEndedAction, storage.Details{}, "Finished viewing (unknown on page)"},
		{"unknown kind", "did_something_new", storage.Details{}, "did something new"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Describe(c.action, c.details))
		})
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds", 30 * time.Second, "just now"},
		{"boundary minute", 59 * time.Second, "just now"},
		{"minutes", 5 * time.Minute, "5m ago"},
		{"boundary hour", 59*time.Minute + 59*time.Second, "59m ago"},
		{"hours", 3 * time.Hour, "3h ago"},
		{"boundary day", 23 * time.Hour, "23h ago"},
		{"days", 3 * 24 * time.Hour, "3d ago"},
		{"boundary week", 6 * 24 * time.Hour, "6d ago"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, timeAgo(now.Add(-c.ago), now))
		})
	}

	assert.Equal(t, "6/1/2025", timeAgo(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), now))
}
