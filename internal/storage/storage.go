package storage

import (
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is what repository lookups return for a missing record.
var ErrNotFound = gorm.ErrRecordNotFound

// NormalizeEmail lower-cases and trims an email address. Client emails
// are always stored and compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Action kinds recorded in the activity log. The vocabulary is open:
// unknown kinds are stored and rendered as-is, these constants only name
// the kinds this codebase emits or special-cases.
const (
	ProposalCreatedAction     = "proposal_created"
	ProposalDeactivatedAction = "proposal_deactivated"
	PageVisitedAction         = "page_visited"
	OTPRequestedAction        = "otp_requested"
	OTPRequestFailedAction    = "otp_request_failed"
	OTPVerifiedAction         = "otp_verified"
	OTPFailedAction           = "otp_failed"
	OpenedProposalAction      = "opened_proposal"
	ChangedEventsAction       = "changed_events"
	ChangedTicketsAction      = "changed_tickets"
	ChangedPriceAction        = "changed_price"
	ViewedSectionAction       = "viewed_section"
	SessionEndedAction        = "session_ended"
)

type ProposalRepository interface {
	CreateProposal(clientName, clientEmail string, config CalculatorConfig) (*Proposal, error)
	GetProposalBySlug(slug string) (*Proposal, error)
	ListProposals() ([]*Proposal, error)
	DeactivateProposal(id int64) error
}

// ActivityStore is append-only; events are never mutated or deleted.
type ActivityStore interface {
	AppendActivity(event *ActivityEvent) error
	// QueryActivity returns up to limit events newest-first, optionally
	// filtered to a single slug ("" means all).
	QueryActivity(slug string, limit int) ([]*ActivityEvent, error)
}

type AccessLogStore interface {
	AppendAccessLog(entry *AccessLog) error
}
