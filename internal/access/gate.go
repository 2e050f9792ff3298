package access

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/activity"
	"backend/internal/identity"
	"backend/internal/logger"
	"backend/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrNotFound           = errors.New("proposal not found")
	ErrDeactivated        = errors.New("proposal deactivated")
	ErrEmailMismatch      = errors.New("email not authorized for this proposal")
	ErrCodeDeliveryFailed = errors.New("failed to deliver verification code")
	ErrInvalidCode        = errors.New("invalid verification code")
)

// Gate enforces the client-side access protocol for a proposal: a
// one-time code is only requested and accepted for the exact email the
// proposal was issued to, and only while the proposal is active.
type Gate struct {
	proposals  storage.ProposalRepository
	provider   identity.Provider
	activities storage.ActivityStore
	accessLogs storage.AccessLogStore
}

func NewGate(proposals storage.ProposalRepository, provider identity.Provider, activities storage.ActivityStore, accessLogs storage.AccessLogStore) *Gate {
	return &Gate{
		proposals:  proposals,
		provider:   provider,
		activities: activities,
		accessLogs: accessLogs,
	}
}

// checkProposal runs the lookup/active/email-binding sequence shared by
// both protocol steps. The email-binding check is the load-bearing one:
// a code proves control of an email, the binding proves that email is
// the one this proposal was issued to.
func (g *Gate) checkProposal(slug, email string) (*storage.Proposal, string, error) {
	proposal, err := g.proposals.GetProposalBySlug(slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "proposal not found", ErrNotFound
		}
		return nil, "proposal lookup failed", fmt.Errorf("looking up proposal %s: %w", slug, err)
	}

	if !proposal.IsActive {
		return nil, "proposal deactivated", ErrDeactivated
	}

	if storage.NormalizeEmail(email) != proposal.ClientEmail {
		return nil, "email mismatch", ErrEmailMismatch
	}

	return proposal, "", nil
}

// RequestAccess asks the identity provider to send a one-time code to
// email, provided the proposal exists, is active, and is bound to that
// email. Every attempt is recorded in the activity log, failed ones with
// a reason.
func (g *Gate) RequestAccess(ctx context.Context, slug, email string) error {
	proposal, reason, err := g.checkProposal(slug, email)
	if err != nil {
		activity.Log(g.activities, slug, storage.OTPRequestFailedAction, storage.Details{Reason: reason}, email)
		return err
	}

	if err := g.provider.RequestCode(ctx, proposal.ClientEmail); err != nil {
		logger.Error("otp delivery failed", zap.String("slug", slug), zap.Error(err))
		activity.Log(g.activities, slug, storage.OTPRequestFailedAction, storage.Details{Reason: "code delivery failed"}, email)
		return fmt.Errorf("%w: %s", ErrCodeDeliveryFailed, err)
	}

	activity.Log(g.activities, slug, storage.OTPRequestedAction, storage.Details{}, proposal.ClientEmail)
	return nil
}

// VerifyAccess checks a one-time code and, when it matches, unlocks the
// proposal: the client name and calculator config snapshot are returned,
// an access-log entry is recorded, and an otp_verified event is emitted.
func (g *Gate) VerifyAccess(ctx context.Context, slug, email, code, remoteIP string) (string, storage.CalculatorConfig, error) {
	proposal, reason, err := g.checkProposal(slug, email)
	if err != nil {
		activity.Log(g.activities, slug, storage.OTPFailedAction, storage.Details{Reason: reason}, email)
		return "", storage.CalculatorConfig{}, err
	}

	if err := g.provider.VerifyCode(ctx, proposal.ClientEmail, code); err != nil {
		activity.Log(g.activities, slug, storage.OTPFailedAction, storage.Details{Reason: "invalid code"}, email)
		return "", storage.CalculatorConfig{}, fmt.Errorf("%w: %s", ErrInvalidCode, err)
	}

	if err := g.accessLogs.AppendAccessLog(&storage.AccessLog{Slug: &proposal.Slug, IPAddress: remoteIP}); err != nil {
		logger.Error("failed to record access log", zap.String("slug", slug), zap.Error(err))
	}
	activity.Log(g.activities, slug, storage.OTPVerifiedAction, storage.Details{}, proposal.ClientEmail)

	return proposal.ClientName, proposal.Config, nil
}
