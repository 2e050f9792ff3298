package access

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/identity"
	"backend/internal/logger"
	"backend/internal/storage"
	"backend/internal/token"

	"go.uber.org/zap"
)

var ErrNotAuthorized = errors.New("email not authorized for operator access")

// Allowlist is the static set of operator emails, injected at
// construction. Membership is the whole authorization model: a session
// token attests an email, the allow-list decides whether that email is
// an operator.
type Allowlist map[string]struct{}

func NewAllowlist(emails []string) Allowlist {
	allowlist := make(Allowlist, len(emails))
	for _, email := range emails {
		if normalized := storage.NormalizeEmail(email); normalized != "" {
			allowlist[normalized] = struct{}{}
		}
	}
	return allowlist
}

func (a Allowlist) IsAuthorized(email string) bool {
	_, ok := a[storage.NormalizeEmail(email)]
	return ok
}

// OperatorGate is the allow-list login flow: a one-time code proves
// control of an operator email, then a stateless session token is minted
// for subsequent privileged calls.
type OperatorGate struct {
	allowlist  Allowlist
	provider   identity.Provider
	tokens     *token.Service
	accessLogs storage.AccessLogStore
}

func NewOperatorGate(allowlist Allowlist, provider identity.Provider, tokens *token.Service, accessLogs storage.AccessLogStore) *OperatorGate {
	return &OperatorGate{
		allowlist:  allowlist,
		provider:   provider,
		tokens:     tokens,
		accessLogs: accessLogs,
	}
}

func (og *OperatorGate) RequestCode(ctx context.Context, email string) error {
	if !og.allowlist.IsAuthorized(email) {
		return ErrNotAuthorized
	}

	if err := og.provider.RequestCode(ctx, storage.NormalizeEmail(email)); err != nil {
		logger.Error("operator otp delivery failed", zap.Error(err))
		return fmt.Errorf("%w: %s", ErrCodeDeliveryFailed, err)
	}

	return nil
}

// Verify checks the one-time code and returns a signed session credential
// together with the normalized operator email.
func (og *OperatorGate) Verify(ctx context.Context, email, code, remoteIP string) (string, string, error) {
	if !og.allowlist.IsAuthorized(email) {
		return "", "", ErrNotAuthorized
	}

	normalized := storage.NormalizeEmail(email)
	if err := og.provider.VerifyCode(ctx, normalized, code); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidCode, err)
	}

	if err := og.accessLogs.AppendAccessLog(&storage.AccessLog{IPAddress: remoteIP}); err != nil {
		logger.Error("failed to record operator login", zap.Error(err))
	}

	return og.tokens.Issue(normalized), normalized, nil
}

// Authenticate resolves a Bearer header to an operator email, rejecting
// valid tokens whose attested email is not on the allow-list.
func (og *OperatorGate) Authenticate(header string) (string, error) {
	email, err := og.tokens.FromBearer(header)
	if err != nil {
		return "", err
	}

	if !og.allowlist.IsAuthorized(email) {
		return "", ErrNotAuthorized
	}

	return email, nil
}
