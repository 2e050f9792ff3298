package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const TTL = 24 * time.Hour

var (
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("bad token signature")
	ErrExpired      = errors.New("token expired")
)

// Service issues and verifies stateless operator session credentials.
// A credential is base64(email:issued-millis:hex-hmac-sha256); validity is
// re-derived from the signature and the TTL on every verification, so no
// server-side session state exists.
type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue mints a credential for email, normalized and stamped with the
// current time.
func (s *Service) Issue(email string) string {
	payload := fmt.Sprintf("%s:%d", Normalize(email), s.now().UnixMilli())
	signed := payload + ":" + s.sign(payload)
	return base64.StdEncoding.EncodeToString([]byte(signed))
}

// Verify decodes and checks a credential, returning the attested email.
// The signature comparison is constant-time. A token at exactly TTL old is
// still valid; one second past is not.
func (s *Service) Verify(credential string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(credential)
	if err != nil {
		return "", fmt.Errorf("decoding credential: %w", ErrMalformed)
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("expected 3 fields, got %d: %w", len(parts), ErrMalformed)
	}

	email, issuedText, signature := parts[0], parts[1], parts[2]
	expected := s.sign(email + ":" + issuedText)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", ErrBadSignature
	}

	issuedMillis, err := strconv.ParseInt(issuedText, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parsing issue timestamp: %w", ErrMalformed)
	}

	if s.now().Sub(time.UnixMilli(issuedMillis)) > TTL {
		return "", ErrExpired
	}

	return email, nil
}

// FromBearer extracts and verifies a credential carried in an
// "Authorization: Bearer <token>" header value.
func (s *Service) FromBearer(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("missing bearer prefix: %w", ErrMalformed)
	}
	return s.Verify(strings.TrimPrefix(header, prefix))
}
