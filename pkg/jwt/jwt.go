package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// JWT header constants required by RFC 7519
const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256" // HMAC-SHA256 chosen for security/performance balance
)

// TokenTypeAccess tags session tokens so other token kinds can be introduced
// later without being interchangeable with sessions.
const TokenTypeAccess = "access"

// Header represents the JWT header as defined in RFC 7515
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// AccessClaims is the claim set carried by session tokens.
// Temporal claims use Unix timestamps for consistent validation.
type AccessClaims struct {
	Subject   string `json:"sub"`  // User ID the token asserts
	IssuedAt  int64  `json:"iat"`  // Unix timestamp when token was created
	ExpiresAt int64  `json:"exp"`  // Unix timestamp when token expires
	TokenType string `json:"type"` // Always TokenTypeAccess for session tokens
}

// Config holds environment-driven token settings.
type Config struct {
	SigningKey string        `env:"JWT_SIGNING_KEY,required"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`
}

// Service issues and verifies session tokens signed with HMAC-SHA256.
// The signing key is kept in memory only and should be at least 32 bytes.
// Tokens are stateless: validity is solely a function of signature and expiry.
type Service struct {
	signingKey []byte
	accessTTL  time.Duration
}

// New creates a token service from configuration.
func New(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	ttl := cfg.AccessTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		accessTTL:  ttl,
	}, nil
}

// Issue creates a signed session token for the given subject.
// An optional TTL overrides the configured default for this call only.
func (s *Service) Issue(subject string, ttl ...time.Duration) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}

	expiresIn := s.accessTTL
	if len(ttl) > 0 {
		expiresIn = ttl[0]
	}

	now := time.Now()
	claims := AccessClaims{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(expiresIn).Unix(),
		TokenType: TokenTypeAccess,
	}

	headerJSON, err := json.Marshal(Header{Type: HeaderType, Algorithm: HeaderAlgorithm})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	// JWT payload: base64url(header).base64url(claims)
	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// AccessTTL reports the configured default token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// Verify validates a session token and returns its claims.
// Failure kinds are distinct: ErrInvalidSignature when the signature does not
// match, ErrExpiredToken when the expiry has passed, ErrMalformedToken when
// the token cannot be parsed or carries the wrong type tag, and
// ErrUnexpectedSigningMethod for algorithm confusion attempts.
func (s *Service) Verify(tokenString string) (AccessClaims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return AccessClaims{}, ErrMalformedToken
	}

	// Verify signature first, using constant-time comparison to prevent
	// timing attacks. No claim is trusted before this point.
	payload := parts[0] + "." + parts[1]
	expected := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return AccessClaims{}, ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return AccessClaims{}, ErrMalformedToken
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return AccessClaims{}, ErrMalformedToken
	}
	// Reject tokens claiming any other algorithm, including "none".
	if header.Algorithm != HeaderAlgorithm {
		return AccessClaims{}, ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return AccessClaims{}, ErrMalformedToken
	}
	var claims AccessClaims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return AccessClaims{}, ErrMalformedToken
	}

	if claims.TokenType != TokenTypeAccess {
		return AccessClaims{}, ErrMalformedToken
	}
	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return AccessClaims{}, ErrExpiredToken
	}

	return claims, nil
}

// sign creates an HMAC-SHA256 signature for the given payload.
// Returns base64url-encoded signature as required by RFC 7515.
func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

// base64URLEncode encodes data using base64url encoding without padding,
// as required by RFC 7515 for JWT tokens.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode decodes base64url-encoded data without padding.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
