// Package jwt implements stateless session tokens: compact HS256-signed
// claim sets carrying subject, issued-at, expiry and a fixed "access" type tag.
//
// There is no revocation list; compromise mitigation relies solely on short
// TTLs. Verification failures are reported as distinct sentinel errors
// (ErrInvalidSignature, ErrExpiredToken, ErrMalformedToken) so callers can
// log them apart, while the HTTP boundary collapses all of them to 401.
//
//	svc, _ := jwt.New(jwt.Config{SigningKey: key, AccessTTL: 24 * time.Hour})
//	token, _ := svc.Issue(userID.String())
//	claims, err := svc.Verify(token)
//
// The package also ships Bearer-token middleware that injects verified claims
// into the request context for downstream handlers.
package jwt
